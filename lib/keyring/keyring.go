package keyring

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"outbreakinfo/lib/keyring/db"
	"outbreakinfo/lib/outbreakapi"

	_ "modernc.org/sqlite"
)

// Store persists API bearer tokens per host. It satisfies
// outbreakapi.TokenSource so a client can pull its token straight from the
// keyring.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) (Store, error) {
	_, err := database.Exec(db.Schema)
	if err != nil {
		return Store{}, err
	}
	return Store{
		db:  database,
		qry: db.New(database),
	}, nil
}

// Open opens (creating if necessary) a keyring database at the given path,
// ":memory:" is valid.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	// sqlite only supports one writer at a time, see
	// https://stackoverflow.com/questions/35804884
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return Store{}, err
	}
	return NewStore(database)
}

func (s Store) Token(ctx context.Context, host string) (string, error) {
	row, err := s.qry.GetToken(ctx, host)
	if errors.Is(err, sql.ErrNoRows) {
		return "", outbreakapi.ErrNotAuthenticated
	}
	if err != nil {
		return "", err
	}
	if row.ExpiresAt > 0 && row.ExpiresAt < time.Now().Unix() {
		return "", outbreakapi.ErrNotAuthenticated
	}
	return row.Token, nil
}

// SetToken stores a token for a host. A zero expiry means the token does
// not expire.
func (s Store) SetToken(ctx context.Context, host, token string, expiresAt time.Time) error {
	var expiry int64
	if !expiresAt.IsZero() {
		expiry = expiresAt.Unix()
	}
	return s.qry.SetToken(ctx, db.SetTokenParams{
		Host:      host,
		Token:     token,
		ExpiresAt: expiry,
	})
}

func (s Store) DeleteToken(ctx context.Context, host string) error {
	return s.qry.DeleteToken(ctx, host)
}

// SweepDaemon deletes expired tokens periodically until the context is
// cancelled.
func (s Store) SweepDaemon(ctx context.Context, interval time.Duration) {
	slog.InfoContext(ctx, "start daemon", "task", "delete expired api tokens", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err := s.qry.DeleteTokensBefore(ctx, time.Now().Unix())
			if err != nil {
				slog.WarnContext(ctx, "failed to delete expired api tokens", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
