package db

import (
	"context"
	"database/sql"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Token struct {
	Host      string
	Token     string
	ExpiresAt int64
}

const getToken = `-- name: GetToken :one
SELECT host, token, expires_at FROM token WHERE host = ?
`

func (q *Queries) GetToken(ctx context.Context, host string) (Token, error) {
	row := q.db.QueryRowContext(ctx, getToken, host)
	var i Token
	err := row.Scan(&i.Host, &i.Token, &i.ExpiresAt)
	return i, err
}

const setToken = `-- name: SetToken :exec
INSERT OR REPLACE INTO token (host, token, expires_at) VALUES (?, ?, ?)
`

type SetTokenParams struct {
	Host      string
	Token     string
	ExpiresAt int64
}

func (q *Queries) SetToken(ctx context.Context, arg SetTokenParams) error {
	_, err := q.db.ExecContext(ctx, setToken, arg.Host, arg.Token, arg.ExpiresAt)
	return err
}

const deleteToken = `-- name: DeleteToken :exec
DELETE FROM token WHERE host = ?
`

func (q *Queries) DeleteToken(ctx context.Context, host string) error {
	_, err := q.db.ExecContext(ctx, deleteToken, host)
	return err
}

const deleteTokensBefore = `-- name: DeleteTokensBefore :exec
DELETE FROM token WHERE expires_at > 0 AND expires_at < ?
`

func (q *Queries) DeleteTokensBefore(ctx context.Context, expiresAt int64) error {
	_, err := q.db.ExecContext(ctx, deleteTokensBefore, expiresAt)
	return err
}
