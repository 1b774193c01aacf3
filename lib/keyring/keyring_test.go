package keyring

import (
	"context"
	"testing"
	"time"

	"outbreakinfo/lib/outbreakapi"
	"outbreakinfo/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (Store, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/keyring")

	store, err := Open(":memory:")
	require.NoError(t, err)

	return store, cleanup
}

func TestTokenRoundtrip(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := store.Token(ctx, "api.outbreak.info")
	require.ErrorIs(t, err, outbreakapi.ErrNotAuthenticated)

	err = store.SetToken(ctx, "api.outbreak.info", "token-a", time.Time{})
	require.NoError(t, err)

	token, err := store.Token(ctx, "api.outbreak.info")
	require.NoError(t, err)
	require.Equal(t, "token-a", token)

	// tokens are per host
	_, err = store.Token(ctx, "dev.outbreak.info")
	require.ErrorIs(t, err, outbreakapi.ErrNotAuthenticated)

	// overwrite
	err = store.SetToken(ctx, "api.outbreak.info", "token-b", time.Time{})
	require.NoError(t, err)
	token, err = store.Token(ctx, "api.outbreak.info")
	require.NoError(t, err)
	require.Equal(t, "token-b", token)

	err = store.DeleteToken(ctx, "api.outbreak.info")
	require.NoError(t, err)
	_, err = store.Token(ctx, "api.outbreak.info")
	require.ErrorIs(t, err, outbreakapi.ErrNotAuthenticated)
}

func TestTokenExpiry(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := store.SetToken(ctx, "api.outbreak.info", "stale", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = store.Token(ctx, "api.outbreak.info")
	require.ErrorIs(t, err, outbreakapi.ErrNotAuthenticated)

	err = store.SetToken(ctx, "api.outbreak.info", "fresh", time.Now().Add(time.Hour))
	require.NoError(t, err)

	token, err := store.Token(ctx, "api.outbreak.info")
	require.NoError(t, err)
	require.Equal(t, "fresh", token)
}
