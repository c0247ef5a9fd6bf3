package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ampnm-backend/config"
	"ampnm-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStores returns both backends plus two user ids that exist in the
// database backend.
func openStores(t *testing.T) (map[string]Store, uint, uint) {
	t.Helper()
	db, err := config.ConnectDB(config.DBConfig{Driver: "sqlite", Path: ":memory:"}, config.AppModels...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	alice := model.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	bob := model.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	gs, err := Open("database", db, "")
	require.NoError(t, err)
	bs, err := Open("bolt", nil, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })

	return map[string]Store{"database": gs, "bolt": bs}, alice.ID, bob.ID
}

func TestStoreLifecycle(t *testing.T) {
	stores, alice, _ := openStores(t)
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			sess, err := store.Create(ctx, alice, time.Hour)
			require.NoError(t, err)
			assert.NotEmpty(t, sess.Token)

			got, err := store.Get(ctx, sess.Token)
			require.NoError(t, err)
			assert.Equal(t, alice, got.UserID)

			require.NoError(t, store.Delete(ctx, sess.Token))
			_, err = store.Get(ctx, sess.Token)
			assert.ErrorIs(t, err, ErrNoSession)

			_, err = store.Get(ctx, "does-not-exist")
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	stores, alice, bob := openStores(t)
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			expired, err := store.Create(ctx, alice, -time.Minute)
			require.NoError(t, err)
			_, err = store.Get(ctx, expired.Token)
			assert.ErrorIs(t, err, ErrNoSession)

			_, err = store.Create(ctx, alice, -time.Minute)
			require.NoError(t, err)
			_, err = store.Create(ctx, bob, -time.Minute)
			require.NoError(t, err)
			live, err := store.Create(ctx, bob, time.Hour)
			require.NoError(t, err)

			n, err := store.Purge(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			_, err = store.Get(ctx, live.Token)
			assert.NoError(t, err)
		})
	}
}

func TestStoreDeleteUser(t *testing.T) {
	stores, alice, bob := openStores(t)
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			a1, err := store.Create(ctx, alice, time.Hour)
			require.NoError(t, err)
			a2, err := store.Create(ctx, alice, time.Hour)
			require.NoError(t, err)
			b1, err := store.Create(ctx, bob, time.Hour)
			require.NoError(t, err)

			require.NoError(t, store.DeleteUser(ctx, alice))

			for _, tok := range []string{a1.Token, a2.Token} {
				_, err = store.Get(ctx, tok)
				assert.ErrorIs(t, err, ErrNoSession)
			}
			_, err = store.Get(ctx, b1.Token)
			assert.NoError(t, err)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("redis", nil, "")
	assert.Error(t, err)
}
