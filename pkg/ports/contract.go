package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract verifies that a StateStore implementation
// adheres to the interface contract. Adapter tests call it against a
// fresh store instance.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	uid := "contract-" + time.Now().Format("20060102150405")

	t.Run("SaveAndLoad", func(t *testing.T) {
		state := domain.NewStateWithUID(uid)
		state.Vars()["foo"] = "bar"
		state.Vars()["count"] = 42
		state.SetStatus("0.1", domain.StatusRunning)

		require.NoError(t, store.Save(ctx, uid, state))

		loaded, err := store.Load(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, uid, loaded.UID())
		assert.Equal(t, "bar", loaded.Vars()["foo"])
		// JSON-backed stores may round numbers through float64.
		assert.NotNil(t, loaded.Vars()["count"])
		assert.Equal(t, domain.StatusRunning, loaded.GetStatus("0.1"))
		assert.Equal(t, domain.StatusReady, loaded.GetStatus("0.2"), "absent positions load as READY")
	})

	t.Run("LoadIsolation", func(t *testing.T) {
		state := domain.NewStateWithUID(uid)
		state.Vars()["n"] = 1
		require.NoError(t, store.Save(ctx, uid, state))

		loaded, err := store.Load(ctx, uid)
		require.NoError(t, err)
		loaded.Vars()["n"] = 2

		again, err := store.Load(ctx, uid)
		require.NoError(t, err)
		assert.NotEqual(t, 2, again.Vars()["n"], "mutating a loaded state must not leak into the store")
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+uid)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, uid, domain.NewStateWithUID(uid)))
		require.NoError(t, store.Delete(ctx, uid))

		_, err := store.Load(ctx, uid)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.NoError(t, store.Delete(ctx, uid), "deleting an absent session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := uid + "-1"
		id2 := uid + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewStateWithUID(id1)))
		require.NoError(t, store.Save(ctx, id2, domain.NewStateWithUID(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		uids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, uids, id1)
		assert.Contains(t, uids, id2)
	})
}
