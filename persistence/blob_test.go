package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/binvec/backend/flat"
	"github.com/hupe1980/binvec/blobstore"
)

func TestSaveLoadBlob(t *testing.T) {
	stores := map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ix := buildIndex(t, 500)

			require.NoError(t, SaveBlob(ctx, store, "snapshots/codes.binv", ix, func(o *Options) {
				o.Compression = CompressionZSTD
			}))

			names, err := store.List(ctx, "snapshots/")
			require.NoError(t, err)
			assert.Equal(t, []string{"snapshots/codes.binv"}, names)

			restored, err := LoadBlob(ctx, store, "snapshots/codes.binv", flat.New(testCodeSize))
			require.NoError(t, err)
			assert.Equal(t, entries(t, ix), entries(t, restored))
			assert.Equal(t, ix.NextID(), restored.NextID())

			_, err = LoadBlob(ctx, store, "snapshots/missing.binv", flat.New(testCodeSize))
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

func TestSaveBlob_AbortsOnFailure(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ix := buildIndex(t, 10)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	err := SaveBlob(canceled, store, "codes.binv", ix)
	require.ErrorIs(t, err, context.Canceled)

	_, err = store.Open(context.Background(), "codes.binv")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
