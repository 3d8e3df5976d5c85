package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// 1. Create a blob
			blobName := "data-001.bin"
			data := []byte("hello world, this is a test blob for binvec")

			w, err := store.Create(ctx, blobName)
			require.NoError(t, err)

			n, err := w.Write(data)
			require.NoError(t, err)
			require.Equal(t, len(data), n)

			// Not visible before Close
			_, err = store.Open(ctx, blobName)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, w.Close())

			// 2. Open and ReadAt
			blob, err := store.Open(ctx, blobName)
			require.NoError(t, err)
			defer blob.Close()

			require.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 5)
			n, err = blob.ReadAt(ctx, buf, 6) // "world"
			require.NoError(t, err)
			require.Equal(t, 5, n)
			require.Equal(t, "world", string(buf))

			// Short read at the tail
			n, err = blob.ReadAt(ctx, buf, int64(len(data)-2))
			require.ErrorIs(t, err, io.EOF)
			require.Equal(t, 2, n)

			// 3. ReadRange: "this" (offset 13, length 4)
			rangeReader, err := blob.ReadRange(ctx, 13, 4)
			require.NoError(t, err)
			rangeContent, err := io.ReadAll(rangeReader)
			require.NoError(t, err)
			require.NoError(t, rangeReader.Close())
			require.Equal(t, "this", string(rangeContent))

			// 4. List
			require.NoError(t, store.Put(ctx, "data-002.bin", nil))
			require.NoError(t, store.Put(ctx, "other/x.bin", []byte{1}))

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			require.Equal(t, []string{"data-001.bin", "data-002.bin", "other/x.bin"}, names)

			names, err = store.List(ctx, "data-")
			require.NoError(t, err)
			require.Equal(t, []string{"data-001.bin", "data-002.bin"}, names)

			// 5. Delete
			require.NoError(t, store.Delete(ctx, "data-002.bin"))
			require.NoError(t, store.Delete(ctx, "data-002.bin"))
			_, err = store.Open(ctx, "data-002.bin")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Abort(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			w, err := store.Create(ctx, "partial.bin")
			require.NoError(t, err)
			_, err = w.Write([]byte("partial"))
			require.NoError(t, err)
			require.NoError(t, w.Abort())
			require.NoError(t, w.Close())

			_, err = store.Open(ctx, "partial.bin")
			require.ErrorIs(t, err, ErrNotFound)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			require.Empty(t, names)
		})
	}
}

func TestReadAll(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "a", []byte("payload")))
			require.NoError(t, store.Put(ctx, "empty", nil))

			got, err := ReadAll(ctx, store, "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), got)

			got, err = ReadAll(ctx, store, "empty")
			require.NoError(t, err)
			assert.Empty(t, got)

			rc, size, err := OpenReader(ctx, store, "a")
			require.NoError(t, err)
			assert.Equal(t, int64(7), size)
			got, err = io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, []byte("payload"), got)

			_, err = ReadAll(ctx, store, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_Atomic(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "nested/dir/blob.bin", []byte("v1")))
	_, err := os.Stat(filepath.Join(tmpDir, "nested", "dir", "blob.bin"))
	require.NoError(t, err)

	// Overwrite replaces the content in one step.
	require.NoError(t, store.Put(ctx, "nested/dir/blob.bin", []byte("v2")))
	got, err := ReadAll(ctx, store, "nested/dir/blob.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	entries, err := os.ReadDir(filepath.Join(tmpDir, "nested", "dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Listing a missing root is empty.
	names, err := NewLocalStore(filepath.Join(tmpDir, "missing")).List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "x", data))
	data[0] = 'z'

	got, err := ReadAll(ctx, store, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}
