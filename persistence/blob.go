package persistence

import (
	"context"

	"github.com/hupe1980/binvec"
	"github.com/hupe1980/binvec/blobstore"
)

// SaveBlob writes a snapshot of ix to the blob name in store. The blob only
// becomes visible once the snapshot is complete.
func SaveBlob(ctx context.Context, store blobstore.Store, name string, ix *binvec.Index, optFns ...func(o *Options)) error {
	wb, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := Save(ctx, wb, ix, optFns...); err != nil {
		_ = wb.Abort()
		return err
	}
	return wb.Close()
}

// LoadBlob restores the snapshot stored as name into backend.
func LoadBlob(ctx context.Context, store blobstore.Store, name string, backend binvec.Backend, optFns ...func(o *Options)) (*binvec.Index, error) {
	rc, _, err := blobstore.OpenReader(ctx, store, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return Load(ctx, rc, backend, optFns...)
}
