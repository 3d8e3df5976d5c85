// Package blobstore provides storage abstraction for binvec index snapshots.
//
// Store is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral indexes
//   - LocalStore: local filesystem with atomic temp-file + rename writes
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)               // Open for reading
//	    Create(ctx, name) (WritableBlob, error)     // Create for writing
//	    Put(ctx, name, data) error                  // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Missing blobs are reported with an error matching ErrNotFound.
package blobstore
