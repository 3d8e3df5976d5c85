// Package persistence saves and restores binvec indexes as snapshots.
//
// A snapshot is a single immutable stream:
//
//	[Magic "BINV"][Version uint16][HeaderLen uint32][msgpack Header]
//	[Block]...[End block {0,0}]
//	[Count uint64][xxhash64 uint64]
//
// Blocks are framed as [UncompressedSize uint32][CompressedSize uint32][Data]
// and compressed with LZ4 (default), ZSTD or not at all. A block that does not
// shrink below 90% is stored raw. The block payload is a sequence of records
// [id int64][code], which may span blocks. All integers are little-endian.
//
// # Usage
//
//	err := persistence.Save(ctx, f, idx)
//
//	ix, err := persistence.Load(ctx, f, flat.New(codeSize))
//
// SaveBlob and LoadBlob place snapshots in any blobstore.Store (local,
// memory, S3, MinIO). IOLimitBytesPerSec throttles both directions.
package persistence
