// Package binvec provides binary similarity indexes for Go.
//
// A binary index stores fixed-length bit-packed codes of CodeSize bytes
// (d = 8*CodeSize bits) and answers k-NN and range queries with an integer
// distance, Hamming by default. Index holds the rules every backend follows
// and the generic algorithms built on a backend's primitives; backends such
// as backend/flat and backend/sqlite only store and enumerate codes.
//
// # Quick Start
//
//	idx, _ := binvec.New(16, flat.New(2))
//	_ = idx.Add(3, []byte{0x00, 0x00, 0x01, 0x00, 0xFF, 0xFF})
//
//	res, _ := idx.Search(1, []byte{0x00, 0x00}, 2)
//	for _, n := range res.Neighbors(0) {
//	    fmt.Println(n.ID, n.Distance) // 0 0, 1 1
//	}
//
// # Filtering
//
// WithSelector restricts Search, Assign, SearchAndReconstruct and
// RangeSearch to the identifiers an IDSelector admits:
//
//	res, _ = idx.Search(1, query, 2, binvec.WithSelector(binvec.SelectRange(1, 3)))
//
// # Buffers
//
// Every operation takes flat buffers: n codes are n*CodeSize contiguous
// bytes, k-NN results are n*k distances and labels in row-major order.
// Rows are ascending by distance, equal distances keep enumeration order,
// and slots without a candidate carry PadLabel (-1) and PadDistance.
//
// # Capabilities
//
// Backends implement the mandatory Backend interface and opt into optional
// operations through small interfaces (Trainer, CustomIDStore, Eraser,
// Fetcher, RangeSearcher, KNNSearcher, Mergeable). Index.Capabilities
// reports them up front; calling an operation the backend lacks returns
// ErrNotSupported or ErrNotImplemented and leaves the index unchanged.
//
// # Range Search
//
// RangeSearch returns entries with distance strictly below the radius:
//
//	res := binvec.NewRangeSearchResult()
//	_ = idx.RangeSearch(1, query, 2, res) // distances 0 and 1
//
// # Errors
//
// All errors are *OpError values that match one of the sentinel errors with
// errors.Is. KindOf extracts the ErrorKind.
//
// # Persistence
//
// The persistence package saves an index as a compressed, checksummed
// snapshot to any io.Writer or to a blobstore.Store (local disk, memory,
// S3 or MinIO).
package binvec
