package binvec

import "github.com/hupe1980/binvec/distance"

// Backend is the set of storage primitives every concrete binary index provides.
//
// Backends store (identifier, code) pairs. They are not safe for concurrent
// mutation on their own: the owning Index serializes access.
type Backend interface {
	// Name identifies the backend kind (e.g. "flat").
	Name() string

	// CodeSize returns the number of bytes per code.
	CodeSize() int

	// Len returns the number of stored entries.
	Len() int

	// Store appends n = len(ids) codes (len(codes) == n*CodeSize()).
	// The ids are strictly ascending and larger than every id stored before.
	// Store is all-or-nothing.
	Store(ids []int64, codes []byte) error

	// Clear removes every entry.
	Clear() error

	// Scan enumerates entries in a stable order (unchanged absent mutation)
	// until fn returns false. The code slice is only valid during the call.
	Scan(fn func(id int64, code []byte) bool) error
}

// Trainer is implemented by backends that require training before use.
// Backends without it are trained from the start.
type Trainer interface {
	Train(n int, codes []byte) error
	IsTrained() bool
}

// CustomIDStore is implemented by backends that accept caller-chosen
// identifiers in any order, including ids already stored.
// StoreCustom is all-or-nothing.
//
// Duplicate ids are separate entries: Scan, search and Erase see all of
// them, while Fetch returns the code stored first.
type CustomIDStore interface {
	StoreCustom(ids []int64, codes []byte) error
}

// Eraser is implemented by backends that support removal.
// Erase removes every entry whose id is in ids and returns how many were removed.
type Eraser interface {
	Erase(ids []int64) (int, error)
}

// Fetcher is implemented by backends that can return a stored code.
// Fetch copies the code of id into dst (len(dst) == CodeSize()) and returns
// ErrNotFound when id is not stored.
type Fetcher interface {
	Fetch(id int64, dst []byte) error
}

// KNNSearcher is implemented by backends with a faster k-NN scan than the
// generic selector. Results must be identical to the generic selector:
// ascending by distance, ties in Scan order, padded with -1.
// distances and labels have length n*k. Entries whose id is not a member
// of a non-nil sel are skipped.
type KNNSearcher interface {
	SearchKNN(oracle distance.CodeFunc, queries []byte, n, k int, sel IDSelector, distances []int32, labels []int64) error
}

// RangeSearcher is implemented by backends that support range search.
// Backends opt in explicitly; ScanRange is the generic implementation they
// may delegate to. Hits with distance < radius whose id passes a non-nil
// sel are appended to res.
type RangeSearcher interface {
	RangeSearch(oracle distance.CodeFunc, queries []byte, n int, radius int32, sel IDSelector, res *RangeSearchResult) error
}

// Mergeable is implemented by backends that can receive the entries of
// another backend. CheckMergeable returns nil when the structures are
// compatible.
type Mergeable interface {
	CheckMergeable(other Backend) error
}

// SACoder is implemented by backends whose standalone codes differ in size
// from their stored codes.
type SACoder interface {
	SACodeSize() int
}

// DistanceOracle is implemented by backends that override the metric's
// default distance function.
type DistanceOracle interface {
	Distance(a, b []byte) int32
}

// Capabilities reports which optional operations a backend supports.
type Capabilities struct {
	Train       bool
	CustomIDs   bool
	Remove      bool
	Reconstruct bool
	RangeSearch bool
	FastKNN     bool
	Merge       bool
}

// CapabilitiesOf inspects a backend for optional interfaces.
func CapabilitiesOf(b Backend) Capabilities {
	_, train := b.(Trainer)
	_, custom := b.(CustomIDStore)
	_, remove := b.(Eraser)
	_, fetch := b.(Fetcher)
	_, rng := b.(RangeSearcher)
	_, knn := b.(KNNSearcher)
	_, merge := b.(Mergeable)
	return Capabilities{
		Train:       train,
		CustomIDs:   custom,
		Remove:      remove,
		Reconstruct: fetch,
		RangeSearch: rng,
		FastKNN:     knn,
		Merge:       merge,
	}
}
