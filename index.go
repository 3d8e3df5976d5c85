package binvec

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/binvec/distance"
)

// indexSeq orders indexes by creation so that pairs can be locked
// deterministically.
var indexSeq atomic.Uint64

// Index is a binary similarity index over a Backend.
//
// Index implements the backend-independent contract: argument validation,
// capability gating, Top-K selection with padding, range accumulation and
// the merge protocol. Read operations may run concurrently; mutations are
// exclusive.
type Index struct {
	mu sync.RWMutex

	d        int
	codeSize int
	metric   distance.Metric
	oracle   distance.CodeFunc
	backend  Backend
	nextID   int64
	seq      uint64

	logger  *Logger
	metrics MetricsCollector
}

// New creates an index of dimension d bits over backend.
//
// d must be a positive multiple of 8 and match backend.CodeSize()*8.
func New(d int, backend Backend, optFns ...Option) (*Index, error) {
	const op = "new"

	if d <= 0 || d%8 != 0 {
		return nil, newError(op, KindInvalidArgument, "d must be a positive multiple of 8, got %d", d)
	}
	if backend == nil {
		return nil, newError(op, KindInvalidArgument, "nil backend")
	}
	if backend.CodeSize() != d/8 {
		return nil, newError(op, KindInvalidArgument, "backend %s stores %d-byte codes, want %d", backend.Name(), backend.CodeSize(), d/8)
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var oracle distance.CodeFunc
	if o, ok := backend.(DistanceOracle); ok {
		oracle = o.Distance
	} else {
		fn, err := distance.Provider(opts.metric)
		if err != nil {
			return nil, newError(op, KindInvalidArgument, "%v", err)
		}
		oracle = fn
	}

	ix := &Index{
		d:        d,
		codeSize: d / 8,
		metric:   opts.metric,
		oracle:   oracle,
		backend:  backend,
		seq:      indexSeq.Add(1),
		logger:   opts.resolveLogger().WithIndex(backend.Name(), d),
		metrics:  opts.metricsCollector,
	}

	if opts.hasStartID {
		if opts.startID < 0 {
			return nil, newError(op, KindInvalidArgument, "negative start id %d", opts.startID)
		}
		ix.nextID = opts.startID
	} else if backend.Len() > 0 {
		next := int64(backend.Len())
		if err := backend.Scan(func(id int64, _ []byte) bool {
			if id >= next {
				next = id + 1
			}
			return true
		}); err != nil {
			return nil, wrapBackend(op, err)
		}
		ix.nextID = next
	}

	return ix, nil
}

// D returns the dimension in bits.
func (ix *Index) D() int { return ix.d }

// CodeSize returns the number of bytes per code (D()/8).
func (ix *Index) CodeSize() int { return ix.codeSize }

// MetricType returns the metric the index was built with.
func (ix *Index) MetricType() distance.Metric { return ix.metric }

// Backend returns the underlying backend.
func (ix *Index) Backend() Backend { return ix.backend }

// Capabilities reports which optional operations the backend supports.
func (ix *Index) Capabilities() Capabilities { return CapabilitiesOf(ix.backend) }

// NTotal returns the number of stored entries.
func (ix *Index) NTotal() int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return int64(ix.backend.Len())
}

// IsTrained reports whether the index accepts adds and queries.
// Backends without a training step are always trained.
func (ix *Index) IsTrained() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.isTrained()
}

func (ix *Index) isTrained() bool {
	if t, ok := ix.backend.(Trainer); ok {
		return t.IsTrained()
	}
	return true
}

// NextID returns the identifier the next Add assigns to its first code.
func (ix *Index) NextID() int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.nextID
}

// Scan enumerates stored entries in backend order until fn returns false.
// The code slice is only valid during the call. fn must not call back into
// mutating methods of the index.
func (ix *Index) Scan(fn func(id int64, code []byte) bool) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return wrapBackend("scan", ix.backend.Scan(fn))
}

// ScanWithState is Scan preceded by a call to state with the entry count and
// next id, all observed under one read lock. An error from state aborts the scan.
func (ix *Index) ScanWithState(state func(ntotal, nextID int64) error, fn func(id int64, code []byte) bool) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if err := state(int64(ix.backend.Len()), ix.nextID); err != nil {
		return err
	}
	return wrapBackend("scan", ix.backend.Scan(fn))
}

func (ix *Index) String() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return fmt.Sprintf("binvec.Index{backend=%s d=%d ntotal=%d trained=%t metric=%s}",
		ix.backend.Name(), ix.d, ix.backend.Len(), ix.isTrained(), ix.metric)
}

func (ix *Index) checkTrained(op string) error {
	if !ix.isTrained() {
		return newError(op, KindNotTrained, "backend %s", ix.backend.Name())
	}
	return nil
}

// lockPair write-locks (or read-locks) a and b in creation order.
func lockPair(a, b *Index, write bool) (unlock func()) {
	first, second := a, b
	if second.seq < first.seq {
		first, second = second, first
	}
	if write {
		first.mu.Lock()
		second.mu.Lock()
		return func() {
			second.mu.Unlock()
			first.mu.Unlock()
		}
	}
	first.mu.RLock()
	second.mu.RLock()
	return func() {
		second.mu.RUnlock()
		first.mu.RUnlock()
	}
}

// logCtx is the context attached to log records of operations that take none.
var logCtx = context.Background()
