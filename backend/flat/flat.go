// Package flat provides an in-memory brute-force backend for binary indexes.
package flat

import (
	"fmt"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/binvec"
	"github.com/hupe1980/binvec/distance"
	"github.com/hupe1980/binvec/internal/topk"
)

// Compile-time checks to ensure Flat satisfies the capability interfaces.
var (
	_ binvec.Backend       = (*Flat)(nil)
	_ binvec.CustomIDStore = (*Flat)(nil)
	_ binvec.Eraser        = (*Flat)(nil)
	_ binvec.Fetcher       = (*Flat)(nil)
	_ binvec.KNNSearcher   = (*Flat)(nil)
	_ binvec.RangeSearcher = (*Flat)(nil)
	_ binvec.Mergeable     = (*Flat)(nil)
)

// Options contains configuration options for the flat backend.
type Options struct {
	// Parallelism bounds the goroutines used to scan a multi-query batch.
	// Values <= 1 scan sequentially.
	Parallelism int

	// InitialCapacity preallocates storage for this many codes.
	InitialCapacity int
}

// DefaultOptions contains the default configuration options for the flat backend.
var DefaultOptions = Options{
	Parallelism:     runtime.GOMAXPROCS(0),
	InitialCapacity: 0,
}

// Flat stores ids and codes in two parallel slices and answers queries by
// scanning all of them. Enumeration order is insertion order.
//
// Flat is not safe for concurrent mutation; binvec.Index serializes access.
type Flat struct {
	codeSize int
	ids      []int64
	codes    []byte
	// pos maps an id to the position of its first occurrence.
	pos  map[int64]int
	opts Options
}

// New creates an empty flat backend for codes of codeSize bytes.
func New(codeSize int, optFns ...func(o *Options)) *Flat {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Flat{
		codeSize: codeSize,
		ids:      make([]int64, 0, opts.InitialCapacity),
		codes:    make([]byte, 0, opts.InitialCapacity*codeSize),
		pos:      make(map[int64]int, opts.InitialCapacity),
		opts:     opts,
	}
}

func (*Flat) Name() string { return "flat" }

// CodeSize implements binvec.Backend.
func (f *Flat) CodeSize() int { return f.codeSize }

// Len implements binvec.Backend.
func (f *Flat) Len() int { return len(f.ids) }

// Store implements binvec.Backend.
func (f *Flat) Store(ids []int64, codes []byte) error {
	if err := f.checkBatch(ids, codes); err != nil {
		return err
	}
	last := int64(-1)
	if n := len(f.ids); n > 0 {
		last = f.ids[n-1]
	}
	for _, id := range ids {
		if id <= last {
			return fmt.Errorf("flat: id %d is not ascending after %d", id, last)
		}
		last = id
	}
	f.append(ids, codes)
	return nil
}

// StoreCustom implements binvec.CustomIDStore. Duplicate ids are kept;
// Fetch returns the first stored code.
func (f *Flat) StoreCustom(ids []int64, codes []byte) error {
	if err := f.checkBatch(ids, codes); err != nil {
		return err
	}
	f.append(ids, codes)
	return nil
}

func (f *Flat) checkBatch(ids []int64, codes []byte) error {
	if len(codes) != len(ids)*f.codeSize {
		return fmt.Errorf("flat: %d bytes for %d codes of %d bytes: %w", len(codes), len(ids), f.codeSize, binvec.ErrInvalidArgument)
	}
	return nil
}

func (f *Flat) append(ids []int64, codes []byte) {
	base := len(f.ids)
	f.ids = append(f.ids, ids...)
	f.codes = append(f.codes, codes...)
	for i, id := range ids {
		if _, ok := f.pos[id]; !ok {
			f.pos[id] = base + i
		}
	}
}

// Clear implements binvec.Backend.
func (f *Flat) Clear() error {
	f.ids = f.ids[:0]
	f.codes = f.codes[:0]
	clear(f.pos)
	return nil
}

// Scan implements binvec.Backend.
func (f *Flat) Scan(fn func(id int64, code []byte) bool) error {
	for i, id := range f.ids {
		if !fn(id, f.code(i)) {
			return nil
		}
	}
	return nil
}

func (f *Flat) code(i int) []byte {
	return f.codes[i*f.codeSize : (i+1)*f.codeSize : (i+1)*f.codeSize]
}

// Erase implements binvec.Eraser. Entries are compacted in place, keeping
// the relative order of the survivors.
func (f *Flat) Erase(ids []int64) (int, error) {
	drop := roaring64.New()
	for _, id := range ids {
		if id >= 0 {
			drop.Add(uint64(id))
		}
	}
	if drop.IsEmpty() {
		return 0, nil
	}

	j := 0
	for i, id := range f.ids {
		if id >= 0 && drop.Contains(uint64(id)) {
			continue
		}
		if i != j {
			f.ids[j] = id
			copy(f.codes[j*f.codeSize:(j+1)*f.codeSize], f.code(i))
		}
		j++
	}
	removed := len(f.ids) - j
	if removed == 0 {
		return 0, nil
	}

	f.ids = f.ids[:j]
	f.codes = f.codes[:j*f.codeSize]
	clear(f.pos)
	for i, id := range f.ids {
		if _, ok := f.pos[id]; !ok {
			f.pos[id] = i
		}
	}
	return removed, nil
}

// Fetch implements binvec.Fetcher.
func (f *Flat) Fetch(id int64, dst []byte) error {
	i, ok := f.pos[id]
	if !ok {
		return fmt.Errorf("flat: id %d: %w", id, binvec.ErrNotFound)
	}
	copy(dst, f.code(i))
	return nil
}

// SearchKNN implements binvec.KNNSearcher. Queries are scanned in parallel;
// each query writes only its own result row.
func (f *Flat) SearchKNN(oracle distance.CodeFunc, queries []byte, n, k int, sel binvec.IDSelector, distances []int32, labels []int64) error {
	keep := f.selection(sel)
	return f.forEachQuery(n, func(q int) {
		query := queries[q*f.codeSize : (q+1)*f.codeSize]
		h := topk.New(k)
		for i, id := range f.ids {
			if keep != nil && !keep[i] {
				continue
			}
			h.Offer(oracle(query, f.code(i)), id)
		}
		h.Finalize(distances[q*k:(q+1)*k], labels[q*k:(q+1)*k])
	})
}

// RangeSearch implements binvec.RangeSearcher. Hits are grouped by query.
func (f *Flat) RangeSearch(oracle distance.CodeFunc, queries []byte, n int, radius int32, sel binvec.IDSelector, res *binvec.RangeSearchResult) error {
	keep := f.selection(sel)
	perQuery := make([][]binvec.RangeHit, n)
	err := f.forEachQuery(n, func(q int) {
		query := queries[q*f.codeSize : (q+1)*f.codeSize]
		for i, id := range f.ids {
			if keep != nil && !keep[i] {
				continue
			}
			if d := oracle(query, f.code(i)); d < radius {
				perQuery[q] = append(perQuery[q], binvec.RangeHit{Query: q, ID: id, Distance: d})
			}
		}
	})
	if err != nil {
		return err
	}
	for _, hits := range perQuery {
		res.Append(hits...)
	}
	return nil
}

// selection evaluates sel once per stored entry so the parallel query scans
// never call into it. A nil result admits every entry.
func (f *Flat) selection(sel binvec.IDSelector) []bool {
	if sel == nil {
		return nil
	}
	keep := make([]bool, len(f.ids))
	for i, id := range f.ids {
		keep[i] = sel.IsMember(id)
	}
	return keep
}

func (f *Flat) forEachQuery(n int, fn func(q int)) error {
	if f.opts.Parallelism <= 1 || n < 2 {
		for q := 0; q < n; q++ {
			fn(q)
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(f.opts.Parallelism)
	for q := 0; q < n; q++ {
		g.Go(func() error {
			fn(q)
			return nil
		})
	}
	return g.Wait()
}

// CheckMergeable implements binvec.Mergeable. Any backend with the same
// code size can be merged into a flat backend.
func (f *Flat) CheckMergeable(other binvec.Backend) error {
	if other.CodeSize() != f.codeSize {
		return fmt.Errorf("flat: code size %d != %d", other.CodeSize(), f.codeSize)
	}
	return nil
}
