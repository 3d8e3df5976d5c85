package binvec

import (
	"math"
	"slices"
	"time"

	"github.com/hupe1980/binvec/distance"
)

// RangeHit is a stored entry within the radius of query Query.
type RangeHit struct {
	Query    int
	ID       int64
	Distance int32
}

// RangeSearchResult accumulates range search hits. Operations only append;
// the caller owns and may reuse it.
type RangeSearchResult struct {
	hits []RangeHit
}

// NewRangeSearchResult returns an empty result.
func NewRangeSearchResult() *RangeSearchResult {
	return &RangeSearchResult{}
}

// Append records hits.
func (r *RangeSearchResult) Append(hits ...RangeHit) {
	r.hits = append(r.hits, hits...)
}

// Len returns the number of hits.
func (r *RangeSearchResult) Len() int { return len(r.hits) }

// Hits returns every hit in insertion order.
func (r *RangeSearchResult) Hits() []RangeHit { return r.hits }

// Reset drops all hits.
func (r *RangeSearchResult) Reset() { r.hits = r.hits[:0] }

// ForQuery returns the hits of query q in insertion order.
func (r *RangeSearchResult) ForQuery(q int) []RangeHit {
	var out []RangeHit
	for _, h := range r.hits {
		if h.Query == q {
			out = append(out, h)
		}
	}
	return out
}

// Lims returns the hits of queries [0, nq) grouped by query together with
// CSR offsets: the hits of query q are hits[lims[q]:lims[q+1]]. Grouping is
// stable. The result itself is not modified.
func (r *RangeSearchResult) Lims(nq int) (lims []int, hits []RangeHit) {
	lims = make([]int, nq+1)
	for _, h := range r.hits {
		if h.Query >= 0 && h.Query < nq {
			hits = append(hits, h)
			lims[h.Query+1]++
		}
	}
	slices.SortStableFunc(hits, func(a, b RangeHit) int { return a.Query - b.Query })
	for q := 0; q < nq; q++ {
		lims[q+1] += lims[q]
	}
	return lims, hits
}

// RangeSearch appends to res every stored entry with distance strictly below
// radius, for each of the n queries in x. radius <= 0 matches nothing and
// radius 1 matches exact duplicates only.
//
// It requires the RangeSearcher capability. Hits are only appended when the
// whole call succeeds. WithSelector restricts the candidates.
func (ix *Index) RangeSearch(n int, x []byte, radius int, res *RangeSearchResult, optFns ...func(*SearchOptions)) error {
	const op = "range_search"

	start := time.Now()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits, err := ix.rangeSearch(op, n, x, radius, res, resolveSearchOptions(optFns))
	ix.metrics.RecordRangeSearch(n, hits, time.Since(start), err)
	ix.logger.LogRangeSearch(logCtx, n, radius, hits, err)
	return err
}

func (ix *Index) rangeSearch(op string, n int, x []byte, radius int, res *RangeSearchResult, so SearchOptions) (int, error) {
	rs, ok := ix.backend.(RangeSearcher)
	if !ok {
		return 0, newError(op, KindNotImplemented, "backend %s does not support range search", ix.backend.Name())
	}
	if res == nil {
		return 0, newError(op, KindInvalidArgument, "nil result")
	}
	if err := ix.checkTrained(op); err != nil {
		return 0, err
	}
	x, err := checkBuffer(op, n, x, ix.codeSize)
	if err != nil {
		return 0, err
	}
	if n == 0 || radius <= 0 {
		return 0, nil
	}

	r := int32(math.MaxInt32)
	if radius < math.MaxInt32 {
		r = int32(radius)
	}

	local := NewRangeSearchResult()
	if err := rs.RangeSearch(ix.oracle, x, n, r, so.Selector, local); err != nil {
		return 0, wrapBackend(op, err)
	}
	res.Append(local.hits...)
	return local.Len(), nil
}

// ScanRange is the generic range accumulator: one pass over b.Scan, hits
// grouped by query in enumeration order. A nil sel admits every entry.
func ScanRange(b Backend, oracle distance.CodeFunc, queries []byte, n int, radius int32, sel IDSelector, res *RangeSearchResult) error {
	if n == 0 || radius <= 0 {
		return nil
	}
	cs := b.CodeSize()

	perQuery := make([][]RangeHit, n)
	err := b.Scan(func(id int64, code []byte) bool {
		if !selected(sel, id) {
			return true
		}
		for q := range perQuery {
			if d := oracle(queries[q*cs:(q+1)*cs], code); d < radius {
				perQuery[q] = append(perQuery[q], RangeHit{Query: q, ID: id, Distance: d})
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	for _, hits := range perQuery {
		res.Append(hits...)
	}
	return nil
}
