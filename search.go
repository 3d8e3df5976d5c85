package binvec

import (
	"time"

	"github.com/hupe1980/binvec/distance"
	"github.com/hupe1980/binvec/internal/topk"
)

const (
	// PadLabel is the identifier of a result slot that holds no candidate.
	PadLabel = topk.PadLabel

	// PadDistance is the distance of a padded result slot.
	PadDistance = topk.PadDistance
)

// Neighbor is a single k-NN hit.
type Neighbor struct {
	ID       int64
	Distance int32
}

// SearchResult holds the k-NN results of N queries in row-major order.
// Row i occupies Distances[i*K:(i+1)*K] and Labels[i*K:(i+1)*K]; rows are
// ascending by distance and padded with PadLabel/PadDistance.
type SearchResult struct {
	N         int
	K         int
	Distances []int32
	Labels    []int64
}

func newSearchResult(n, k int) *SearchResult {
	return &SearchResult{
		N:         n,
		K:         k,
		Distances: make([]int32, n*k),
		Labels:    make([]int64, n*k),
	}
}

// Row returns the distances and labels of query i.
func (r *SearchResult) Row(i int) ([]int32, []int64) {
	lo, hi := i*r.K, (i+1)*r.K
	return r.Distances[lo:hi], r.Labels[lo:hi]
}

// Neighbors returns the non-padded hits of query i.
func (r *SearchResult) Neighbors(i int) []Neighbor {
	dists, labels := r.Row(i)
	out := make([]Neighbor, 0, len(labels))
	for j, id := range labels {
		if id == PadLabel {
			continue
		}
		out = append(out, Neighbor{ID: id, Distance: dists[j]})
	}
	return out
}

// Search returns the k nearest stored codes for each of the n queries in x.
//
// k <= 0 yields K == 0 rows and n == 0 an empty result; neither is an error.
// WithSelector restricts the candidates.
func (ix *Index) Search(n int, x []byte, k int, optFns ...func(*SearchOptions)) (*SearchResult, error) {
	const op = "search"

	start := time.Now()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	res, err := ix.search(op, n, x, k, resolveSearchOptions(optFns))
	ix.metrics.RecordSearch(n, k, time.Since(start), err)
	ix.logger.LogSearch(logCtx, op, n, k, err)
	return res, err
}

func (ix *Index) search(op string, n int, x []byte, k int, so SearchOptions) (*SearchResult, error) {
	if err := ix.checkTrained(op); err != nil {
		return nil, err
	}
	x, err := checkBuffer(op, n, x, ix.codeSize)
	if err != nil {
		return nil, err
	}
	if k < 0 {
		k = 0
	}

	res := newSearchResult(n, k)
	if n == 0 || k == 0 {
		return res, nil
	}

	if s, ok := ix.backend.(KNNSearcher); ok {
		err = s.SearchKNN(ix.oracle, x, n, k, so.Selector, res.Distances, res.Labels)
	} else {
		err = ScanKNN(ix.backend, ix.oracle, x, n, k, so.Selector, res.Distances, res.Labels)
	}
	if err != nil {
		return nil, wrapBackend(op, err)
	}
	return res, nil
}

// ScanKNN is the generic k-NN selector: one pass over b.Scan feeding a
// bounded heap per query. Ties keep the earlier-enumerated entry.
// distances and labels must have length n*k. A nil sel admits every entry.
func ScanKNN(b Backend, oracle distance.CodeFunc, queries []byte, n, k int, sel IDSelector, distances []int32, labels []int64) error {
	if n == 0 || k <= 0 {
		return nil
	}
	cs := b.CodeSize()

	heaps := make([]*topk.Heap, n)
	for i := range heaps {
		heaps[i] = topk.New(k)
	}

	var seq int64
	err := b.Scan(func(id int64, code []byte) bool {
		if !selected(sel, id) {
			return true
		}
		for q, h := range heaps {
			h.OfferItem(topk.Item{
				Distance: oracle(queries[q*cs:(q+1)*cs], code),
				Label:    id,
				Seq:      seq,
			})
		}
		seq++
		return true
	})
	if err != nil {
		return err
	}

	for q, h := range heaps {
		h.Finalize(distances[q*k:(q+1)*k], labels[q*k:(q+1)*k])
	}
	return nil
}

// Assign returns the label column of Search(n, x, k).
func (ix *Index) Assign(n int, x []byte, k int, optFns ...func(*SearchOptions)) ([]int64, error) {
	const op = "assign"

	start := time.Now()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	res, err := ix.search(op, n, x, k, resolveSearchOptions(optFns))
	ix.metrics.RecordSearch(n, k, time.Since(start), err)
	ix.logger.LogSearch(logCtx, op, n, k, err)
	if err != nil {
		return nil, err
	}
	return res.Labels, nil
}

// AssignOne returns the nearest stored identifier for each query.
func (ix *Index) AssignOne(n int, x []byte, optFns ...func(*SearchOptions)) ([]int64, error) {
	return ix.Assign(n, x, 1, optFns...)
}

// SearchAndReconstruct runs Search and returns the codes of the hits in an
// (n, k, CodeSize) region. Padded slots are left zeroed.
// It requires the Fetcher capability and returns nothing on any failure.
//
// Codes come from Fetch: when an id is stored more than once the region
// holds its first stored code, which need not be the entry that produced
// the hit.
func (ix *Index) SearchAndReconstruct(n int, x []byte, k int, optFns ...func(*SearchOptions)) (*SearchResult, []byte, error) {
	const op = "search_and_reconstruct"

	start := time.Now()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	res, recons, err := ix.searchAndReconstruct(op, n, x, k, resolveSearchOptions(optFns))
	ix.metrics.RecordSearch(n, k, time.Since(start), err)
	ix.logger.LogSearch(logCtx, op, n, k, err)
	return res, recons, err
}

func (ix *Index) searchAndReconstruct(op string, n int, x []byte, k int, so SearchOptions) (*SearchResult, []byte, error) {
	f, ok := ix.backend.(Fetcher)
	if !ok {
		return nil, nil, newError(op, KindNotImplemented, "backend %s cannot reconstruct codes", ix.backend.Name())
	}

	res, err := ix.search(op, n, x, k, so)
	if err != nil {
		return nil, nil, err
	}

	recons := make([]byte, len(res.Labels)*ix.codeSize)
	for j, id := range res.Labels {
		if id == PadLabel {
			continue
		}
		if err := f.Fetch(id, recons[j*ix.codeSize:(j+1)*ix.codeSize]); err != nil {
			return nil, nil, wrapBackend(op, err)
		}
	}
	return res, recons, nil
}
