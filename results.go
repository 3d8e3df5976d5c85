package binvec

import "github.com/hupe1980/binvec/internal/topk"

// MergeResults merges per-shard k-NN results for the same queries into a
// single result with k hits per query. Equal distances rank the earlier shard
// first, then the earlier slot within a shard. Padded slots are ignored.
func MergeResults(k int, shards ...*SearchResult) (*SearchResult, error) {
	const op = "merge_results"

	if k < 0 {
		k = 0
	}
	if len(shards) == 0 {
		return newSearchResult(0, k), nil
	}

	n := -1
	for i, s := range shards {
		if s == nil {
			return nil, newError(op, KindInvalidArgument, "shard %d is nil", i)
		}
		if n >= 0 && s.N != n {
			return nil, newError(op, KindInvalidArgument, "shard %d has %d queries, want %d", i, s.N, n)
		}
		n = s.N
	}

	out := newSearchResult(n, k)
	if k == 0 {
		return out, nil
	}

	h := topk.New(k)
	for q := 0; q < n; q++ {
		h.Reset(k)
		var base int64
		for _, s := range shards {
			dists, labels := s.Row(q)
			for j, id := range labels {
				if id == PadLabel {
					continue
				}
				h.OfferItem(topk.Item{
					Distance: dists[j],
					Label:    id,
					Seq:      base + int64(j),
				})
			}
			base += int64(s.K)
		}
		h.Finalize(out.Row(q))
	}
	return out, nil
}
