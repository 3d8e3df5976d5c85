package testutil

import (
	"math/rand"
	"sort"
	"sync"
)

// SearchResult represents a search result.
type SearchResult struct {
	ID       int64
	Distance int32
}

// DistanceFunc computes the distance between two codes.
type DistanceFunc func(a, b []byte) int32

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// FillBytes fills dst with random bytes.
// Locks only once per call (preferred over calling Intn in a loop).
func (r *RNG) FillBytes(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = byte(r.rand.Intn(256))
	}
}

// Codes generates num random codes of codeSize bytes in one contiguous buffer.
func (r *RNG) Codes(num, codeSize int) []byte {
	data := make([]byte, num*codeSize)
	r.FillBytes(data)
	return data
}

// Near returns a copy of code with flips distinct random bits inverted, so
// its Hamming distance to code is exactly flips (capped at the bit length).
func (r *RNG) Near(code []byte, flips int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]byte(nil), code...)
	bits := r.rand.Perm(len(code) * 8)
	for _, b := range bits[:min(flips, len(bits))] {
		out[b/8] ^= 1 << (b % 8)
	}
	return out
}

// ExactTopK returns the k nearest codes of data to query by brute force.
// ids[i] is the identifier of code i; ties keep data order.
func ExactTopK(query, data []byte, ids []int64, codeSize, k int, dist DistanceFunc) []SearchResult {
	all := make([]SearchResult, len(ids))
	for i, id := range ids {
		all[i] = SearchResult{ID: id, Distance: dist(query, data[i*codeSize:(i+1)*codeSize])}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Distance < all[b].Distance })
	if len(all) > k {
		all = all[:max(k, 0)]
	}
	return all
}

// ExactRange returns every code of data with distance strictly below radius,
// in data order.
func ExactRange(query, data []byte, ids []int64, codeSize int, radius int32, dist DistanceFunc) []SearchResult {
	var out []SearchResult
	for i, id := range ids {
		if d := dist(query, data[i*codeSize:(i+1)*codeSize]); d < radius {
			out = append(out, SearchResult{ID: id, Distance: d})
		}
	}
	return out
}

// SequentialIDs returns ids start..start+n-1.
func SequentialIDs(start int64, n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = start + int64(i)
	}
	return ids
}

// ComputeRecall computes recall@k by comparing approximate results against ground truth.
func ComputeRecall(groundTruth, approximate []SearchResult) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[int64]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].ID] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := truthSet[r.ID]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}
