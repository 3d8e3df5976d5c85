package topk

import "math"

const (
	// PadLabel marks a result slot that holds no candidate.
	PadLabel int64 = -1

	// PadDistance is the distance written to padded slots.
	// It must never be interpreted as a real distance.
	PadDistance int32 = math.MaxInt32
)

// heapArity is the branching factor. A 4-ary heap is shallower than a binary
// heap and keeps siblings in one cache line.
const heapArity = 4

// Item is a selected candidate.
type Item struct {
	Distance int32
	Label    int64
	Seq      int64 // enumeration order, used as tie-break
}

// worse reports whether a ranks after b: larger distance, or equal distance
// and enumerated later.
func worse(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Seq > b.Seq
}

// Heap keeps the k best candidates offered so far.
// The top of the heap is the current k-th best (the eviction candidate).
//
// Heap is NOT thread-safe. Use one Heap per query.
type Heap struct {
	items []Item
	k     int
	seq   int64
}

// New creates a heap for the k best candidates.
// k <= 0 yields a heap that admits nothing.
func New(k int) *Heap {
	h := &Heap{}
	h.Reset(k)
	return h
}

// Reset clears the heap for reuse with a new bound.
func (h *Heap) Reset(k int) {
	if k < 0 {
		k = 0
	}
	if cap(h.items) < k {
		h.items = make([]Item, 0, k)
	}
	h.items = h.items[:0]
	h.k = k
	h.seq = 0
}

// K returns the bound of the heap.
func (h *Heap) K() int { return h.k }

// Len returns the number of candidates currently held.
func (h *Heap) Len() int { return len(h.items) }

// Full reports whether the heap holds k candidates.
func (h *Heap) Full() bool { return len(h.items) >= h.k }

// Threshold returns the distance a candidate must beat to be admitted.
// It is PadDistance until the heap is full.
func (h *Heap) Threshold() int32 {
	if !h.Full() || h.k == 0 {
		return PadDistance
	}
	return h.items[0].Distance
}

// Offer presents the next enumerated candidate. It reports whether the
// candidate was admitted.
func (h *Heap) Offer(distance int32, label int64) bool {
	seq := h.seq
	h.seq++
	return h.offer(Item{Distance: distance, Label: label, Seq: seq})
}

// OfferItem presents a candidate with a caller-chosen sequence. Used when
// merging already ranked lists, where the sequence encodes (list, rank).
func (h *Heap) OfferItem(it Item) bool {
	return h.offer(it)
}

func (h *Heap) offer(it Item) bool {
	if h.k == 0 {
		return false
	}
	if len(h.items) < h.k {
		h.items = append(h.items, it)
		h.up(len(h.items) - 1)
		return true
	}
	if !worse(h.items[0], it) {
		return false
	}
	h.items[0] = it
	h.down(0, len(h.items))
	return true
}

// pop removes and returns the worst item. Panics if the heap is empty.
func (h *Heap) pop() Item {
	n := len(h.items) - 1
	h.items[0], h.items[n] = h.items[n], h.items[0]
	h.down(0, n)
	it := h.items[n]
	h.items = h.items[:n]
	return it
}

// Finalize drains the heap into distances and labels (both of length K) in
// ascending order and pads the remaining slots. It returns the number of
// real candidates written. The heap is empty afterwards.
func (h *Heap) Finalize(distances []int32, labels []int64) int {
	n := len(h.items)
	for i := n - 1; i >= 0; i-- {
		it := h.pop()
		distances[i] = it.Distance
		labels[i] = it.Label
	}
	for i := n; i < h.k; i++ {
		distances[i] = PadDistance
		labels[i] = PadLabel
	}
	return n
}

// Sorted drains the heap and returns the items in ascending order.
func (h *Heap) Sorted() []Item {
	out := make([]Item, len(h.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = h.pop()
	}
	return out
}

// up moves element at j up the heap.
// 4-ary heap: parent = (j-1)/4.
func (h *Heap) up(j int) {
	item := h.items[j]
	for j > 0 {
		i := (j - 1) / heapArity
		if !worse(item, h.items[i]) {
			break
		}
		h.items[j] = h.items[i]
		j = i
	}
	h.items[j] = item
}

// down moves element at i0 down the heap.
// 4-ary heap: first child = 4*i+1, up to 4 children to compare.
func (h *Heap) down(i0, n int) {
	i := i0
	item := h.items[i]
	for {
		firstChild := heapArity*i + 1
		if firstChild >= n {
			break
		}

		best := firstChild
		lastChild := min(firstChild+heapArity, n)
		for c := firstChild + 1; c < lastChild; c++ {
			if worse(h.items[c], h.items[best]) {
				best = c
			}
		}

		if !worse(h.items[best], item) {
			break
		}
		h.items[i] = h.items[best]
		i = best
	}
	h.items[i] = item
}
