package binvec

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// IDSelector decides which identifiers RemoveIDs removes and which
// candidates a search filtered WithSelector considers.
type IDSelector interface {
	IsMember(id int64) bool
}

// SelectorFunc adapts a function to IDSelector.
type SelectorFunc func(id int64) bool

// IsMember implements IDSelector.
func (f SelectorFunc) IsMember(id int64) bool { return f(id) }

type rangeSelector struct {
	lo, hi int64
}

func (s rangeSelector) IsMember(id int64) bool { return id >= s.lo && id < s.hi }

// SelectRange selects identifiers in [lo, hi).
func SelectRange(lo, hi int64) IDSelector {
	return rangeSelector{lo: lo, hi: hi}
}

// BitmapSelector selects the identifiers held in a 64-bit roaring bitmap.
// Negative identifiers are never members.
type BitmapSelector struct {
	rb *roaring64.Bitmap
}

// SelectBatch selects exactly the given identifiers.
func SelectBatch(ids ...int64) *BitmapSelector {
	rb := roaring64.New()
	for _, id := range ids {
		if id >= 0 {
			rb.Add(uint64(id))
		}
	}
	return &BitmapSelector{rb: rb}
}

// SelectBitmap selects the identifiers in rb. The bitmap is not copied and
// must not be modified while the selector is in use.
func SelectBitmap(rb *roaring64.Bitmap) *BitmapSelector {
	if rb == nil {
		rb = roaring64.New()
	}
	return &BitmapSelector{rb: rb}
}

// IsMember implements IDSelector.
func (s *BitmapSelector) IsMember(id int64) bool {
	return id >= 0 && s.rb.Contains(uint64(id))
}

// Cardinality returns the number of selected identifiers.
func (s *BitmapSelector) Cardinality() uint64 { return s.rb.GetCardinality() }

// Bitmap returns the underlying bitmap.
func (s *BitmapSelector) Bitmap() *roaring64.Bitmap { return s.rb }

// SelectAll selects every identifier.
func SelectAll() IDSelector {
	return SelectorFunc(func(int64) bool { return true })
}

// Not inverts sel.
func Not(sel IDSelector) IDSelector {
	return SelectorFunc(func(id int64) bool { return !sel.IsMember(id) })
}

// And selects identifiers selected by both a and b.
func And(a, b IDSelector) IDSelector {
	return SelectorFunc(func(id int64) bool { return a.IsMember(id) && b.IsMember(id) })
}

// Or selects identifiers selected by a or b.
func Or(a, b IDSelector) IDSelector {
	return SelectorFunc(func(id int64) bool { return a.IsMember(id) || b.IsMember(id) })
}

// Xor selects identifiers selected by exactly one of a and b.
func Xor(a, b IDSelector) IDSelector {
	return SelectorFunc(func(id int64) bool { return a.IsMember(id) != b.IsMember(id) })
}
