package binvec

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
)

func TestSelectors(t *testing.T) {
	tests := []struct {
		name string
		sel  IDSelector
		in   []int64
		out  []int64
	}{
		{"Range", SelectRange(2, 5), []int64{2, 3, 4}, []int64{1, 5, -1}},
		{"Batch", SelectBatch(1, 7, -3), []int64{1, 7}, []int64{0, 2, -3}},
		{"Bitmap", SelectBitmap(roaring64.BitmapOf(4, 1<<40)), []int64{4, 1 << 40}, []int64{5}},
		{"NilBitmap", SelectBitmap(nil), nil, []int64{0, 1}},
		{"All", SelectAll(), []int64{-1, 0, 1 << 50}, nil},
		{"Not", Not(SelectRange(0, 10)), []int64{-1, 10}, []int64{0, 9}},
		{"And", And(SelectRange(0, 10), SelectBatch(3, 12)), []int64{3}, []int64{12, 4}},
		{"Or", Or(SelectRange(0, 2), SelectBatch(12)), []int64{0, 1, 12}, []int64{2, 11}},
		{"Xor", Xor(SelectRange(0, 5), SelectRange(3, 8)), []int64{0, 2, 5, 7}, []int64{3, 4, 8}},
		{"Func", SelectorFunc(func(id int64) bool { return id%2 == 0 }), []int64{0, 2}, []int64{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, id := range tt.in {
				assert.True(t, tt.sel.IsMember(id), "id %d", id)
			}
			for _, id := range tt.out {
				assert.False(t, tt.sel.IsMember(id), "id %d", id)
			}
		})
	}

	assert.Equal(t, uint64(2), SelectBatch(1, 1, 2).Cardinality())
}
