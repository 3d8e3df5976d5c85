package flat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/binvec"
	"github.com/hupe1980/binvec/distance"
	"github.com/hupe1980/binvec/testutil"
)

func collect(t *testing.T, f *Flat) ([]int64, []byte) {
	t.Helper()

	var (
		ids   []int64
		codes []byte
	)
	require.NoError(t, f.Scan(func(id int64, code []byte) bool {
		ids = append(ids, id)
		codes = append(codes, code...)
		return true
	}))
	return ids, codes
}

func TestStore(t *testing.T) {
	f := New(2)
	assert.Equal(t, "flat", f.Name())
	assert.Equal(t, 2, f.CodeSize())

	require.NoError(t, f.Store([]int64{0, 1}, []byte{1, 2, 3, 4}))
	require.NoError(t, f.Store([]int64{5}, []byte{5, 6}))
	assert.Equal(t, 3, f.Len())

	ids, codes := collect(t, f)
	assert.Equal(t, []int64{0, 1, 5}, ids)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, codes)

	t.Run("RejectsNonAscending", func(t *testing.T) {
		assert.Error(t, f.Store([]int64{4}, []byte{0, 0}))
		assert.Error(t, f.Store([]int64{7, 7}, []byte{0, 0, 0, 0}))
		assert.Equal(t, 3, f.Len())
	})

	t.Run("RejectsShortBuffer", func(t *testing.T) {
		err := f.Store([]int64{9}, []byte{0})
		assert.ErrorIs(t, err, binvec.ErrInvalidArgument)
	})

	t.Run("ScanStopsEarly", func(t *testing.T) {
		calls := 0
		require.NoError(t, f.Scan(func(int64, []byte) bool {
			calls++
			return false
		}))
		assert.Equal(t, 1, calls)
	})
}

func TestStoreCustom(t *testing.T) {
	f := New(1)
	require.NoError(t, f.StoreCustom([]int64{9, 3, 9}, []byte{1, 2, 3}))

	dst := make([]byte, 1)
	require.NoError(t, f.Fetch(9, dst))
	assert.Equal(t, []byte{1}, dst)
	require.NoError(t, f.Fetch(3, dst))
	assert.Equal(t, []byte{2}, dst)

	assert.ErrorIs(t, f.Fetch(4, dst), binvec.ErrNotFound)
}

func TestErase(t *testing.T) {
	f := New(1)
	require.NoError(t, f.StoreCustom([]int64{0, 1, 2, 1, 3}, []byte{10, 11, 12, 13, 14}))

	removed, err := f.Erase([]int64{1, 3, 42, -1})
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	ids, codes := collect(t, f)
	assert.Equal(t, []int64{0, 2}, ids)
	assert.Equal(t, []byte{10, 12}, codes)

	dst := make([]byte, 1)
	require.NoError(t, f.Fetch(2, dst))
	assert.Equal(t, []byte{12}, dst)
	assert.ErrorIs(t, f.Fetch(1, dst), binvec.ErrNotFound)

	removed, err = f.Erase(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	require.NoError(t, f.Clear())
	assert.Equal(t, 0, f.Len())
	assert.ErrorIs(t, f.Fetch(0, dst), binvec.ErrNotFound)
}

func TestSearchKNN(t *testing.T) {
	const (
		n        = 300
		nq       = 9
		codeSize = 8
		k        = 7
	)

	rng := testutil.NewRNG(1)
	data := rng.Codes(n, codeSize)
	queries := rng.Codes(nq, codeSize)
	ids := testutil.SequentialIDs(100, n)

	even := binvec.SelectorFunc(func(id int64) bool { return id%2 == 0 })

	for _, parallelism := range []int{1, 4} {
		f := New(codeSize, func(o *Options) {
			o.Parallelism = parallelism
			o.InitialCapacity = n
		})
		require.NoError(t, f.Store(ids, data))

		for _, sel := range []binvec.IDSelector{nil, even} {
			distances := make([]int32, nq*k)
			labels := make([]int64, nq*k)
			require.NoError(t, f.SearchKNN(distance.Hamming, queries, nq, k, sel, distances, labels))

			// The generic selector is the reference.
			wantD := make([]int32, nq*k)
			wantL := make([]int64, nq*k)
			require.NoError(t, binvec.ScanKNN(f, distance.Hamming, queries, nq, k, sel, wantD, wantL))

			assert.Equal(t, wantD, distances, "parallelism=%d", parallelism)
			assert.Equal(t, wantL, labels, "parallelism=%d", parallelism)
			if sel != nil {
				for _, id := range labels {
					assert.True(t, id%2 == 0, "id %d", id)
				}
			}
		}
	}
}

func TestRangeSearch(t *testing.T) {
	rng := testutil.NewRNG(2)
	data := rng.Codes(200, 4)
	queries := rng.Codes(5, 4)

	f := New(4, func(o *Options) { o.Parallelism = 3 })
	require.NoError(t, f.Store(testutil.SequentialIDs(0, 200), data))

	for _, sel := range []binvec.IDSelector{nil, binvec.SelectRange(50, 120)} {
		got := binvec.NewRangeSearchResult()
		require.NoError(t, f.RangeSearch(distance.Hamming, queries, 5, 14, sel, got))

		want := binvec.NewRangeSearchResult()
		require.NoError(t, binvec.ScanRange(f, distance.Hamming, queries, 5, 14, sel, want))

		assert.Equal(t, want.Hits(), got.Hits())
		if sel != nil {
			for _, h := range got.Hits() {
				assert.True(t, sel.IsMember(h.ID), "id %d", h.ID)
			}
		}
	}
}

func TestCheckMergeable(t *testing.T) {
	f := New(2)
	assert.NoError(t, f.CheckMergeable(New(2)))
	assert.Error(t, f.CheckMergeable(New(3)))
}
