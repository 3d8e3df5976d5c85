package binvec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/binvec"
	"github.com/hupe1980/binvec/backend/flat"
	"github.com/hupe1980/binvec/distance"
	"github.com/hupe1980/binvec/testutil"
)

func TestRangeSearch(t *testing.T) {
	for _, f := range backends() {
		t.Run(f.name, func(t *testing.T) {
			ix := newScenario(t, f.new(t, 2))

			if !f.caps.RangeSearch {
				res := binvec.NewRangeSearchResult()
				err := ix.RangeSearch(1, []byte{0x00, 0x00}, 2, res)
				assert.ErrorIs(t, err, binvec.ErrNotImplemented)
				assert.Equal(t, 0, res.Len())
				return
			}

			t.Run("Scenario", func(t *testing.T) {
				res := binvec.NewRangeSearchResult()
				require.NoError(t, ix.RangeSearch(1, []byte{0x00, 0x00}, 2, res))
				assert.Equal(t, []binvec.RangeHit{
					{Query: 0, ID: 0, Distance: 0},
					{Query: 0, ID: 1, Distance: 1},
				}, res.Hits())
			})

			t.Run("RadiusZeroMatchesNothing", func(t *testing.T) {
				for _, radius := range []int{0, -5} {
					res := binvec.NewRangeSearchResult()
					require.NoError(t, ix.RangeSearch(3, scenarioCodes, radius, res))
					assert.Equal(t, 0, res.Len())
				}
			})

			t.Run("RadiusOneMatchesDuplicatesOnly", func(t *testing.T) {
				ix := newScenario(t, f.new(t, 2))
				require.NoError(t, ix.Add(1, []byte{0x00, 0x01}))

				res := binvec.NewRangeSearchResult()
				require.NoError(t, ix.RangeSearch(2, []byte{0x00, 0x01, 0x0F, 0x0F}, 1, res))
				assert.Equal(t, []binvec.RangeHit{
					{Query: 0, ID: 1, Distance: 0},
					{Query: 0, ID: 3, Distance: 0},
				}, res.Hits())
			})

			t.Run("AppendsToExistingResult", func(t *testing.T) {
				res := binvec.NewRangeSearchResult()
				res.Append(binvec.RangeHit{Query: 9, ID: 99, Distance: 3})

				require.NoError(t, ix.RangeSearch(2, []byte{0x00, 0x00, 0xFF, 0xFF}, 17, res))
				assert.Equal(t, 7, res.Len())
				assert.Equal(t, binvec.RangeHit{Query: 9, ID: 99, Distance: 3}, res.Hits()[0])
				assert.Len(t, res.ForQuery(0), 3)
				assert.Len(t, res.ForQuery(1), 3)
			})

			t.Run("InvalidArguments", func(t *testing.T) {
				assert.ErrorIs(t, ix.RangeSearch(1, []byte{0x00, 0x00}, 2, nil), binvec.ErrInvalidArgument)

				res := binvec.NewRangeSearchResult()
				assert.ErrorIs(t, ix.RangeSearch(-1, nil, 2, res), binvec.ErrInvalidArgument)
				assert.ErrorIs(t, ix.RangeSearch(2, []byte{0x00}, 2, res), binvec.ErrInvalidArgument)
				assert.Equal(t, 0, res.Len())
			})
		})
	}
}

func TestRangeSearchMatchesBruteForce(t *testing.T) {
	const (
		n        = 400
		nq       = 6
		codeSize = 4
		radius   = 12
	)

	rng := testutil.NewRNG(99)
	data := rng.Codes(n, codeSize)
	queries := rng.Codes(nq, codeSize)
	ids := testutil.SequentialIDs(0, n)

	for _, f := range backends() {
		if !f.caps.RangeSearch {
			continue
		}
		t.Run(f.name, func(t *testing.T) {
			ix := newIndex(t, codeSize*8, f.new(t, codeSize))
			require.NoError(t, ix.Add(n, data))

			res := binvec.NewRangeSearchResult()
			require.NoError(t, ix.RangeSearch(nq, queries, radius, res))

			total := 0
			for q := range nq {
				want := testutil.ExactRange(queries[q*codeSize:(q+1)*codeSize], data, ids, codeSize, radius, distance.Hamming)
				got := res.ForQuery(q)
				require.Len(t, got, len(want), "query %d", q)
				for i := range want {
					assert.Equal(t, want[i].ID, got[i].ID)
					assert.Equal(t, want[i].Distance, got[i].Distance)
					assert.Less(t, got[i].Distance, int32(radius))
				}
				total += len(want)
			}
			assert.Equal(t, total, res.Len())
		})
	}
}

func TestRangeSearchResultLims(t *testing.T) {
	res := binvec.NewRangeSearchResult()
	res.Append(
		binvec.RangeHit{Query: 1, ID: 10},
		binvec.RangeHit{Query: 0, ID: 20},
		binvec.RangeHit{Query: 1, ID: 11},
		binvec.RangeHit{Query: 5, ID: 30},
	)

	lims, hits := res.Lims(3)
	assert.Equal(t, []int{0, 1, 3, 3}, lims)

	require.Len(t, hits, 3)
	assert.Equal(t, int64(20), hits[0].ID)
	assert.Equal(t, int64(10), hits[1].ID)
	assert.Equal(t, int64(11), hits[2].ID)

	// The accumulated hits keep their insertion order.
	require.Equal(t, 4, res.Len())
	assert.Equal(t, int64(10), res.Hits()[0].ID)
	assert.Equal(t, int64(30), res.Hits()[3].ID)

	res.Reset()
	assert.Equal(t, 0, res.Len())
}

func TestScanRange(t *testing.T) {
	b := flat.New(2)
	require.NoError(t, b.Store([]int64{0, 1, 2}, scenarioCodes))

	res := binvec.NewRangeSearchResult()
	require.NoError(t, binvec.ScanRange(b, distance.Hamming, []byte{0x00, 0x00, 0xFF, 0xFF}, 2, 2, nil, res))
	assert.Equal(t, []binvec.RangeHit{
		{Query: 0, ID: 0, Distance: 0},
		{Query: 0, ID: 1, Distance: 1},
		{Query: 1, ID: 2, Distance: 0},
	}, res.Hits())
}

func TestRangeSearchWithSelector(t *testing.T) {
	for _, f := range backends() {
		if !f.caps.RangeSearch {
			continue
		}
		t.Run(f.name, func(t *testing.T) {
			ix := newScenario(t, f.new(t, 2))

			res := binvec.NewRangeSearchResult()
			require.NoError(t, ix.RangeSearch(1, []byte{0x00, 0x00}, 20, res, binvec.WithSelector(binvec.SelectRange(1, 3))))
			assert.Equal(t, []binvec.RangeHit{
				{Query: 0, ID: 1, Distance: 1},
				{Query: 0, ID: 2, Distance: 16},
			}, res.Hits())
		})
	}
}
