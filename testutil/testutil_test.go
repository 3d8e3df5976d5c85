package testutil

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hamming(a, b []byte) int32 {
	var d int
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return int32(d)
}

func TestCodes(t *testing.T) {
	rng := NewRNG(4711)

	data := rng.Codes(8, 4)
	assert.Len(t, data, 32)

	rng.Reset()
	assert.Equal(t, data, rng.Codes(8, 4))
}

func TestNear(t *testing.T) {
	rng := NewRNG(4711)
	code := rng.Codes(1, 8)

	for _, flips := range []int{0, 1, 5, 64, 100} {
		near := rng.Near(code, flips)
		assert.Equal(t, int32(min(flips, 64)), hamming(code, near), "flips=%d", flips)
	}
}

func TestExactTopK(t *testing.T) {
	data := []byte{0x00, 0x01, 0x03, 0x01}
	ids := SequentialIDs(10, 4)

	res := ExactTopK([]byte{0x00}, data, ids, 1, 3, hamming)
	require.Len(t, res, 3)
	assert.Equal(t, []SearchResult{{10, 0}, {11, 1}, {13, 1}}, res)

	assert.Len(t, ExactTopK([]byte{0x00}, data, ids, 1, 10, hamming), 4)
	assert.Empty(t, ExactTopK([]byte{0x00}, data, ids, 1, 0, hamming))
}

func TestExactRange(t *testing.T) {
	data := []byte{0x00, 0x01, 0x03, 0xFF}
	ids := SequentialIDs(0, 4)

	assert.Empty(t, ExactRange([]byte{0x00}, data, ids, 1, 0, hamming))
	assert.Equal(t, []SearchResult{{0, 0}}, ExactRange([]byte{0x00}, data, ids, 1, 1, hamming))
	assert.Equal(t, []SearchResult{{0, 0}, {1, 1}, {2, 2}}, ExactRange([]byte{0x00}, data, ids, 1, 3, hamming))
}

func TestComputeRecall(t *testing.T) {
	truth := []SearchResult{{1, 0}, {2, 1}}
	assert.Equal(t, 1.0, ComputeRecall(truth, truth))
	assert.Equal(t, 0.5, ComputeRecall(truth, []SearchResult{{1, 0}, {3, 1}}))
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.0, ComputeRecall(truth, nil))
}
