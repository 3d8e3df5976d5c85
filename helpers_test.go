package binvec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/binvec"
	"github.com/hupe1980/binvec/backend/flat"
	"github.com/hupe1980/binvec/backend/sqlite"
)

// sliceBackend implements only the mandatory primitives.
type sliceBackend struct {
	cs    int
	ids   []int64
	codes []byte
}

func (*sliceBackend) Name() string    { return "slice" }
func (b *sliceBackend) CodeSize() int { return b.cs }
func (b *sliceBackend) Len() int      { return len(b.ids) }
func (b *sliceBackend) Clear() error  { b.ids, b.codes = nil, nil; return nil }
func (b *sliceBackend) Store(ids []int64, codes []byte) error {
	b.ids = append(b.ids, ids...)
	b.codes = append(b.codes, codes...)
	return nil
}

func (b *sliceBackend) Scan(fn func(id int64, code []byte) bool) error {
	for i, id := range b.ids {
		if !fn(id, b.codes[i*b.cs:(i+1)*b.cs]) {
			break
		}
	}
	return nil
}

// trainableFlat is a flat backend that must be trained before use.
type trainableFlat struct {
	*flat.Flat
	trained bool
}

func (b *trainableFlat) Train(int, []byte) error { b.trained = true; return nil }
func (b *trainableFlat) IsTrained() bool         { return b.trained }

type backendFactory struct {
	name string
	new  func(t *testing.T, codeSize int) binvec.Backend
	caps binvec.Capabilities
}

var fullCaps = binvec.Capabilities{
	CustomIDs:   true,
	Remove:      true,
	Reconstruct: true,
	RangeSearch: true,
	FastKNN:     true,
	Merge:       true,
}

func backends() []backendFactory {
	sqliteCaps := fullCaps
	sqliteCaps.FastKNN = false

	return []backendFactory{
		{
			name: "flat",
			new: func(_ *testing.T, cs int) binvec.Backend {
				return flat.New(cs, func(o *flat.Options) { o.Parallelism = 4 })
			},
			caps: fullCaps,
		},
		{
			name: "flat-sequential",
			new: func(_ *testing.T, cs int) binvec.Backend {
				return flat.New(cs, func(o *flat.Options) { o.Parallelism = 1 })
			},
			caps: fullCaps,
		},
		{
			name: "sqlite",
			new: func(t *testing.T, cs int) binvec.Backend {
				s, err := sqlite.Open(":memory:", cs)
				require.NoError(t, err)
				t.Cleanup(func() { _ = s.Close() })
				return s
			},
			caps: sqliteCaps,
		},
		{
			name: "minimal",
			new: func(_ *testing.T, cs int) binvec.Backend {
				return &sliceBackend{cs: cs}
			},
		},
	}
}

// scenarioCodes holds 0x0000, 0x0001 and 0xFFFF as 16-bit codes.
var scenarioCodes = []byte{0x00, 0x00, 0x00, 0x01, 0xFF, 0xFF}

func newIndex(t *testing.T, d int, b binvec.Backend, opts ...binvec.Option) *binvec.Index {
	t.Helper()

	ix, err := binvec.New(d, b, opts...)
	require.NoError(t, err)
	return ix
}

func newScenario(t *testing.T, b binvec.Backend, opts ...binvec.Option) *binvec.Index {
	t.Helper()

	ix := newIndex(t, 16, b, opts...)
	require.NoError(t, ix.Add(3, scenarioCodes))
	return ix
}
