package binvec

import "math"

// Reconstruct returns a copy of the code stored under id.
// It requires the Fetcher capability and fails with ErrNotFound for
// removed or never-stored identifiers.
func (ix *Index) Reconstruct(id int64) ([]byte, error) {
	const op = "reconstruct"

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	f, ok := ix.backend.(Fetcher)
	if !ok {
		return nil, newError(op, KindNotImplemented, "backend %s cannot reconstruct codes", ix.backend.Name())
	}
	dst := make([]byte, ix.codeSize)
	if err := f.Fetch(id, dst); err != nil {
		return nil, wrapBackend(op, err)
	}
	return dst, nil
}

// ReconstructN returns the codes of identifiers i0..i0+ni-1 concatenated.
// Any missing identifier fails the whole call with ErrNotFound. A range
// longer than NTotal or past the largest identifier is ErrInvalidArgument.
func (ix *Index) ReconstructN(i0, ni int64) ([]byte, error) {
	const op = "reconstruct_n"

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	f, ok := ix.backend.(Fetcher)
	if !ok {
		return nil, newError(op, KindNotImplemented, "backend %s cannot reconstruct codes", ix.backend.Name())
	}
	if i0 < 0 || ni < 0 || i0 > math.MaxInt64-ni {
		return nil, newError(op, KindInvalidArgument, "invalid id range [%d, %d+%d)", i0, i0, ni)
	}
	if ntotal := int64(ix.backend.Len()); ni > ntotal {
		return nil, newError(op, KindInvalidArgument, "%d ids requested, index holds %d", ni, ntotal)
	}

	cs := int64(ix.codeSize)
	out := make([]byte, ni*cs)
	for i := int64(0); i < ni; i++ {
		if err := f.Fetch(i0+i, out[i*cs:(i+1)*cs]); err != nil {
			return nil, wrapBackend(op, err)
		}
	}
	return out, nil
}
