package persistence

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Snapshot payloads are checksummed with xxhash64. It detects accidental
// corruption only; it is not a tamper check.

// checksumWriter wraps an io.Writer and computes a running xxhash64.
type checksumWriter struct {
	w    io.Writer
	hash *xxhash.Digest
}

func newChecksumWriter(w io.Writer) *checksumWriter {
	return &checksumWriter{w: w, hash: xxhash.New()}
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	_, _ = cw.hash.Write(p)
	return cw.w.Write(p)
}

func (cw *checksumWriter) Sum() uint64 { return cw.hash.Sum64() }

// checksumReader wraps an io.Reader and computes a running xxhash64 over
// the bytes actually read.
type checksumReader struct {
	r    io.Reader
	hash *xxhash.Digest
}

func newChecksumReader(r io.Reader) *checksumReader {
	return &checksumReader{r: r, hash: xxhash.New()}
}

func (cr *checksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		_, _ = cr.hash.Write(p[:n])
	}
	return n, err
}

func (cr *checksumReader) Sum() uint64 { return cr.hash.Sum64() }

// Verify checks the computed checksum against expected.
func (cr *checksumReader) Verify(expected uint64) error {
	if actual := cr.Sum(); actual != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}

// ChecksumMismatchError is returned when checksum verification fails.
// It matches ErrCorruptSnapshot.
type ChecksumMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("persistence: checksum mismatch: expected 0x%016x, got 0x%016x", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrCorruptSnapshot
}
