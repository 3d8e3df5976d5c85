package persistence

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

func newLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec))
}

// rateWriter throttles writes. Chunks never exceed the limiter burst.
type rateWriter struct {
	ctx context.Context
	w   io.Writer
	lim *rate.Limiter
}

func (rw *rateWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n := min(len(p), rw.lim.Burst())
		if err := rw.lim.WaitN(rw.ctx, n); err != nil {
			return total, err
		}
		m, err := rw.w.Write(p[:n])
		total += m
		if err != nil {
			return total, err
		}
		p = p[n:]
	}
	return total, nil
}

// rateReader throttles reads.
type rateReader struct {
	ctx context.Context
	r   io.Reader
	lim *rate.Limiter
}

func (rr *rateReader) Read(p []byte) (int, error) {
	if len(p) > rr.lim.Burst() {
		p = p[:rr.lim.Burst()]
	}
	n, err := rr.r.Read(p)
	if n > 0 {
		if werr := rr.lim.WaitN(rr.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// countingWriter counts bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// countingReader counts bytes read.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

func throttleWriter(ctx context.Context, w io.Writer, bytesPerSec int64) io.Writer {
	if lim := newLimiter(bytesPerSec); lim != nil {
		return &rateWriter{ctx: ctx, w: w, lim: lim}
	}
	return w
}

func throttleReader(ctx context.Context, r io.Reader, bytesPerSec int64) io.Reader {
	if lim := newLimiter(bytesPerSec); lim != nil {
		return &rateReader{ctx: ctx, r: r, lim: lim}
	}
	return r
}
