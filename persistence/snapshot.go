package persistence

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/binvec"
	"github.com/hupe1980/binvec/distance"
)

// Options configures Save and Load.
type Options struct {
	// Compression selects the block compression written by Save.
	// Load reads it from the snapshot header.
	Compression Compression

	// BlockSize is the uncompressed size of a block written by Save.
	BlockSize int

	// IOLimitBytesPerSec throttles snapshot IO. Zero disables throttling.
	IOLimitBytesPerSec int64

	// BatchSize is the number of entries handed to the backend per Store call on Load.
	BatchSize int

	// Logger receives a record per snapshot operation. Nil disables logging.
	Logger *binvec.Logger

	// IndexOptions are passed to binvec.New by Load, after the metric and
	// start id restored from the snapshot.
	IndexOptions []binvec.Option
}

// DefaultOptions contains the default snapshot settings.
var DefaultOptions = Options{
	Compression: CompressionLZ4,
	BlockSize:   DefaultBlockSize,
	BatchSize:   4096,
}

const bufferSize = 64 * 1024

func resolveOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = binvec.NoopLogger()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions.BatchSize
	}
	return opts
}

// Save writes a snapshot of ix to w.
//
// Entries are written in enumeration order together with the next id, so
// Load restores the same ids, the same search tie order and keeps removed
// ids retired. Save holds the index read lock while writing: mutations
// wait until it returns.
func Save(ctx context.Context, w io.Writer, ix *binvec.Index, optFns ...func(o *Options)) (err error) {
	opts := resolveOptions(optFns)

	switch {
	case ix == nil:
		return fmt.Errorf("persistence: nil index: %w", binvec.ErrInvalidArgument)
	case !opts.Compression.valid():
		return fmt.Errorf("persistence: unknown compression %s: %w", opts.Compression, binvec.ErrInvalidArgument)
	case opts.BlockSize <= 0 || opts.BlockSize > MaxBlockSize:
		return fmt.Errorf("persistence: block size %d out of range: %w", opts.BlockSize, binvec.ErrInvalidArgument)
	}

	cw := &countingWriter{w: throttleWriter(ctx, w, opts.IOLimitBytesPerSec)}
	bw := bufio.NewWriterSize(cw, bufferSize)
	blocks := newBlockWriter(bw, opts.Compression, opts.BlockSize)
	payload := newChecksumWriter(blocks)

	var count uint64
	defer func() {
		opts.Logger.LogSnapshot(ctx, "save", int64(count), cw.n, err)
	}()

	rec := make([]byte, 8+ix.CodeSize())

	var werr error
	err = ix.ScanWithState(func(ntotal, nextID int64) error {
		return writeHeader(bw, &Header{
			D:           ix.D(),
			Metric:      ix.MetricType().String(),
			NTotal:      ntotal,
			NextID:      nextID,
			Backend:     ix.Backend().Name(),
			Compression: opts.Compression,
			BlockSize:   opts.BlockSize,
		})
	}, func(id int64, code []byte) bool {
		if count%1024 == 0 {
			if werr = ctx.Err(); werr != nil {
				return false
			}
		}
		binary.LittleEndian.PutUint64(rec, uint64(id))
		copy(rec[8:], code)
		if _, werr = payload.Write(rec); werr != nil {
			return false
		}
		count++
		return true
	})
	if err == nil {
		err = werr
	}
	if err != nil {
		return err
	}

	if err = blocks.Close(); err != nil {
		return err
	}
	if err = writeTrailer(bw, trailer{Count: count, Checksum: payload.Sum()}); err != nil {
		return err
	}
	return bw.Flush()
}

// Load restores a snapshot from r into backend and returns an index over it.
//
// backend must be empty and store codes of the snapshot's size. On any
// failure after the header has been accepted the backend is cleared.
func Load(ctx context.Context, r io.Reader, backend binvec.Backend, optFns ...func(o *Options)) (ix *binvec.Index, err error) {
	opts := resolveOptions(optFns)

	if backend == nil {
		return nil, fmt.Errorf("persistence: nil backend: %w", binvec.ErrInvalidArgument)
	}

	cr := &countingReader{r: throttleReader(ctx, r, opts.IOLimitBytesPerSec)}
	br := bufio.NewReaderSize(cr, bufferSize)

	var count uint64
	defer func() {
		opts.Logger.LogSnapshot(ctx, "load", int64(count), cr.n, err)
	}()

	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	if n := backend.Len(); n != 0 {
		return nil, fmt.Errorf("persistence: backend %s holds %d entries: %w", backend.Name(), n, binvec.ErrInvalidArgument)
	}
	if backend.CodeSize() != h.CodeSize() {
		return nil, fmt.Errorf("persistence: backend %s stores %d-byte codes, snapshot has %d: %w",
			backend.Name(), backend.CodeSize(), h.CodeSize(), binvec.ErrInvalidArgument)
	}

	defer func() {
		if err != nil {
			_ = backend.Clear()
		}
	}()

	l := &loader{backend: backend, maxID: -1}
	payload := newChecksumReader(newBlockReader(br, h.Compression, h.BlockSize))

	codeSize := h.CodeSize()
	rec := make([]byte, 8+codeSize)
	ids := make([]int64, 0, opts.BatchSize)
	codes := make([]byte, 0, opts.BatchSize*codeSize)

	flush := func() error {
		if len(ids) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.store(ids, codes); err != nil {
			return err
		}
		ids, codes = ids[:0], codes[:0]
		return nil
	}

	for {
		_, rerr := io.ReadFull(payload, rec)
		if errors.Is(rerr, io.EOF) {
			break
		}
		if errors.Is(rerr, io.ErrUnexpectedEOF) {
			return nil, corruptf("record %d truncated", count)
		}
		if rerr != nil {
			return nil, rerr
		}

		id := int64(binary.LittleEndian.Uint64(rec))
		if id < 0 {
			return nil, corruptf("record %d: negative id %d", count, id)
		}
		ids = append(ids, id)
		codes = append(codes, rec[8:]...)
		count++

		if len(ids) == opts.BatchSize {
			if err = flush(); err != nil {
				return nil, err
			}
		}
	}
	if err = flush(); err != nil {
		return nil, err
	}

	t, err := readTrailer(br)
	if err != nil {
		return nil, err
	}
	if t.Count != count || uint64(h.NTotal) != count {
		return nil, corruptf("%d records, trailer says %d, header says %d", count, t.Count, h.NTotal)
	}
	if err = payload.Verify(t.Checksum); err != nil {
		return nil, err
	}

	metric, _ := distance.ParseMetric(h.Metric)
	indexOpts := append([]binvec.Option{
		binvec.WithMetric(metric),
		binvec.WithStartID(max(h.NextID, l.maxID+1)),
	}, opts.IndexOptions...)

	return binvec.New(h.D, backend, indexOpts...)
}

// loader stores restored batches, using the append-only path while ids
// keep ascending.
type loader struct {
	backend binvec.Backend
	maxID   int64
}

func (l *loader) store(ids []int64, codes []byte) error {
	appendOnly := ids[0] > l.maxID
	for i := 1; appendOnly && i < len(ids); i++ {
		appendOnly = ids[i] > ids[i-1]
	}

	switch {
	case appendOnly:
		if err := l.backend.Store(ids, codes); err != nil {
			return err
		}
	default:
		cs, ok := l.backend.(binvec.CustomIDStore)
		if !ok {
			return fmt.Errorf("persistence: snapshot ids are not ascending and backend %s has no custom ids: %w",
				l.backend.Name(), binvec.ErrNotSupported)
		}
		if err := cs.StoreCustom(ids, codes); err != nil {
			return err
		}
	}

	for _, id := range ids {
		l.maxID = max(l.maxID, id)
	}
	return nil
}
