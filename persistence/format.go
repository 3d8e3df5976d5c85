package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/hupe1980/binvec/distance"
)

const (
	// Magic identifies binvec snapshot files.
	Magic = "BINV"
	// Version is the current snapshot format version.
	Version uint16 = 1

	preambleSize  = 4 + 2 + 4
	trailerSize   = 8 + 8
	maxHeaderSize = 64 * 1024
)

var (
	// ErrInvalidMagic is returned when the input is not a binvec snapshot.
	ErrInvalidMagic = errors.New("persistence: invalid magic number")
	// ErrInvalidVersion is returned for snapshots written by an unknown format version.
	ErrInvalidVersion = errors.New("persistence: unsupported version")
	// ErrCorruptSnapshot is returned for truncated or damaged snapshots.
	ErrCorruptSnapshot = errors.New("persistence: corrupt snapshot")
)

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptSnapshot, fmt.Sprintf(format, args...))
}

// Header describes a snapshot. It is msgpack-encoded after the preamble
// [Magic][Version uint16][HeaderLen uint32].
type Header struct {
	D           int         `msgpack:"d"`
	Metric      string      `msgpack:"metric"`
	NTotal      int64       `msgpack:"ntotal"`
	NextID      int64       `msgpack:"next_id"`
	Backend     string      `msgpack:"backend"`
	Compression Compression `msgpack:"compression"`
	BlockSize   int         `msgpack:"block_size"`
}

// CodeSize returns the number of bytes per code.
func (h *Header) CodeSize() int { return h.D / 8 }

func (h *Header) validate() error {
	switch {
	case h.D <= 0 || h.D%8 != 0:
		return corruptf("dimension %d", h.D)
	case h.NTotal < 0:
		return corruptf("ntotal %d", h.NTotal)
	case h.NextID < 0:
		return corruptf("next id %d", h.NextID)
	case !h.Compression.valid():
		return corruptf("compression %s", h.Compression)
	case h.BlockSize <= 0 || h.BlockSize > MaxBlockSize:
		return corruptf("block size %d", h.BlockSize)
	}
	if _, ok := distance.ParseMetric(h.Metric); !ok {
		return corruptf("metric %q", h.Metric)
	}
	return nil
}

func writeHeader(w io.Writer, h *Header) error {
	payload, err := msgpack.Marshal(h)
	if err != nil {
		return fmt.Errorf("persistence: encode header: %w", err)
	}

	var pre [preambleSize]byte
	copy(pre[:4], Magic)
	binary.LittleEndian.PutUint16(pre[4:], Version)
	binary.LittleEndian.PutUint32(pre[6:], uint32(len(payload)))

	if _, err := w.Write(pre[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadHeader reads and validates the snapshot header from r. On success r
// is positioned at the first block.
func ReadHeader(r io.Reader) (*Header, error) {
	var pre [preambleSize]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, corruptf("preamble: %v", err)
		}
		return nil, err
	}
	if string(pre[:4]) != Magic {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, pre[:4])
	}
	if v := binary.LittleEndian.Uint16(pre[4:]); v != Version {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, v)
	}

	n := binary.LittleEndian.Uint32(pre[6:])
	if n == 0 || n > maxHeaderSize {
		return nil, corruptf("header length %d", n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, corruptf("header: %v", err)
	}

	var h Header
	if err := msgpack.Unmarshal(payload, &h); err != nil {
		return nil, corruptf("decode header: %v", err)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return &h, nil
}

type trailer struct {
	Count    uint64
	Checksum uint64
}

func writeTrailer(w io.Writer, t trailer) error {
	var buf [trailerSize]byte
	binary.LittleEndian.PutUint64(buf[0:], t.Count)
	binary.LittleEndian.PutUint64(buf[8:], t.Checksum)
	_, err := w.Write(buf[:])
	return err
}

func readTrailer(r io.Reader) (trailer, error) {
	var buf [trailerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return trailer{}, corruptf("trailer: %v", err)
	}
	return trailer{
		Count:    binary.LittleEndian.Uint64(buf[0:]),
		Checksum: binary.LittleEndian.Uint64(buf[8:]),
	}, nil
}
