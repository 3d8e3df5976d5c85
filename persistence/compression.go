package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the block compression algorithm of a snapshot.
type Compression uint8

const (
	// CompressionNone stores blocks uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, the default).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio, for cold snapshots).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block framing: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the block is stored raw. A header of {0, 0}
// terminates the block stream.
const (
	blockHeaderSize  = 8
	DefaultBlockSize = 256 * 1024
	MaxBlockSize     = 64 * 1024 * 1024
)

var errSizeMismatch = errors.New("decompressed size mismatch")

// compressBlock returns the compressed form of data, or nil if compression
// doesn't help (ratio > 0.9).
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var (
		compressed []byte
		err        error
	)

	switch c {
	case CompressionLZ4:
		compressed, err = compressBlockLZ4(data)
	case CompressionZSTD:
		compressed = compressBlockZSTD(data)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return nil, nil
	}
	return compressed, nil
}

func compressBlockLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func compressBlockZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// decompressBlock decodes compressed into dst, which has the uncompressed length.
func decompressBlock(dst, compressed []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressed, dst)
		if err != nil {
			return nil, err
		}
		if n != len(dst) {
			return nil, errSizeMismatch
		}
		return dst, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressed, dst[:0])
		if err != nil {
			return nil, err
		}
		if len(decoded) != len(dst) {
			return nil, errSizeMismatch
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("compressed block in a %s stream", c)
	}
}

// blockWriter buffers writes into blocks and writes them compressed.
type blockWriter struct {
	w         io.Writer
	c         Compression
	blockSize int
	buf       []byte
	header    [blockHeaderSize]byte
	written   int64
}

func newBlockWriter(w io.Writer, c Compression, blockSize int) *blockWriter {
	return &blockWriter{
		w:         w,
		c:         c,
		blockSize: blockSize,
		buf:       make([]byte, 0, blockSize),
	}
}

// Write writes data to the buffer, flushing blocks as needed.
func (b *blockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if len(b.buf) == b.blockSize {
			if err := b.flush(); err != nil {
				return total, err
			}
		}
		n := min(len(p), b.blockSize-len(b.buf))
		b.buf = append(b.buf, p[:n]...)
		total += n
		p = p[n:]
	}
	return total, nil
}

func (b *blockWriter) writeFrame(uncompressed, compressed uint32, data []byte) error {
	binary.LittleEndian.PutUint32(b.header[0:], uncompressed)
	binary.LittleEndian.PutUint32(b.header[4:], compressed)
	if _, err := b.w.Write(b.header[:]); err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := b.w.Write(data); err != nil {
			return err
		}
	}
	b.written += int64(blockHeaderSize + len(data))
	return nil
}

// flush compresses and writes the current block.
func (b *blockWriter) flush() error {
	if len(b.buf) == 0 {
		return nil
	}

	compressed, err := compressBlock(b.buf, b.c)
	if err != nil {
		return err
	}

	if compressed == nil {
		err = b.writeFrame(uint32(len(b.buf)), 0, b.buf)
	} else {
		err = b.writeFrame(uint32(len(b.buf)), uint32(len(compressed)), compressed)
	}
	if err != nil {
		return err
	}
	b.buf = b.buf[:0]
	return nil
}

// Close flushes the last block and writes the end marker.
func (b *blockWriter) Close() error {
	if err := b.flush(); err != nil {
		return err
	}
	return b.writeFrame(0, 0, nil)
}

// blockReader reads the block stream written by blockWriter and exposes the
// uncompressed payload as an io.Reader. It never reads past the end marker.
type blockReader struct {
	r        io.Reader
	c        Compression
	maxBlock int
	header   [blockHeaderSize]byte
	cur      []byte
	block    []byte
	scratch  []byte
	done     bool
	blocks   int
}

func newBlockReader(r io.Reader, c Compression, maxBlock int) *blockReader {
	return &blockReader{r: r, c: c, maxBlock: maxBlock}
}

func (b *blockReader) Read(p []byte) (int, error) {
	for len(b.cur) == 0 {
		if b.done {
			return 0, io.EOF
		}
		if err := b.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, b.cur)
	b.cur = b.cur[n:]
	return n, nil
}

func (b *blockReader) next() error {
	if _, err := io.ReadFull(b.r, b.header[:]); err != nil {
		return corruptf("block %d header: %v", b.blocks, err)
	}

	uncompressed := int(binary.LittleEndian.Uint32(b.header[0:]))
	compressed := int(binary.LittleEndian.Uint32(b.header[4:]))

	switch {
	case uncompressed == 0 && compressed == 0:
		b.done = true
		return nil
	case uncompressed == 0:
		return corruptf("block %d: empty block with %d compressed bytes", b.blocks, compressed)
	case uncompressed > b.maxBlock:
		return corruptf("block %d: %d bytes exceeds block size %d", b.blocks, uncompressed, b.maxBlock)
	case compressed > uncompressed:
		return corruptf("block %d: %d compressed bytes for %d bytes", b.blocks, compressed, uncompressed)
	}

	if cap(b.block) < uncompressed {
		b.block = make([]byte, uncompressed)
	}
	block := b.block[:uncompressed]

	if compressed == 0 {
		if _, err := io.ReadFull(b.r, block); err != nil {
			return corruptf("block %d: %v", b.blocks, err)
		}
	} else {
		if cap(b.scratch) < compressed {
			b.scratch = make([]byte, compressed)
		}
		src := b.scratch[:compressed]
		if _, err := io.ReadFull(b.r, src); err != nil {
			return corruptf("block %d: %v", b.blocks, err)
		}
		var err error
		if block, err = decompressBlock(block, src, b.c); err != nil {
			return corruptf("block %d: %v", b.blocks, err)
		}
	}

	b.blocks++
	b.cur = block
	return nil
}
