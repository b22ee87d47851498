package csv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// defaultReadAhead is how many bytes the BufferManager pulls from the
// underlying reader each time the cache must grow. It is independent of
// StandardVectorSize: this is a byte-level read-ahead, not a row count.
const defaultReadAhead = 256 * 1024

// BufferManager produces a seekable, chunked view over an input byte
// stream. Plain files are read directly; files ending in ".lz4" are
// transparently decompressed, the same way internal/indexer/sorter.go's
// kWayMerge reads lz4-compressed spill chunks.
//
// Candidates replay the same bytes one after another, never concurrently,
// so BufferManager caches every byte it has read so far and never re-reads
// the underlying source.
type BufferManager struct {
	reader io.Reader
	closer io.Closer
	cache  []byte
	eof    bool
}

// OpenFile opens path for dialect sniffing. A ".lz4" suffix selects
// transparent lz4 decompression.
func OpenFile(path string) (*BufferManager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: opening %q: %w", path, err)
	}
	var r io.Reader = f
	if strings.HasSuffix(path, ".lz4") {
		r = lz4.NewReader(f)
	}
	return &BufferManager{reader: r, closer: f}, nil
}

// NewBufferManager wraps an in-memory byte slice, mainly for tests and for
// callers that have already materialized the input.
func NewBufferManager(data []byte) *BufferManager {
	return &BufferManager{reader: bytes.NewReader(data)}
}

// Close releases the underlying file handle, if any.
func (bm *BufferManager) Close() error {
	if bm.closer == nil {
		return nil
	}
	return bm.closer.Close()
}

// ensure grows the cache until it holds at least offset+1 bytes, or the
// underlying reader is exhausted.
func (bm *BufferManager) ensure(offset int) error {
	for len(bm.cache) <= offset && !bm.eof {
		chunk := make([]byte, defaultReadAhead)
		n, err := bm.reader.Read(chunk)
		if n > 0 {
			bm.cache = append(bm.cache, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				bm.eof = true
				break
			}
			return fmt.Errorf("csv: buffer I/O fault: %w", err)
		}
		if n == 0 {
			bm.eof = true
			break
		}
	}
	return nil
}

// ByteAt returns the byte at offset, whether it exists, and any fatal I/O
// error from the underlying reader, which propagates unchanged.
func (bm *BufferManager) ByteAt(offset int) (b byte, ok bool, err error) {
	if err := bm.ensure(offset); err != nil {
		return 0, false, err
	}
	if offset >= len(bm.cache) {
		return 0, false, nil
	}
	return bm.cache[offset], true, nil
}
