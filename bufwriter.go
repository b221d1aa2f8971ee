package binarchive

import (
	"io"

	"github.com/streamforge/binarchive/internal/base"
)

// bufferedWriterFlushLimit matches the stride of the TransientPage256KiB
// pool, so the buffered writer rents and returns its backing page through
// that process-wide recycler instead of allocating a page of its own.
const bufferedWriterFlushLimit = 256 << 10

// bufferedWriter adapts an append-only io.Writer sink to a span-vending
// interface: callers ask for a writable region with getSpan, write into
// it directly, then commit the written prefix with advance.
type bufferedWriter struct {
	sink     io.Writer
	page     []byte
	pending  int    // bytes already committed (via advance) but not flushed
	spanLen  int    // length of the span last vended by getSpan, for advance bounds-checking
	oversize []byte // set instead of using page when getSpan served a request larger than the page
}

func newBufferedWriter(sink io.Writer) *bufferedWriter {
	return &bufferedWriter{
		sink: sink,
		page: base.TransientPage256KiB.Allocate(),
	}
}

// getSpan returns a writable contiguous region of at least minSize bytes.
// It flushes first if the rest of the page cannot hold minSize; when
// minSize exceeds the whole page it returns a one-off buffer instead, which
// advance writes straight to the sink. The backing page never grows.
func (bw *bufferedWriter) getSpan(minSize int) ([]byte, error) {
	if minSize < 0 {
		return nil, ErrCorruptStream
	}
	if bw.pending+minSize > len(bw.page) {
		if err := bw.flush(); err != nil {
			return nil, err
		}
		if minSize > len(bw.page) {
			// Oversized request (e.g. a large buffer payload): bypass the
			// recycled page entirely rather than growing it permanently.
			// It is written straight to the sink on the matching advance.
			bw.oversize = make([]byte, minSize)
			bw.spanLen = minSize
			return bw.oversize, nil
		}
	}
	bw.spanLen = len(bw.page) - bw.pending
	return bw.page[bw.pending:], nil
}

// advance marks the first n bytes of the span last vended by getSpan as
// committed, ready to be flushed to the sink.
func (bw *bufferedWriter) advance(n int) error {
	if n < 0 || n > bw.spanLen {
		return ErrCorruptStream
	}
	if bw.oversize != nil {
		span := bw.oversize[:n]
		bw.oversize = nil
		bw.spanLen = 0
		if _, err := bw.sink.Write(span); err != nil {
			return err
		}
		return nil
	}
	bw.pending += n
	bw.spanLen = 0
	if bw.pending >= bufferedWriterFlushLimit {
		return bw.flush()
	}
	return nil
}

// writeOversized writes p directly through getSpan/advance, used for
// payloads (buffer chunks, strings) too large to usefully stage in the
// recycled page.
func (bw *bufferedWriter) writeOversized(p []byte) error {
	span, err := bw.getSpan(len(p))
	if err != nil {
		return err
	}
	copy(span, p)
	return bw.advance(len(p))
}

// writeByte commits a single byte, the common case for tags.
func (bw *bufferedWriter) writeByte(b byte) error {
	span, err := bw.getSpan(1)
	if err != nil {
		return err
	}
	span[0] = b
	return bw.advance(1)
}

func (bw *bufferedWriter) flush() error {
	if bw.pending == 0 {
		return nil
	}
	if _, err := bw.sink.Write(bw.page[:bw.pending]); err != nil {
		return err
	}
	bw.pending = 0
	return nil
}

// close flushes any buffered bytes and returns the rented page to its
// recycler; the writer must not be used afterwards.
func (bw *bufferedWriter) close() error {
	err := bw.flush()
	if bw.page != nil && len(bw.page) == base.TransientPage256KiB.Stride() {
		base.TransientPage256KiB.Release(bw.page)
	}
	bw.page = nil
	return err
}
