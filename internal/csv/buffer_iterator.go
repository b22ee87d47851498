package csv

// ByteBufferIterator streams bytes from a BufferManager and exposes the
// current position, end-of-file, and reset. It has no side effects beyond
// cursor motion; it never owns the bytes it reads, so resetting two
// iterators to the same position never copies data.
type ByteBufferIterator struct {
	bm  *BufferManager
	pos int
}

// NewByteBufferIterator returns an iterator positioned at the start of bm.
func NewByteBufferIterator(bm *BufferManager) *ByteBufferIterator {
	return &ByteBufferIterator{bm: bm}
}

// Peek returns the current byte without advancing. ok is false at
// end-of-file. A non-nil error means the buffer manager hit an I/O fault;
// it is fatal and must propagate unchanged.
func (it *ByteBufferIterator) Peek() (b byte, ok bool, err error) {
	return it.bm.ByteAt(it.pos)
}

// Advance moves the cursor one byte forward. Calling it after Finished has
// returned true is undefined.
func (it *ByteBufferIterator) Advance() {
	it.pos++
}

// Finished reports whether every byte in the logical file view has been
// consumed.
func (it *ByteBufferIterator) Finished() (bool, error) {
	_, ok, err := it.bm.ByteAt(it.pos)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Position returns the current cursor offset, for ResetTo replay.
func (it *ByteBufferIterator) Position() int {
	return it.pos
}

// ResetTo rewinds the cursor to position, used by the refinement loop to
// replay a chunk under a new candidate.
func (it *ByteBufferIterator) ResetTo(position int) {
	it.pos = position
}
