package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBufferIteratorPeekAdvance(t *testing.T) {
	bm := NewBufferManager([]byte("abc"))
	it := NewByteBufferIterator(bm)

	for _, want := range []byte{'a', 'b', 'c'} {
		b, ok, err := it.Peek()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, b)
		it.Advance()
	}

	finished, err := it.Finished()
	require.NoError(t, err)
	assert.True(t, finished)
}

func TestByteBufferIteratorFinishedOnEmptyInput(t *testing.T) {
	bm := NewBufferManager(nil)
	it := NewByteBufferIterator(bm)
	finished, err := it.Finished()
	require.NoError(t, err)
	assert.True(t, finished)
}

func TestByteBufferIteratorResetToReplaysSamePosition(t *testing.T) {
	bm := NewBufferManager([]byte("abcdef"))
	it := NewByteBufferIterator(bm)
	it.Advance()
	it.Advance()
	mark := it.Position()

	it.Advance()
	it.Advance()
	b, _, err := it.Peek()
	require.NoError(t, err)
	assert.Equal(t, byte('e'), b)

	it.ResetTo(mark)
	b, _, err = it.Peek()
	require.NoError(t, err)
	assert.Equal(t, byte('c'), b)
}

func TestByteBufferIteratorIndependentCursorsShareCache(t *testing.T) {
	bm := NewBufferManager([]byte("abcdef"))
	a := NewByteBufferIterator(bm)
	b := NewByteBufferIterator(bm)

	a.Advance()
	a.Advance()
	a.Advance()

	bByte, ok, err := b.Peek()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte('a'), bByte, "b's cursor is independent of a's")

	aByte, ok, err := a.Peek()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte('d'), aByte)
}
