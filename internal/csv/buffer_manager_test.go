package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferManagerByteAtGrowsCacheAcrossReadAhead(t *testing.T) {
	data := make([]byte, defaultReadAhead*2+5)
	for i := range data {
		data[i] = byte(i % 251)
	}
	bm := NewBufferManager(data)

	for _, offset := range []int{0, defaultReadAhead - 1, defaultReadAhead, defaultReadAhead * 2, len(data) - 1} {
		b, ok, err := bm.ByteAt(offset)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, data[offset], b)
	}

	_, ok, err := bm.ByteAt(len(data))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBufferManagerByteAtCachesOnce(t *testing.T) {
	bm := NewBufferManager([]byte("abcdef"))
	for i := 0; i < 6; i++ {
		b, ok, err := bm.ByteAt(i)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "abcdef"[i], b)
	}
	_, ok, err := bm.ByteAt(6)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBufferManagerOpenFilePlain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	bm, err := OpenFile(path)
	require.NoError(t, err)
	defer bm.Close()

	b, ok, err := bm.ByteAt(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte('a'), b)
}

func TestBufferManagerOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	require.Error(t, err)
}

func TestBufferManagerCloseWithoutCloserIsNoop(t *testing.T) {
	bm := NewBufferManager([]byte("a"))
	assert.NoError(t, bm.Close())
}
