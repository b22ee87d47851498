package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSingleCandidateScorer(t *testing.T, dialect Dialect, opts DialectOptions) (*Scorer, int) {
	t.Helper()
	var pool StateMachinePool
	idx := pool.Add(NewStateMachine(dialect, opts))
	scorer := NewScorer(&pool, opts, nil)
	return scorer, idx
}

// Without skip-rows pinned, a short preamble line bumps num_cols and
// start_row to the first row with more columns.
func TestStartRowResetsOnPreambleWhenSkipRowsNotSet(t *testing.T) {
	data := "# comment\nx,y\n1,2\n"
	bm := NewBufferManager([]byte(data))
	opts := DialectOptions{SkipRows: 0, SkipRowsSet: false}
	scorer, idx := newSingleCandidateScorer(t, rfcComma, opts)
	it := NewByteBufferIterator(bm)

	require.NoError(t, scorer.AnalyzeDialectCandidate(it, idx, 0))
	require.Len(t, scorer.Candidates, 1)
	sm := scorer.Pool.Get(scorer.Candidates[0].MachineIdx)
	assert.Equal(t, 1, sm.StartRow)
	assert.Equal(t, 2, scorer.Candidates[0].NumCols)
}

// TestStartRowWithSkipRowsSet: when the user has pinned skip-rows, the
// "preamble detected" reset branch never fires (it is gated on
// !SkipRowsSet), so start_row never moves past the user's own value —
// num_cols is seeded from the first row of the chunk (skip-rows does not
// drop any rows from the counts) and any shorter row afterward is treated
// as needing padding rather than as a signal to re-anchor on a wider row.
func TestStartRowWithSkipRowsSet(t *testing.T) {
	data := "x,y,z\n1,2\n3,4,5\n"
	bm := NewBufferManager([]byte(data))
	opts := DialectOptions{SkipRows: 1, SkipRowsSet: true, NullPadding: true}
	scorer, idx := newSingleCandidateScorer(t, rfcComma, opts)
	it := NewByteBufferIterator(bm)

	require.NoError(t, scorer.AnalyzeDialectCandidate(it, idx, 0))
	require.Len(t, scorer.Candidates, 1)
	sm := scorer.Pool.Get(scorer.Candidates[0].MachineIdx)
	assert.Equal(t, 1, sm.StartRow, "start_row stays pinned at the user's skip-rows value")
	assert.Equal(t, 3, scorer.Candidates[0].NumCols)
}

func TestAnalyzeDialectCandidateRejectsFewerColumnsThanFloor(t *testing.T) {
	data := "a,b\n1,2\n"
	bm := NewBufferManager([]byte(data))
	scorer, idx := newSingleCandidateScorer(t, rfcComma, DialectOptions{})
	it := NewByteBufferIterator(bm)

	require.NoError(t, scorer.AnalyzeDialectCandidate(it, idx, 5))
	assert.Empty(t, scorer.Candidates)
}

func TestAnalyzeDialectCandidateRequestedColumnTypesMismatchRejects(t *testing.T) {
	data := "a,b,c\n1,2,3\n"
	bm := NewBufferManager([]byte(data))
	opts := DialectOptions{RequestedColumnTypes: []ColumnType{{Name: "int"}, {Name: "int"}}}
	scorer, idx := newSingleCandidateScorer(t, rfcComma, opts)
	it := NewByteBufferIterator(bm)

	require.NoError(t, scorer.AnalyzeDialectCandidate(it, idx, 0))
	assert.Empty(t, scorer.Candidates)
}
