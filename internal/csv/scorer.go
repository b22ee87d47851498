package csv

import (
	"github.com/sirupsen/logrus"
)

// Candidate is a surviving dialect hypothesis plus its observed column
// count: a pool index (never a raw pointer, see state_machine_pool.go)
// paired with the column count the scorer settled on for it.
type Candidate struct {
	MachineIdx int
	NumCols    int
}

// ScorerStats is reset between refinement rounds.
type ScorerStats struct {
	RowsRead           int
	BestConsistentRows int
	PrevPaddingCount   int
	BestNumCols        int

	// PaddingRejected records that some candidate, in this round or an
	// earlier one, produced more than one column but was rejected solely
	// because padding is disabled and a short row needed it. A winner with
	// a single column is then a false positive, not a genuine
	// single-column file: DetectDialect turns it into a failure instead of
	// returning it. Unlike the rest of ScorerStats, callers that reset
	// between rounds (RefineCandidates) must carry this flag forward
	// themselves — once true it needs to stay true for the whole
	// detection, not just the round that set it.
	PaddingRejected bool
}

// Reset zeroes every field, readying the scorer for the next chunk round.
// PaddingRejected is not exempt here: callers that need it to persist
// across rounds (RefineCandidates) must save and restore it around Reset.
func (s *ScorerStats) Reset() {
	*s = ScorerStats{}
}

// Scorer runs state machines over chunks and maintains the surviving
// candidate list.
type Scorer struct {
	Pool       *StateMachinePool
	Candidates []Candidate
	Stats      ScorerStats
	Options    DialectOptions
	Logger     logrus.FieldLogger
}

// NewScorer builds a Scorer bound to pool and opts. A nil logger is
// replaced with a discarding one so callers never need a nil check.
func NewScorer(pool *StateMachinePool, opts DialectOptions, logger logrus.FieldLogger) *Scorer {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(discardWriter{})
		logger = l
	}
	return &Scorer{Pool: pool, Options: opts, Logger: logger}
}

// AnalyzeDialectCandidate runs SniffDialect once over the next chunk for
// the state machine at machineIdx, scores the resulting column counts, and
// applies the replace/co-winner/discard acceptance rules in order.
// prevColumnCount is the floor imposed by the refinement loop (0 on the
// first chunk).
func (sc *Scorer) AnalyzeDialectCandidate(it *ByteBufferIterator, machineIdx int, prevColumnCount int) error {
	sm := sc.Pool.Get(machineIdx)

	var counts []int
	if err := sm.SniffDialect(it, &counts); err != nil {
		return err
	}

	startRow := sc.Options.SkipRows
	consistentRows := 0
	numCols := 0
	if len(counts) > 0 {
		numCols = counts[0]
	}
	paddingCount := 0
	allowPadding := sc.Options.NullPadding

	if len(counts) > sc.Stats.RowsRead {
		sc.Stats.RowsRead = len(counts)
	}

	for row, k := range counts {
		switch {
		case k == numCols:
			consistentRows++
		case numCols < k && !sc.Options.SkipRowsSet:
			// All rows up to this point need padding; the largest
			// num_cols found so far wins (handles preamble lines
			// before the real header).
			paddingCount = 0
			numCols = k
			startRow = row + sc.Options.SkipRows
			consistentRows = 1
		case numCols >= k:
			paddingCount++
		}
	}

	if numCols < prevColumnCount {
		sc.Logger.WithField("quote", string(sm.Dialect.Quote)).Debug("csv: candidate rejected, fewer columns than previous chunk")
		return nil
	}

	consistentRows += paddingCount
	moreValues := consistentRows > sc.Stats.BestConsistentRows && numCols >= sc.Stats.BestNumCols
	requireMorePadding := paddingCount > sc.Stats.PrevPaddingCount
	requireLessPadding := paddingCount < sc.Stats.PrevPaddingCount
	singleColumnBefore := sc.Stats.BestNumCols < 2 && numCols > sc.Stats.BestNumCols
	rowsConsistent := startRow+consistentRows-sc.Options.SkipRows == len(counts)
	moreThanOneRow := consistentRows > 1
	moreThanOneColumn := numCols > 1
	startGood := len(sc.Candidates) > 0 && startRow <= sc.Pool.Get(sc.Candidates[0].MachineIdx).StartRow
	invalidPadding := !allowPadding && paddingCount > 0

	if invalidPadding && moreThanOneColumn {
		sc.Stats.PaddingRejected = true
	}

	if len(sc.Options.RequestedColumnTypes) > 0 && len(sc.Options.RequestedColumnTypes) != numCols && !invalidPadding {
		sc.Logger.Debug("csv: candidate rejected, column count does not match requested types")
		return nil
	}

	switch {
	case rowsConsistent && !invalidPadding &&
		(singleColumnBefore || (moreValues && !requireMorePadding) || (moreThanOneColumn && requireLessPadding)):
		sc.Stats.BestConsistentRows = consistentRows
		sc.Stats.BestNumCols = numCols
		sc.Stats.PrevPaddingCount = paddingCount
		sm.StartRow = startRow
		sc.Candidates = sc.Candidates[:0]
		sc.Candidates = append(sc.Candidates, Candidate{MachineIdx: machineIdx, NumCols: numCols})
		sc.Logger.WithField("delimiter", string(sm.Dialect.Delimiter)).
			WithField("quote", string(sm.Dialect.Quote)).
			WithField("num_cols", numCols).
			Debug("csv: new incumbent dialect")

	case moreThanOneRow && moreThanOneColumn && startGood && rowsConsistent && !requireMorePadding && !invalidPadding:
		sameQuoteIsCandidate := false
		for _, c := range sc.Candidates {
			if sm.Dialect.Quote == sc.Pool.Get(c.MachineIdx).Dialect.Quote {
				sameQuoteIsCandidate = true
				break
			}
		}
		if !sameQuoteIsCandidate {
			sm.StartRow = startRow
			sc.Candidates = append(sc.Candidates, Candidate{MachineIdx: machineIdx, NumCols: numCols})
			sc.Logger.WithField("quote", string(sm.Dialect.Quote)).Debug("csv: candidate retained as co-winner")
		}

	default:
		sc.Logger.Debug("csv: candidate discarded")
	}

	return nil
}

// discardWriter is an io.Writer that drops everything written to it, used
// as the default logrus output so DetectDialect never logs unless the
// caller supplies a logger.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
