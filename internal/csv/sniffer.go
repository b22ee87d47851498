package csv

import "github.com/sirupsen/logrus"

// Sniffer runs the full dialect-detection pipeline: generate a search
// space, instantiate a state machine per candidate, score every candidate
// over the first chunk, then refine across the remaining chunks until one
// dialect survives. Its state-machine pool and per-candidate iterators
// live as long as the Sniffer; the package-level DetectDialect wrapper
// drops them together with the Sniffer once it returns.
type Sniffer struct {
	Options       DialectOptions
	BufferManager *BufferManager
	Logger        logrus.FieldLogger

	pool      StateMachinePool
	iterators map[int]*ByteBufferIterator
}

// NewSniffer builds a Sniffer over bm using opts. A nil logger means no
// logging; use logrus.StandardLogger() to see the candidate trail.
func NewSniffer(bm *BufferManager, opts DialectOptions, logger logrus.FieldLogger) *Sniffer {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(discardWriter{})
		logger = l
	}
	return &Sniffer{
		Options:       opts,
		BufferManager: bm,
		Logger:        logger,
		iterators:     make(map[int]*ByteBufferIterator),
	}
}

// iteratorFor returns the (lazily created) iterator owned by the state
// machine at idx. Each candidate gets its own cursor into the shared
// BufferManager: the byte cache is shared (one pass over the underlying
// file), but each dialect hypothesis naturally consumes bytes at its own
// rate, so cursors cannot be literally shared without one candidate
// corrupting another's replay position.
func (s *Sniffer) iteratorFor(idx int) *ByteBufferIterator {
	it, ok := s.iterators[idx]
	if !ok {
		it = NewByteBufferIterator(s.BufferManager)
		s.iterators[idx] = it
	}
	return it
}

// DetectDialect runs the five-step search-generate-score-refine-decide
// pipeline and returns the winning DialectOptions, or a
// *DialectNotDetectableError / *OptionsConflictError on failure.
func (s *Sniffer) DetectDialect() (DialectOptions, error) {
	opts := s.Options.normalized()

	// Step 1: generate search space.
	ss, err := GenerateCandidateDetectionSearchSpace(opts)
	if err != nil {
		return DialectOptions{}, err
	}

	// Step 2: generate state machines.
	indices := GenerateStateMachineSearchSpace(ss, opts, &s.pool)
	s.Logger.WithField("candidates", len(indices)).Debug("csv: generated state machine search space")

	scorer := NewScorer(&s.pool, opts, s.Logger)

	// Step 3: analyze all candidates on the first chunk.
	for _, idx := range indices {
		it := s.iteratorFor(idx)
		if err := scorer.AnalyzeDialectCandidate(it, idx, 0); err != nil {
			return DialectOptions{}, err
		}
	}

	// Step 4: refine across remaining chunks.
	if err := RefineCandidates(scorer, s.iterators); err != nil {
		return DialectOptions{}, err
	}

	// Step 5: a survivor, or failure.
	if len(scorer.Candidates) == 0 {
		return DialectOptions{}, &DialectNotDetectableError{FilePath: opts.FilePath}
	}

	winner := scorer.Candidates[0]
	if winner.NumCols <= 1 && scorer.Stats.PaddingRejected {
		return DialectOptions{}, &DialectNotDetectableError{FilePath: opts.FilePath}
	}
	sm := s.pool.Get(winner.MachineIdx)

	result := opts
	result.Delimiter = sm.Dialect.Delimiter
	result.HasDelimiter = true
	result.Quote = sm.Dialect.Quote
	result.HasQuote = true
	result.Escape = sm.Dialect.Escape
	result.HasEscape = true
	result.QuoteRuleResult = sm.Dialect.QuoteRule
	result.StartRow = sm.StartRow
	result.NumCols = winner.NumCols

	s.Logger.WithField("delimiter", string(result.Delimiter)).
		WithField("quote", string(result.Quote)).
		WithField("escape", string(result.Escape)).
		WithField("start_row", result.StartRow).
		WithField("num_cols", result.NumCols).
		Info("csv: dialect detected")

	return result, nil
}

// DetectDialect is a convenience wrapper for one-shot callers that don't
// need to hold onto a Sniffer.
func DetectDialect(bm *BufferManager, opts DialectOptions, logger logrus.FieldLogger) (DialectOptions, error) {
	return NewSniffer(bm, opts, logger).DetectDialect()
}
