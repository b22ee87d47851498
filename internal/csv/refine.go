package csv

// RefineCandidates replays the surviving candidates across later chunks,
// narrowing the candidate list toward a single winner. It stops early once
// at most one candidate remains or the iterator reports end-of-file, and
// otherwise runs for at most opts.SampleChunks-1 rounds.
func RefineCandidates(sc *Scorer, iterators map[int]*ByteBufferIterator) error {
	// curBestNumCols is the column-count floor. It is seeded from the
	// chunk-0 score and, at the start of every round, raised to the
	// previous round's best_num_cols before Stats.Reset zeroes it, so the
	// floor never decreases across rounds.
	curBestNumCols := sc.Stats.BestNumCols

	for round := 1; round < sc.Options.SampleChunks; round++ {
		if len(sc.Candidates) <= 1 {
			return nil
		}

		front := sc.Candidates[0]
		finished, err := iterators[front.MachineIdx].Finished()
		if err != nil {
			return err
		}
		if finished {
			return nil
		}

		// PaddingRejected must survive the reset: it's a sticky signal
		// ("some candidate lost to disabled padding at some point during
		// detection"), not a per-round measurement like the rest of
		// ScorerStats. Losing it on an intermediate round would let a
		// degenerate single-column winner slip through on a later, longer
		// chunk the same way the single-chunk case does.
		if sc.Stats.BestNumCols > curBestNumCols {
			curBestNumCols = sc.Stats.BestNumCols
		}
		paddingRejected := sc.Stats.PaddingRejected
		sc.Stats.Reset()
		sc.Stats.PaddingRejected = paddingRejected
		curCandidates := sc.Candidates
		sc.Candidates = nil

		for _, cand := range curCandidates {
			it := iterators[cand.MachineIdx]
			if err := sc.AnalyzeDialectCandidate(it, cand.MachineIdx, curBestNumCols); err != nil {
				return err
			}
		}

		sc.Logger.WithField("round", round).WithField("candidates", len(sc.Candidates)).Debug("csv: refinement round complete")
	}
	return nil
}
