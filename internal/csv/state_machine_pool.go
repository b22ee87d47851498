package csv

// StateMachinePool is an append-only pool of StateMachine instances.
// Candidates (see scorer.go) hold indices into this pool rather than raw
// pointers, so growing the pool never invalidates an existing candidate.
type StateMachinePool struct {
	machines []*StateMachine
}

// Add appends a new StateMachine and returns its index in the pool.
func (p *StateMachinePool) Add(sm *StateMachine) int {
	p.machines = append(p.machines, sm)
	return len(p.machines) - 1
}

// Get returns the StateMachine at idx.
func (p *StateMachinePool) Get(idx int) *StateMachine {
	return p.machines[idx]
}

// Len returns how many state machines the pool currently holds.
func (p *StateMachinePool) Len() int {
	return len(p.machines)
}

// GenerateStateMachineSearchSpace instantiates one StateMachine per
// (quote-rule, quote, delimiter, escape) tuple in ss, appending each to
// pool. The iteration order is quote-rule, then quote, then delimiter,
// then escape — this fixes the tie-breaking order among otherwise-equal
// candidates (effectively RFC-quote, double-quote, comma first) and must
// be preserved rather than sorted.
func GenerateStateMachineSearchSpace(ss *SearchSpace, opts DialectOptions, pool *StateMachinePool) []int {
	var indices []int
	for _, rule := range ss.QuoteRules {
		quotes := ss.QuoteCandidates[rule]
		for _, quote := range quotes {
			for _, delim := range ss.DelimCandidates {
				escapes := ss.EscapeCandidates[rule]
				for _, escape := range escapes {
					dialect := Dialect{
						Delimiter: delim,
						Quote:     quote,
						Escape:    escape,
						QuoteRule: rule,
					}
					sm := NewStateMachine(dialect, opts)
					indices = append(indices, pool.Add(sm))
				}
			}
		}
	}
	return indices
}
