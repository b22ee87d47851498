package csv

// SearchSpace holds three QuoteRule-keyed mappings: allowed delimiters
// (unconditional), allowed quotes, allowed escapes. It is built once by
// GenerateCandidateDetectionSearchSpace and is immutable thereafter.
type SearchSpace struct {
	QuoteRules       []QuoteRule
	DelimCandidates  []byte
	QuoteCandidates  map[QuoteRule][]byte
	EscapeCandidates map[QuoteRule][]byte
}

// defaultDelimiters is tried when the user does not pin a delimiter.
var defaultDelimiters = []byte{',', '|', ';', '\t'}

// GenerateCandidateDetectionSearchSpace expands opts into a SearchSpace. It
// returns an OptionsConflictError if the user pinned incompatible options.
func GenerateCandidateDetectionSearchSpace(opts DialectOptions) (*SearchSpace, error) {
	ss := &SearchSpace{
		QuoteCandidates:  make(map[QuoteRule][]byte),
		EscapeCandidates: make(map[QuoteRule][]byte),
	}

	if opts.HasDelimiter {
		ss.DelimCandidates = []byte{opts.Delimiter}
	} else {
		ss.DelimCandidates = append([]byte(nil), defaultDelimiters...)
	}

	if opts.HasQuote {
		ss.QuoteCandidates[QuotesRFC] = []byte{opts.Quote}
		ss.QuoteCandidates[QuotesOther] = []byte{opts.Quote}
		ss.QuoteCandidates[NoQuotes] = []byte{opts.Quote}
	} else {
		ss.QuoteCandidates[QuotesRFC] = []byte{'"'}
		ss.QuoteCandidates[QuotesOther] = []byte{'"', '\''}
		ss.QuoteCandidates[NoQuotes] = []byte{0}
	}

	if opts.HasEscape {
		// Escape candidates are keyed by quote-rule, not by
		// (quote-rule, quote): a user-pinned escape restricts which
		// single quote-rule is tried at all, rather than widening
		// every quote-rule's escape list.
		if opts.Escape == 0 {
			if opts.HasQuote && opts.Quote != '"' {
				return nil, &OptionsConflictError{
					FilePath: opts.FilePath,
					Reason:   "escape is pinned to NUL, which forces the RFC quote rule, but quote is pinned to a byte other than '\"'",
				}
			}
			ss.QuoteRules = []QuoteRule{QuotesRFC}
			ss.QuoteCandidates[QuotesRFC] = []byte{'"'}
			ss.EscapeCandidates[QuotesRFC] = []byte{0}
		} else {
			if opts.HasQuote && opts.Quote == 0 {
				return nil, &OptionsConflictError{
					FilePath: opts.FilePath,
					Reason:   "escape is set and non-zero but quote is pinned to NUL",
				}
			}
			ss.QuoteRules = []QuoteRule{QuotesOther}
			ss.EscapeCandidates[QuotesOther] = []byte{opts.Escape}
		}
	} else {
		ss.QuoteRules = append([]QuoteRule(nil), quoteRules...)
		ss.EscapeCandidates[QuotesRFC] = []byte{'"', 0}
		ss.EscapeCandidates[QuotesOther] = []byte{'\\', 0}
		ss.EscapeCandidates[NoQuotes] = []byte{0}
	}

	return ss, nil
}
