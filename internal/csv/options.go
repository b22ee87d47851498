// Package csv implements CsvQuery's CSV dialect sniffer: given an
// unannotated byte stream, it recovers the delimiter, quote character,
// escape character, quoting rule, header row, and column count so the
// rest of the engine can parse the file as a typed relation.
package csv

import "fmt"

// QuoteRule is a coarse family of tokenisation grammars.
type QuoteRule uint8

const (
	// QuotesRFC is RFC 4180 quoting: quote = '"', escape = '"' (doubling).
	QuotesRFC QuoteRule = iota
	// QuotesOther allows a quote in {'"', '\''} with a distinct escape byte.
	QuotesOther
	// NoQuotes disables quoting entirely: quote = escape = 0.
	NoQuotes
)

func (q QuoteRule) String() string {
	switch q {
	case QuotesRFC:
		return "rfc"
	case QuotesOther:
		return "other"
	case NoQuotes:
		return "none"
	default:
		return "unknown"
	}
}

// quoteRules lists every QuoteRule in the order the search space must
// iterate them: RFC before OTHER before NONE. This ordering also decides
// tie-breaking among otherwise-equal candidates, since the first candidate
// inserted keeps its spot unless a later one strictly outscores it.
var quoteRules = []QuoteRule{QuotesRFC, QuotesOther, NoQuotes}

// ColumnType is a placeholder for a requested column type; CsvQuery's type
// system lives outside this package (value parsing/type inference are
// non-goals of the sniffer), so this is intentionally opaque beyond a name.
type ColumnType struct {
	Name string
}

// DialectOptions is the user-supplied configuration plus, after a
// successful DetectDialect, the recovered dialect.
type DialectOptions struct {
	// Delimiter is the field separator byte. Zero value means "unset"; use
	// HasDelimiter to distinguish unset from a legitimately-zero byte.
	Delimiter    byte
	HasDelimiter bool

	Quote    byte
	HasQuote bool

	Escape    byte
	HasEscape bool

	// QuoteRuleHint is not read by the sniffer:
	// GenerateCandidateDetectionSearchSpace derives the quote rule from a
	// pinned Escape alone (NUL selects RFC, any other byte selects OTHER).
	QuoteRuleHint QuoteRule

	// NullPadding allows short rows to be padded with NULL fields instead
	// of rejecting the candidate dialect.
	NullPadding bool

	// SkipRows is the number of leading rows the caller wants skipped
	// before detection starts counting data rows.
	SkipRows    int
	SkipRowsSet bool

	// SampleChunks bounds how many chunks the refinement loop may read
	// before committing to a winner.
	SampleChunks int

	// RequestedColumnTypes, if non-empty, pins the expected column count.
	RequestedColumnTypes []ColumnType

	FilePath string

	// Winning fields, populated by DetectDialect on success.
	QuoteRuleResult QuoteRule
	StartRow        int
	NumCols         int
}

// DefaultSampleChunks is used when the caller leaves SampleChunks unset.
const DefaultSampleChunks = 10

// StandardVectorSize bounds how many rows a single StateMachine.SniffDialect
// call inspects per chunk.
const StandardVectorSize = 2048

// normalized returns a copy of opts with defaults applied.
func (opts DialectOptions) normalized() DialectOptions {
	if opts.SampleChunks <= 0 {
		opts.SampleChunks = DefaultSampleChunks
	}
	return opts
}

// DialectNotDetectableError is raised when sniffing runs to completion with
// an empty candidate list.
type DialectNotDetectableError struct {
	FilePath string
}

func (e *DialectNotDetectableError) Error() string {
	return fmt.Sprintf("Error in file %q: CSV options could not be auto-detected. Consider setting parser options manually.", e.FilePath)
}

// OptionsConflictError is raised when the user pins incompatible options,
// e.g. escape=NUL together with quote='\''.
type OptionsConflictError struct {
	FilePath string
	Reason   string
}

func (e *OptionsConflictError) Error() string {
	return fmt.Sprintf("CSV options conflict in file %q: %s", e.FilePath, e.Reason)
}
