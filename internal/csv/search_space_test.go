package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSpaceDefaultsWhenNothingPinned(t *testing.T) {
	ss, err := GenerateCandidateDetectionSearchSpace(DialectOptions{})
	require.NoError(t, err)

	assert.Equal(t, defaultDelimiters, ss.DelimCandidates)
	assert.Equal(t, []QuoteRule{QuotesRFC, QuotesOther, NoQuotes}, ss.QuoteRules)
	assert.Equal(t, []byte{'"'}, ss.QuoteCandidates[QuotesRFC])
	assert.Equal(t, []byte{'"', '\''}, ss.QuoteCandidates[QuotesOther])
	assert.Equal(t, []byte{0}, ss.QuoteCandidates[NoQuotes])
	assert.Equal(t, []byte{'"', 0}, ss.EscapeCandidates[QuotesRFC])
	assert.Equal(t, []byte{'\\', 0}, ss.EscapeCandidates[QuotesOther])
	assert.Equal(t, []byte{0}, ss.EscapeCandidates[NoQuotes])
}

func TestSearchSpacePinnedDelimiterNarrowsToOne(t *testing.T) {
	ss, err := GenerateCandidateDetectionSearchSpace(DialectOptions{Delimiter: ';', HasDelimiter: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{';'}, ss.DelimCandidates)
}

func TestSearchSpacePinnedQuoteAppliesToEveryRule(t *testing.T) {
	ss, err := GenerateCandidateDetectionSearchSpace(DialectOptions{Quote: '\'', HasQuote: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{'\''}, ss.QuoteCandidates[QuotesRFC])
	assert.Equal(t, []byte{'\''}, ss.QuoteCandidates[QuotesOther])
	assert.Equal(t, []byte{'\''}, ss.QuoteCandidates[NoQuotes])
}

func TestSearchSpacePinnedNulEscapeForcesRFC(t *testing.T) {
	ss, err := GenerateCandidateDetectionSearchSpace(DialectOptions{Escape: 0, HasEscape: true})
	require.NoError(t, err)
	assert.Equal(t, []QuoteRule{QuotesRFC}, ss.QuoteRules)
	assert.Equal(t, []byte{'"'}, ss.QuoteCandidates[QuotesRFC])
	assert.Equal(t, []byte{0}, ss.EscapeCandidates[QuotesRFC])
}

func TestSearchSpacePinnedNonNulEscapeForcesOther(t *testing.T) {
	ss, err := GenerateCandidateDetectionSearchSpace(DialectOptions{Escape: '\\', HasEscape: true})
	require.NoError(t, err)
	assert.Equal(t, []QuoteRule{QuotesOther}, ss.QuoteRules)
	assert.Equal(t, []byte{'\\'}, ss.EscapeCandidates[QuotesOther])
}

func TestSearchSpaceConflictNulEscapeWithNonDefaultQuote(t *testing.T) {
	_, err := GenerateCandidateDetectionSearchSpace(DialectOptions{
		Escape: 0, HasEscape: true,
		Quote: '\'', HasQuote: true,
	})
	require.Error(t, err)
	var conflict *OptionsConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestSearchSpaceConflictNonNulEscapeWithNulQuote(t *testing.T) {
	_, err := GenerateCandidateDetectionSearchSpace(DialectOptions{
		Escape: '\\', HasEscape: true,
		Quote: 0, HasQuote: true,
	})
	require.Error(t, err)
	var conflict *OptionsConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestGenerateStateMachineSearchSpaceOrdering(t *testing.T) {
	ss, err := GenerateCandidateDetectionSearchSpace(DialectOptions{})
	require.NoError(t, err)

	var pool StateMachinePool
	indices := GenerateStateMachineSearchSpace(ss, DialectOptions{}, &pool)
	require.NotEmpty(t, indices)

	// quote-rule -> quote -> delimiter -> escape, strictly in that nesting
	// order: the very first candidate must be RFC, quote '"', delimiter
	// ',', escape '"'.
	first := pool.Get(indices[0])
	assert.Equal(t, QuotesRFC, first.Dialect.QuoteRule)
	assert.Equal(t, byte('"'), first.Dialect.Quote)
	assert.Equal(t, byte(','), first.Dialect.Delimiter)
	assert.Equal(t, byte('"'), first.Dialect.Escape)

	last := pool.Get(indices[len(indices)-1])
	assert.Equal(t, NoQuotes, last.Dialect.QuoteRule)
	assert.Equal(t, byte('\t'), last.Dialect.Delimiter)
}
