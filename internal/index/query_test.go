package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	probeerrors "github.com/nikita2206/probe/internal/errors"
)

func TestParseQuery_BareWordsAreImplicitAnd(t *testing.T) {
	q, err := ParseQuery("scan directory")
	require.NoError(t, err)
	require.Len(t, q.Groups, 1)
	require.Len(t, q.Groups[0].Terms, 2)
	assert.Equal(t, "scan", q.Groups[0].Terms[0].Text)
	assert.Equal(t, "directory", q.Groups[0].Terms[1].Text)
}

func TestParseQuery_OrSplitsIntoGroups(t *testing.T) {
	q, err := ParseQuery("scan OR walk")
	require.NoError(t, err)
	require.Len(t, q.Groups, 2)
	assert.Equal(t, "scan", q.Groups[0].Terms[0].Text)
	assert.Equal(t, "walk", q.Groups[1].Terms[0].Text)
}

func TestParseQuery_NotNegatesFollowingTerm(t *testing.T) {
	q, err := ParseQuery("scan NOT binary")
	require.NoError(t, err)
	require.Len(t, q.Groups[0].Terms, 2)
	assert.False(t, q.Groups[0].Terms[0].Negate)
	assert.True(t, q.Groups[0].Terms[1].Negate)
	assert.Equal(t, "binary", q.Groups[0].Terms[1].Text)
}

func TestParseQuery_LeadingHyphenNegates(t *testing.T) {
	q, err := ParseQuery("scan -binary")
	require.NoError(t, err)
	assert.True(t, q.Groups[0].Terms[1].Negate)
	assert.Equal(t, "binary", q.Groups[0].Terms[1].Text)
}

func TestParseQuery_FieldPrefix(t *testing.T) {
	q, err := ParseQuery("path:scanner.go")
	require.NoError(t, err)
	term := q.Groups[0].Terms[0]
	assert.Equal(t, FieldPathTokens, term.Field)
	assert.Equal(t, "scanner.go", term.Text)
}

func TestParseQuery_Boost(t *testing.T) {
	q, err := ParseQuery("scan^2.5")
	require.NoError(t, err)
	term := q.Groups[0].Terms[0]
	assert.Equal(t, "scan", term.Text)
	assert.Equal(t, 2.5, term.Boost)
}

func TestParseQuery_Wildcard(t *testing.T) {
	q, err := ParseQuery("Scan*")
	require.NoError(t, err)
	term := q.Groups[0].Terms[0]
	assert.True(t, term.Wildcard)
	assert.Equal(t, "Scan", term.Text)
}

func TestParseQuery_PhraseWithProximity(t *testing.T) {
	q, err := ParseQuery(`"scan directory"~5`)
	require.NoError(t, err)
	term := q.Groups[0].Terms[0]
	assert.True(t, term.Phrase)
	assert.Equal(t, "scan directory", term.Text)
	assert.Equal(t, 5, term.ProximityN)
}

func TestParseQuery_EmptyQueryIsInvalid(t *testing.T) {
	_, err := ParseQuery("   ")
	require.Error(t, err)
	assert.True(t, probeerrors.IsKind(err, probeerrors.KindQueryInvalid))
}

func TestParseQuery_UnterminatedPhraseIsInvalid(t *testing.T) {
	_, err := ParseQuery(`"scan directory`)
	require.Error(t, err)
	assert.True(t, probeerrors.IsKind(err, probeerrors.KindQueryInvalid))
}
