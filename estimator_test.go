package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenBudget(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"100000", 100000},
		{"100k", 100000},
		{"100K", 100000},
		{"1m", 1000000},
		{"2M", 2000000},
		{"  50k  ", 50000},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := parseTokenBudget(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseTokenBudgetRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "100x", "k100", "10.5k", "k", "-5"} {
		_, err := parseTokenBudget(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestEstimateTokensHeuristic(t *testing.T) {
	setActiveTokenizer(nil)

	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("abcd"))
	assert.Equal(t, 25, estimateTokens(strings.Repeat("x", 100)))
	// Integer division floors.
	assert.Equal(t, 2, estimateTokens(strings.Repeat("x", 11)))
}

func TestEstimatorMethodNamesHeuristic(t *testing.T) {
	setActiveTokenizer(nil)
	assert.Equal(t, "Heuristic (~4 chars/token)", estimatorMethod())
}

type fixedTokenizer struct{ perCall int }

func (f *fixedTokenizer) CountTokens(text string) int { return f.perCall }
func (f *fixedTokenizer) Name() string                { return "fixed" }
func (f *fixedTokenizer) Close()                      {}

func TestEstimatorUsesBackendWhenLoaded(t *testing.T) {
	setActiveTokenizer(&fixedTokenizer{perCall: 7})
	defer setActiveTokenizer(nil)

	assert.Equal(t, 7, estimateTokens("whatever"))
	assert.Equal(t, "fixed", estimatorMethod())
}

func TestEstimateFileTokensIncludesEnvelope(t *testing.T) {
	setActiveTokenizer(nil)

	f := FileRecord{Path: "src/main.py", Content: strings.Repeat("a", 400)}
	contentOnly := estimateTokens(f.Content)
	total := estimateFileTokens(f)
	assert.Greater(t, total, contentOnly)

	// Envelope overhead scales with the path, not the content.
	short := FileRecord{Path: "a.py", Content: f.Content}
	assert.Greater(t, total, estimateFileTokens(short))
}
