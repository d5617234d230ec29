package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Token estimation. When a real tokenizer backend is loaded, counts are
// exact; otherwise a ~4 chars/token heuristic is used and a one-time
// warning is printed so users know the numbers are approximate.

var (
	estimatorMu     sync.Mutex
	activeTokenizer Tokenizer
	heuristicWarned bool
)

// setActiveTokenizer installs (or clears, with nil) the exact token
// counting backend. Resets the one-time heuristic warning.
func setActiveTokenizer(t Tokenizer) {
	estimatorMu.Lock()
	defer estimatorMu.Unlock()
	if activeTokenizer != nil && activeTokenizer != t {
		activeTokenizer.Close()
	}
	activeTokenizer = t
	heuristicWarned = false
}

// estimateTokens returns the token count of text, exact when a backend
// is loaded and len(text)/4 otherwise.
func estimateTokens(text string) int {
	estimatorMu.Lock()
	t := activeTokenizer
	if t == nil && !heuristicWarned {
		heuristicWarned = true
		fmt.Fprintln(os.Stderr, "Warning: no tokenizer loaded, estimating tokens at ~4 chars each")
	}
	estimatorMu.Unlock()

	if t != nil {
		return t.CountTokens(text)
	}
	return len(text) / 4
}

// estimatorMethod names the estimation method for the budget report.
func estimatorMethod() string {
	estimatorMu.Lock()
	defer estimatorMu.Unlock()
	if activeTokenizer != nil {
		return activeTokenizer.Name()
	}
	return "Heuristic (~4 chars/token)"
}

// estimateFileTokens counts the tokens a file will occupy in the output
// stream: its content plus the envelope lines. The checksum is not
// known before serialization, so a fixed-width placeholder stands in;
// hex digests tokenize at near-constant cost either way.
func estimateFileTokens(f FileRecord) int {
	placeholder := strings.Repeat("0", 32)
	envelope := fileHeader(f.Path) + fileFooter(f.Path, placeholder)
	return estimateTokens(f.Content) + estimateTokens(envelope)
}

// parseTokenBudget parses a budget like "100000", "100k" or "1M" into
// a token count. Suffixes are case-insensitive; anything else errors.
func parseTokenBudget(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty token budget")
	}

	multiplier := 1
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		multiplier = 1000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		multiplier = 1000000
		s = s[:len(s)-1]
	}

	if s == "" {
		return 0, fmt.Errorf("invalid token budget: missing number")
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("invalid token budget '%s': expected <number>[k|m]", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid token budget '%s': %w", s, err)
	}
	return n * multiplier, nil
}
