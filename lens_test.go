package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePriorityNoGroupsIsFlat(t *testing.T) {
	m := NewLensManager()

	// No active lens at all.
	assert.Equal(t, 50, m.FilePriority("main.py", nil))

	// A lens without groups yields 50 for every file, even with an
	// explicit fallback present.
	cfg := &LensConfig{
		Description: "flat",
		Fallback:    &FallbackConfig{Priority: intPtr(10)},
	}
	assert.Equal(t, 50, m.FilePriority("main.py", cfg))
	assert.Equal(t, 50, m.FilePriority("anything/else.txt", cfg))
}

func TestFilePriorityHighestMatchWins(t *testing.T) {
	m := NewLensManager()
	cfg := &LensConfig{
		Groups: []PriorityGroup{
			{Name: "docs", Pattern: "*.md", Priority: 40},
			{Name: "source", Pattern: "src/**", Priority: 95},
			{Name: "python", Pattern: "*.py", Priority: 90},
		},
	}

	// src/main.py matches both src/** (95) and *.py (90).
	assert.Equal(t, 95, m.FilePriority("src/main.py", cfg))
	assert.Equal(t, 90, m.FilePriority("tools/gen.py", cfg))
	assert.Equal(t, 40, m.FilePriority("README.md", cfg))
}

func TestFilePriorityFallback(t *testing.T) {
	m := NewLensManager()
	cfg := &LensConfig{
		Groups:   []PriorityGroup{{Name: "py", Pattern: "*.py", Priority: 90}},
		Fallback: &FallbackConfig{Priority: intPtr(20)},
	}
	assert.Equal(t, 20, m.FilePriority("LICENSE", cfg))

	// An explicit fallback priority of 0 is honored, not replaced.
	cfg.Fallback = &FallbackConfig{Priority: intPtr(0)}
	assert.Equal(t, 0, m.FilePriority("LICENSE", cfg))

	// Without a fallback, unmatched files get the default.
	cfg.Fallback = nil
	assert.Equal(t, 50, m.FilePriority("LICENSE", cfg))
}

func TestFileGroupConfigFirstDeclaredWinsTies(t *testing.T) {
	m := NewLensManager()
	cap100 := intPtr(100)
	cfg := &LensConfig{
		Groups: []PriorityGroup{
			{Name: "first", Pattern: "*.py", Priority: 90, TruncateMode: truncateModeStructure, Truncate: cap100},
			{Name: "second", Pattern: "src/**", Priority: 90},
		},
	}
	gc := m.FileGroupConfig("src/main.py", cfg)
	assert.Equal(t, 90, gc.Priority)
	assert.Equal(t, truncateModeStructure, gc.TruncateMode)
	require.NotNil(t, gc.Truncate)
	assert.Equal(t, 100, *gc.Truncate)
}

func TestFileGroupConfigFallbackAndDefault(t *testing.T) {
	m := NewLensManager()
	cfg := &LensConfig{
		Groups:   []PriorityGroup{{Name: "py", Pattern: "*.py", Priority: 90}},
		Fallback: &FallbackConfig{Priority: intPtr(30), TruncateMode: truncateModeSimple},
	}
	gc := m.FileGroupConfig("Makefile", cfg)
	assert.Equal(t, 30, gc.Priority)
	assert.Equal(t, truncateModeSimple, gc.TruncateMode)

	gc = m.FileGroupConfig("anything", &LensConfig{})
	assert.Equal(t, GroupConfig{Priority: 50}, gc)
}

func TestApplyLensMergeSemantics(t *testing.T) {
	m := NewLensManager()
	m.LoadCustom(map[string]LensConfig{
		"focus": {
			Description:  "test lens",
			Include:      []string{"*.go"},
			Exclude:      []string{"vendor/**", ".git"},
			Truncate:     intPtr(100),
			TruncateMode: truncateModeSmart,
			SortBy:       "mtime",
			SortOrder:    "desc",
		},
	})

	base := defaultConfig()
	base.IncludePatterns = []string{"*.py"}
	require.NoError(t, m.ApplyLens("focus", base))

	// Lens includes replace the base's; excludes are unioned in.
	assert.Equal(t, []string{"*.go"}, base.IncludePatterns)
	assert.Contains(t, base.IgnorePatterns, "vendor/**")
	// Already-present patterns are not duplicated.
	assert.Equal(t, 1, countOccurrences(base.IgnorePatterns, ".git"))

	assert.Equal(t, 100, base.Truncate)
	assert.Equal(t, truncateModeSmart, base.TruncateMode)
	assert.Equal(t, "mtime", base.SortBy)
	assert.Equal(t, "desc", base.SortOrder)
	assert.Equal(t, "focus", m.ActiveName())
}

func TestApplyLensUnknownListsAvailable(t *testing.T) {
	m := NewLensManager()
	err := m.ApplyLens("nope", defaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown lens 'nope'")
	for _, name := range []string{"architecture", "debug", "onboarding", "security"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestBuiltInDebugLensStaysFlat(t *testing.T) {
	m := NewLensManager()
	lens, ok := m.Lens("debug")
	require.True(t, ok)
	assert.Empty(t, lens.Groups)
	assert.Equal(t, "mtime", lens.SortBy)
	assert.Equal(t, "desc", lens.SortOrder)
	require.NotNil(t, lens.Truncate)
	assert.Equal(t, 0, *lens.Truncate)
}

func TestCustomLensShadowsBuiltIn(t *testing.T) {
	m := NewLensManager()
	m.LoadCustom(map[string]LensConfig{"debug": {Description: "mine"}})
	lens, ok := m.Lens("debug")
	require.True(t, ok)
	assert.Equal(t, "mine", lens.Description)
}

func TestPrintManifest(t *testing.T) {
	m := NewLensManager()
	cfg := defaultConfig()
	require.NoError(t, m.ApplyLens("architecture", cfg))

	var b strings.Builder
	m.PrintManifest(&b)
	out := b.String()
	assert.Contains(t, out, "[LENS: architecture]")
	assert.Contains(t, out, "Description: High-level code structure and configuration")
	assert.Contains(t, out, "Excluding:")
	assert.Contains(t, out, "(+")

	m2 := NewLensManager()
	require.NoError(t, m2.ApplyLens("debug", defaultConfig()))
	b.Reset()
	m2.PrintManifest(&b)
	assert.Contains(t, b.String(), "Disabled (full files)")
}

func TestMetaContent(t *testing.T) {
	m := NewLensManager()
	assert.Empty(t, m.MetaContent())

	require.NoError(t, m.ApplyLens("debug", defaultConfig()))
	meta := m.MetaContent()
	assert.Contains(t, meta, "Context generated with lens: debug")
	assert.Contains(t, meta, "Recent changes for debugging")
}

func countOccurrences(list []string, s string) int {
	n := 0
	for _, item := range list {
		if item == s {
			n++
		}
	}
	return n
}
