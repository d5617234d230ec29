package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// defaultPriority is the priority every file gets when a lens defines no
// priority groups, and the fallback when no group matches and the lens
// has no explicit fallback. This is the v1.6-era flat behavior that the
// groups feature must never break.
const defaultPriority = 50

// PriorityGroup is one declarative pattern -> priority rule inside a
// lens. TruncateMode/Truncate optionally override the global truncation
// policy for files the group matches.
type PriorityGroup struct {
	Name         string `mapstructure:"name" yaml:"name" json:"name"`
	Pattern      string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
	Priority     int    `mapstructure:"priority" yaml:"priority" json:"priority"`
	TruncateMode string `mapstructure:"truncate_mode" yaml:"truncate_mode" json:"truncate_mode"`
	Truncate     *int   `mapstructure:"truncate" yaml:"truncate" json:"truncate"`
}

// FallbackConfig applies to files matching no group. Priority is a
// pointer so an explicit 0 is distinguishable from "not set".
type FallbackConfig struct {
	Priority     *int   `mapstructure:"priority" yaml:"priority" json:"priority"`
	TruncateMode string `mapstructure:"truncate_mode" yaml:"truncate_mode" json:"truncate_mode"`
	Truncate     *int   `mapstructure:"truncate" yaml:"truncate" json:"truncate"`
}

// GroupConfig is the resolved per-file policy: the winning group's (or
// fallback's) priority and truncation overrides.
type GroupConfig struct {
	Priority     int
	TruncateMode string
	Truncate     *int
}

// LensConfig is a named bundle of filtering/prioritization/truncation
// rules. Lenses without Groups behave like the legacy flat lenses:
// every file gets the same fallback priority.
type LensConfig struct {
	Description  string          `mapstructure:"description" yaml:"description" json:"description"`
	Groups       []PriorityGroup `mapstructure:"groups" yaml:"groups" json:"groups"`
	Fallback     *FallbackConfig `mapstructure:"fallback" yaml:"fallback" json:"fallback"`
	Include      []string        `mapstructure:"include" yaml:"include" json:"include"`
	Exclude      []string        `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	Truncate     *int            `mapstructure:"truncate" yaml:"truncate" json:"truncate"`
	TruncateMode string          `mapstructure:"truncate_mode" yaml:"truncate_mode" json:"truncate_mode"`
	SortBy       string          `mapstructure:"sort_by" yaml:"sort_by" json:"sort_by"`
	SortOrder    string          `mapstructure:"sort_order" yaml:"sort_order" json:"sort_order"`
}

func intPtr(n int) *int { return &n }

// LensManager holds the built-in lens presets plus user-supplied lenses
// and resolves per-file priorities against the active lens.
type LensManager struct {
	builtIn    map[string]LensConfig
	custom     map[string]LensConfig
	activeName string
	active     *LensConfig
}

// NewLensManager creates a manager with the built-in lens catalogue.
func NewLensManager() *LensManager {
	return &LensManager{builtIn: builtInLenses(), custom: map[string]LensConfig{}}
}

// builtInLenses returns the immutable preset catalogue.
func builtInLenses() map[string]LensConfig {
	return map[string]LensConfig{
		"architecture": {
			Description:  "High-level code structure and configuration",
			TruncateMode: truncateModeStructure,
			// Safety cap applied to any truncated file, groups or not.
			Truncate: intPtr(2000),
			Groups: []PriorityGroup{
				{Name: "source-tree", Pattern: "src/**", Priority: 95},
				{Name: "python", Pattern: "*.py", Priority: 90},
				{Name: "rust", Pattern: "*.rs", Priority: 90},
				{Name: "javascript", Pattern: "*.js", Priority: 85},
				{Name: "typescript", Pattern: "*.ts", Priority: 85},
				{Name: "toml-config", Pattern: "*.toml", Priority: 75},
				{Name: "shell", Pattern: "*.sh", Priority: 70},
				{Name: "json-config", Pattern: "*.json", Priority: 70},
				{Name: "yaml-config", Pattern: "*.yaml", Priority: 70},
				{Name: "yaml-config-alt", Pattern: "*.yml", Priority: 70},
				{Name: "make", Pattern: "Makefile", Priority: 65},
				{Name: "docker", Pattern: "Dockerfile", Priority: 65},
				{Name: "readme", Pattern: "README.md", Priority: 60},
				{Name: "docs", Pattern: "*.md", Priority: 40},
			},
			Fallback: &FallbackConfig{Priority: intPtr(defaultPriority)},
			Include: []string{
				"*.py", "*.js", "*.ts", "*.rs", "*.sh",
				"*.json", "*.toml", "*.yaml", "*.yml",
				"Dockerfile", "Makefile", "README.md",
			},
			Exclude: []string{
				"tests/**", "test/**", "docs/**", "doc/**",
				"htmlcov/**", "coverage.xml", "*.html", "*.css",
				"target/**", "dist/**", "build/**", "node_modules/**",
				"scripts/**", ".github/**", ".vscode/**", ".idea/**",
			},
			SortBy:    "name",
			SortOrder: "asc",
		},
		// debug deliberately has no groups: it is the proof that the
		// flat-priority legacy path still works.
		"debug": {
			Description: "Recent changes for debugging",
			Truncate:    intPtr(0),
			Exclude:     []string{"*.pyc", "__pycache__", ".git"},
			SortBy:      "mtime",
			SortOrder:   "desc",
		},
		"security": {
			Description: "Security-relevant files (auth, secrets, dependencies)",
			Truncate:    intPtr(0),
			Exclude:     []string{"tests/**", "test/**", "docs/**"},
			Include: []string{
				"**/*auth*", "**/*security*", "**/*secret*", "**/*credential*",
				"package.json", "requirements.txt", "Cargo.toml", "go.mod",
				"Dockerfile",
			},
			SortBy: "name",
		},
		"onboarding": {
			Description: "Essential files for new contributors",
			Truncate:    intPtr(0),
			Include: []string{
				"README.md", "CONTRIBUTING.md", "LICENSE", "CHANGELOG.md",
				"**/main.py", "**/index.js", "**/main.go",
				"package.json", "Cargo.toml", "go.mod", "Makefile", "Dockerfile",
			},
			SortBy: "name",
		},
	}
}

// LoadCustom registers user-supplied lenses. Custom lenses shadow
// built-ins of the same name.
func (m *LensManager) LoadCustom(lenses map[string]LensConfig) {
	for name, lens := range lenses {
		m.custom[name] = lens
	}
}

// Lens looks a lens up by name, custom first, then built-in.
func (m *LensManager) Lens(name string) (LensConfig, bool) {
	if lens, ok := m.custom[name]; ok {
		return lens, true
	}
	lens, ok := m.builtIn[name]
	return lens, ok
}

// AvailableLenses lists all known lens names, sorted.
func (m *LensManager) AvailableLenses() []string {
	seen := map[string]bool{}
	for name := range m.builtIn {
		seen[name] = true
	}
	for name := range m.custom {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveName returns the name of the applied lens, or "".
func (m *LensManager) ActiveName() string { return m.activeName }

// SetActiveConfig installs a lens config directly without the merge
// step. Used by tests and by callers that build configs on the fly.
func (m *LensManager) SetActiveConfig(cfg *LensConfig) { m.active = cfg }

// FilePriority resolves a path to a single integer priority. When cfg
// is nil the active lens config is used. Lenses without groups yield
// defaultPriority for every file (the backward-compatibility contract).
func (m *LensManager) FilePriority(path string, cfg *LensConfig) int {
	if cfg == nil {
		cfg = m.active
	}
	if cfg == nil || len(cfg.Groups) == 0 {
		return defaultPriority
	}
	best := 0
	matched := false
	for _, g := range cfg.Groups {
		if !matchesPattern(path, g.Pattern) {
			continue
		}
		if !matched || g.Priority > best {
			best = g.Priority
		}
		matched = true
	}
	if matched {
		return best
	}
	if cfg.Fallback != nil && cfg.Fallback.Priority != nil {
		return *cfg.Fallback.Priority
	}
	return defaultPriority
}

// FileGroupConfig resolves a path to the full config of its winning
// group (highest priority; first-declared wins ties), falling back to
// the lens fallback, then to a bare defaultPriority config.
func (m *LensManager) FileGroupConfig(path string, cfg *LensConfig) GroupConfig {
	if cfg == nil {
		cfg = m.active
	}
	if cfg == nil || len(cfg.Groups) == 0 {
		return GroupConfig{Priority: defaultPriority}
	}
	var winner *PriorityGroup
	for i := range cfg.Groups {
		g := &cfg.Groups[i]
		if !matchesPattern(path, g.Pattern) {
			continue
		}
		if winner == nil || g.Priority > winner.Priority {
			winner = g
		}
	}
	if winner != nil {
		return GroupConfig{
			Priority:     winner.Priority,
			TruncateMode: winner.TruncateMode,
			Truncate:     winner.Truncate,
		}
	}
	if cfg.Fallback != nil {
		priority := defaultPriority
		if cfg.Fallback.Priority != nil {
			priority = *cfg.Fallback.Priority
		}
		return GroupConfig{
			Priority:     priority,
			TruncateMode: cfg.Fallback.TruncateMode,
			Truncate:     cfg.Fallback.Truncate,
		}
	}
	return GroupConfig{Priority: defaultPriority}
}

// ApplyLens merges a named lens into the base encoder config and makes
// it the active lens. Merge rules: lens include patterns replace the
// base's; lens excludes are unioned into the base's ignore patterns;
// every other lens setting overwrites the base directly. Explicit CLI
// flags are layered on top by the caller afterwards.
func (m *LensManager) ApplyLens(name string, base *EncoderConfig) error {
	lens, ok := m.Lens(name)
	if !ok {
		return fmt.Errorf("unknown lens '%s'. Available lenses: %s",
			name, strings.Join(m.AvailableLenses(), ", "))
	}

	if len(lens.Include) > 0 {
		base.IncludePatterns = append([]string(nil), lens.Include...)
	}
	for _, pattern := range lens.Exclude {
		if !containsString(base.IgnorePatterns, pattern) {
			base.IgnorePatterns = append(base.IgnorePatterns, pattern)
		}
	}
	if lens.Truncate != nil {
		base.Truncate = *lens.Truncate
	}
	if lens.TruncateMode != "" {
		base.TruncateMode = lens.TruncateMode
	}
	if lens.SortBy != "" {
		base.SortBy = lens.SortBy
	}
	if lens.SortOrder != "" {
		base.SortOrder = lens.SortOrder
	}

	m.activeName = name
	m.active = &lens
	return nil
}

// PrintManifest writes a short description of the active lens, usually
// to stderr before serialization starts.
func (m *LensManager) PrintManifest(w io.Writer) {
	if m.active == nil {
		return
	}
	lens := m.active
	fmt.Fprintf(w, "[LENS: %s]\n", m.activeName)
	fmt.Fprintf(w, "Description: %s\n", lens.Description)
	switch {
	case lens.Truncate != nil && *lens.Truncate == 0:
		fmt.Fprintln(w, "Truncation: Disabled (full files)")
	case lens.TruncateMode != "":
		limit := ""
		if lens.Truncate != nil {
			limit = fmt.Sprintf(", max %d lines", *lens.Truncate)
		}
		fmt.Fprintf(w, "Truncation: %s mode%s\n", lens.TruncateMode, limit)
	}
	if lens.SortBy != "" {
		order := lens.SortOrder
		if order == "" {
			order = "asc"
		}
		fmt.Fprintf(w, "Sort: %s %s\n", lens.SortBy, order)
	}
	if len(lens.Groups) > 0 {
		fallback := defaultPriority
		if lens.Fallback != nil && lens.Fallback.Priority != nil {
			fallback = *lens.Fallback.Priority
		}
		fmt.Fprintf(w, "Priority groups: %d (fallback priority %d)\n", len(lens.Groups), fallback)
	}
	if len(lens.Include) > 0 {
		fmt.Fprintf(w, "Including: %s\n", cappedList(lens.Include, 5))
	}
	if len(lens.Exclude) > 0 {
		fmt.Fprintf(w, "Excluding: %s\n", cappedList(lens.Exclude, 5))
	}
}

// MetaContent builds the .pmenc_meta pseudo-file injected at the top of
// the output stream when a lens is active.
func (m *LensManager) MetaContent() string {
	if m.active == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Context generated with lens: %s\n", m.activeName)
	if m.active.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", m.active.Description)
	}
	if m.active.TruncateMode != "" {
		fmt.Fprintf(&b, "Truncation mode: %s\n", m.active.TruncateMode)
	}
	fmt.Fprintf(&b, "Files below reflect this lens's filtering and prioritization.\n")
	return b.String()
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
