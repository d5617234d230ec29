package main

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Language analyzers extract a rough structural picture of a file using
// regex heuristics. They are intentionally "good enough, not perfect":
// no AST parsing, and false positives on exotic syntax are acceptable.

// LineRange is a 1-indexed inclusive range of lines.
type LineRange struct {
	Start int
	End   int
}

// Analysis is the structural summary produced by an analyzer. It feeds
// human-readable truncation markers and is never machine-consumed
// downstream.
type Analysis struct {
	Language       string
	Category       string
	Classes        []string
	Functions      []string
	Imports        []string
	EntryPoints    []string
	Markers        []string
	ConfigKeys     []string
	CodeBlocks     []string
	CriticalRanges []LineRange
}

// Analyzer is the closed interface implemented by every built-in
// language handler.
type Analyzer interface {
	// Analyze extracts classes/functions/imports/entry points.
	Analyze(content, path string) Analysis

	// StructureRanges returns line ranges containing only structural
	// lines (imports, signatures, decorators). Empty means structure
	// mode is unsupported and callers should fall back to smart mode.
	StructureRanges(lines []string) []LineRange

	// TruncateRanges returns the line ranges smart mode should keep
	// for the given line budget, plus the analysis used for markers.
	TruncateRanges(content string, maxLines int) ([]LineRange, Analysis)
}

// AnalyzerRegistry maps file extensions to analyzers, with a default for
// everything unmapped.
type AnalyzerRegistry struct {
	byExt map[string]Analyzer
	def   Analyzer
}

// NewAnalyzerRegistry builds the registry with all built-in analyzers.
func NewAnalyzerRegistry() *AnalyzerRegistry {
	py := &PythonAnalyzer{}
	js := &JavaScriptAnalyzer{}
	sh := &ShellAnalyzer{}
	md := &MarkdownAnalyzer{}
	js0 := &JSONAnalyzer{}
	ym := &YAMLAnalyzer{}
	rs := &RustAnalyzer{}
	return &AnalyzerRegistry{
		byExt: map[string]Analyzer{
			".py":       py,
			".js":       js,
			".jsx":      js,
			".mjs":      js,
			".ts":       js,
			".tsx":      js,
			".sh":       sh,
			".bash":     sh,
			".md":       md,
			".markdown": md,
			".json":     js0,
			".yaml":     ym,
			".yml":      ym,
			".rs":       rs,
		},
		def: &GenericAnalyzer{},
	}
}

// AnalyzerFor returns the analyzer for a path's extension, or the
// default analyzer when the extension is unmapped.
func (r *AnalyzerRegistry) AnalyzerFor(path string) Analyzer {
	ext := strings.ToLower(pathExt(path))
	if a, ok := r.byExt[ext]; ok {
		return a
	}
	return r.def
}

// SupportedLanguages lists the language names the registry can analyze.
// The analyzer set is closed, so the list is static.
func (r *AnalyzerRegistry) SupportedLanguages() []string {
	return []string{
		"JSON", "JavaScript/TypeScript", "Markdown", "Python",
		"Rust", "Shell (bash)", "YAML",
	}
}

func pathExt(path string) string {
	base := baseName(path)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[i:]
	}
	return ""
}

// --- shared helpers ---

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

func countLines(content string) int {
	return len(splitLines(content))
}

// mergeRanges sorts and merges adjacent or overlapping ranges into
// maximal contiguous spans.
func mergeRanges(ranges []LineRange) []LineRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]LineRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	merged := []LineRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}

// clampRanges bounds ranges to [1, total] and drops empty ones.
func clampRanges(ranges []LineRange, total int) []LineRange {
	var out []LineRange
	for _, r := range ranges {
		if r.Start < 1 {
			r.Start = 1
		}
		if r.End > total {
			r.End = total
		}
		if r.Start <= r.End {
			out = append(out, r)
		}
	}
	return out
}

func isTestPath(path string) bool {
	return strings.Contains(strings.ToLower(path), "test")
}

// collectMarkers scans for TODO-style comment markers with the given
// comment leader.
func collectMarkers(lines []string, leader string) []string {
	re := regexp.MustCompile(regexp.QuoteMeta(leader) + `\s*(TODO|FIXME|XXX|HACK|NOTE)\b[:\s]*(.*)`)
	var markers []string
	for _, line := range lines {
		if m := re.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[2])
			if len(text) > 60 {
				text = text[:60]
			}
			markers = append(markers, m[1]+": "+text)
		}
	}
	return markers
}

// headTailRanges keeps the first 50% and last 15% of the line budget,
// the common smart-mode split for code files.
func headTailRanges(total, maxLines int) []LineRange {
	head := maxLines * 50 / 100
	tail := maxLines * 15 / 100
	if head < 1 {
		head = 1
	}
	ranges := []LineRange{{1, head}}
	if tail > 0 {
		ranges = append(ranges, LineRange{total - tail + 1, total})
	}
	return ranges
}

// --- Generic (default) analyzer ---

// GenericAnalyzer handles unknown file types: empty analysis, no
// structure support, first-N-lines smart ranges.
type GenericAnalyzer struct{}

func (a *GenericAnalyzer) Analyze(content, path string) Analysis {
	return Analysis{Language: "Unknown", Category: "unknown"}
}

func (a *GenericAnalyzer) StructureRanges(lines []string) []LineRange {
	return nil
}

func (a *GenericAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	total := countLines(content)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	return []LineRange{{1, maxLines}}, analysis
}

// --- Python ---

var (
	pyClassRe  = regexp.MustCompile(`^\s*class\s+(\w+)`)
	pyFuncRe   = regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)`)
	pyImportRe = regexp.MustCompile(`^\s*(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import\b)`)
	pyMainRe   = regexp.MustCompile(`^\s*if\s+__name__\s*==`)
	pyStructRe = regexp.MustCompile(`^\s*(?:import\s|from\s|class\s|(?:async\s+)?def\s|@)`)
)

type PythonAnalyzer struct{}

func (a *PythonAnalyzer) Analyze(content, path string) Analysis {
	lines := splitLines(content)
	analysis := Analysis{Language: "Python", Category: "library"}
	for _, line := range lines {
		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			analysis.Classes = append(analysis.Classes, m[1])
		}
		if m := pyFuncRe.FindStringSubmatch(line); m != nil {
			analysis.Functions = append(analysis.Functions, m[1])
		}
		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			analysis.Imports = append(analysis.Imports, name)
		}
		if pyMainRe.MatchString(line) {
			analysis.EntryPoints = append(analysis.EntryPoints, "__main__ block")
		}
	}
	analysis.Markers = collectMarkers(lines, "#")
	if len(analysis.EntryPoints) > 0 {
		analysis.Category = "application"
	}
	if isTestPath(path) {
		analysis.Category = "test"
	}
	return analysis
}

func (a *PythonAnalyzer) StructureRanges(lines []string) []LineRange {
	var ranges []LineRange
	inDocstring := false
	docDelim := ""
	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if inDocstring {
			ranges = append(ranges, LineRange{n, n})
			if strings.Contains(trimmed, docDelim) {
				inDocstring = false
			}
			continue
		}
		switch {
		case n == 1 && strings.HasPrefix(trimmed, "#!"):
			ranges = append(ranges, LineRange{n, n})
		case pyStructRe.MatchString(line):
			ranges = append(ranges, LineRange{n, n})
		case n <= 3 && (strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''")):
			// Module docstring near the top of the file.
			docDelim = trimmed[:3]
			ranges = append(ranges, LineRange{n, n})
			if len(trimmed) > 3 && strings.Contains(trimmed[3:], docDelim) {
				break
			}
			inDocstring = true
		}
	}
	return mergeRanges(ranges)
}

func (a *PythonAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	lines := splitLines(content)
	total := len(lines)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	ranges := headTailRanges(total, maxLines)
	for i, line := range lines {
		if pyMainRe.MatchString(line) {
			ranges = append(ranges, LineRange{i - 1, i + 6})
		}
	}
	return mergeRanges(clampRanges(ranges, total)), analysis
}

// --- JavaScript / TypeScript ---

var (
	jsClassRe  = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	jsFuncRe   = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w+)`)
	jsArrowRe  = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?(?:\([^)]*\)|\w+)\s*=>`)
	jsImportRe = regexp.MustCompile(`^\s*import\s+.*?from\s+['"]([^'"]+)['"]`)
	jsExportRe = regexp.MustCompile(`^\s*export\b`)
	jsStructRe = regexp.MustCompile(`^\s*(?:import\s|export\s|class\s|(?:async\s+)?function\b|(?:const|let|var)\s+\w+\s*=\s*(?:async\s*)?(?:\([^)]*\)|\w+)\s*=>)`)
)

type JavaScriptAnalyzer struct{}

func (a *JavaScriptAnalyzer) Analyze(content, path string) Analysis {
	lines := splitLines(content)
	analysis := Analysis{Language: "JavaScript/TypeScript", Category: "library"}
	hasExports := false
	for _, line := range lines {
		if m := jsClassRe.FindStringSubmatch(line); m != nil {
			analysis.Classes = append(analysis.Classes, m[1])
		}
		if m := jsFuncRe.FindStringSubmatch(line); m != nil {
			analysis.Functions = append(analysis.Functions, m[1])
		} else if m := jsArrowRe.FindStringSubmatch(line); m != nil {
			analysis.Functions = append(analysis.Functions, m[1])
		}
		if m := jsImportRe.FindStringSubmatch(line); m != nil {
			analysis.Imports = append(analysis.Imports, m[1])
		}
		if jsExportRe.MatchString(line) {
			hasExports = true
		}
	}
	analysis.Markers = collectMarkers(lines, "//")
	if hasExports {
		analysis.Category = "module"
	}
	base := strings.ToLower(baseName(path))
	if isTestPath(path) || strings.Contains(base, ".spec.") {
		analysis.Category = "test"
	}
	return analysis
}

func (a *JavaScriptAnalyzer) StructureRanges(lines []string) []LineRange {
	var ranges []LineRange
	for i, line := range lines {
		if jsStructRe.MatchString(line) {
			ranges = append(ranges, LineRange{i + 1, i + 1})
		}
	}
	return mergeRanges(ranges)
}

func (a *JavaScriptAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	total := countLines(content)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	return mergeRanges(clampRanges(headTailRanges(total, maxLines), total)), analysis
}

// --- Shell ---

var (
	shFuncRe   = regexp.MustCompile(`^\s*(?:function\s+)?([A-Za-z_]\w*)\s*\(\)\s*\{?`)
	shSourceRe = regexp.MustCompile(`^\s*(?:source|\.)\s+(\S+)`)
)

type ShellAnalyzer struct{}

func (a *ShellAnalyzer) Analyze(content, path string) Analysis {
	lines := splitLines(content)
	analysis := Analysis{Language: "Shell (bash)", Category: "script"}
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "#!") {
			analysis.EntryPoints = append(analysis.EntryPoints, strings.TrimSpace(line))
			continue
		}
		if m := shFuncRe.FindStringSubmatch(line); m != nil && strings.Contains(line, "()") {
			analysis.Functions = append(analysis.Functions, m[1])
		}
		if m := shSourceRe.FindStringSubmatch(line); m != nil {
			analysis.Imports = append(analysis.Imports, m[1])
		}
	}
	analysis.Markers = collectMarkers(lines, "#")
	return analysis
}

func (a *ShellAnalyzer) StructureRanges(lines []string) []LineRange {
	var ranges []LineRange
	for i, line := range lines {
		n := i + 1
		switch {
		case n == 1 && strings.HasPrefix(line, "#!"):
			ranges = append(ranges, LineRange{n, n})
		case strings.Contains(line, "()") && shFuncRe.MatchString(line):
			ranges = append(ranges, LineRange{n, n})
		case shSourceRe.MatchString(line):
			ranges = append(ranges, LineRange{n, n})
		}
	}
	return mergeRanges(ranges)
}

func (a *ShellAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	total := countLines(content)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	return mergeRanges(clampRanges(headTailRanges(total, maxLines), total)), analysis
}

// --- Markdown ---

var (
	mdHeaderRe = regexp.MustCompile("^(#{1,6})\\s+(.+)$")
	mdFenceRe  = regexp.MustCompile("^```(\\w+)")
	mdLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

type MarkdownAnalyzer struct{}

func (a *MarkdownAnalyzer) Analyze(content, path string) Analysis {
	lines := splitLines(content)
	analysis := Analysis{Language: "Markdown", Category: "documentation"}
	type header struct {
		level int
		line  int
	}
	var headers []header
	for i, line := range lines {
		if m := mdHeaderRe.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			headers = append(headers, header{level, i + 1})
			analysis.EntryPoints = append(analysis.EntryPoints,
				fmt.Sprintf("%s %s (line %d)", m[1], strings.TrimSpace(m[2]), i+1))
		}
		if m := mdFenceRe.FindStringSubmatch(line); m != nil {
			analysis.CodeBlocks = append(analysis.CodeBlocks, m[1])
		}
		for _, m := range mdLinkRe.FindAllStringSubmatch(line, -1) {
			analysis.Imports = append(analysis.Imports, m[2])
		}
	}
	// Critical sections: spans opened by H1/H2 headers.
	for i, h := range headers {
		if h.level > 2 {
			continue
		}
		end := len(lines)
		for _, next := range headers[i+1:] {
			if next.level <= 2 {
				end = next.line - 1
				break
			}
		}
		analysis.CriticalRanges = append(analysis.CriticalRanges, LineRange{h.line, end})
	}
	return analysis
}

func (a *MarkdownAnalyzer) StructureRanges(lines []string) []LineRange {
	// Markdown has no signature/body split; smart mode handles it.
	return nil
}

func (a *MarkdownAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	lines := splitLines(content)
	total := len(lines)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	// Greedy header-anchored windows until the line budget runs out.
	remaining := maxLines
	var ranges []LineRange
	for i, line := range lines {
		if remaining <= 0 {
			break
		}
		if mdHeaderRe.MatchString(line) {
			window := 8
			if window > remaining {
				window = remaining
			}
			ranges = append(ranges, LineRange{i + 1, i + window})
			remaining -= window
		}
	}
	if len(ranges) == 0 {
		ranges = []LineRange{{1, maxLines}}
	}
	return mergeRanges(clampRanges(ranges, total)), analysis
}

// --- JSON ---

// jsonDepthLimit caps the recursive key walk so pathological nesting
// degrades instead of blowing the stack.
const jsonDepthLimit = 100

type JSONAnalyzer struct{}

func (a *JSONAnalyzer) Analyze(content, path string) Analysis {
	var parsed interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// Malformed JSON: degrade to the default analyzer's result.
		return (&GenericAnalyzer{}).Analyze(content, path)
	}
	analysis := Analysis{Language: "JSON", Category: "config"}
	keys, depth := walkJSON(parsed, 0)
	analysis.Markers = append(analysis.Markers,
		fmt.Sprintf("%d keys, max depth %d", keys, depth))
	if obj, ok := parsed.(map[string]interface{}); ok {
		top := make([]string, 0, len(obj))
		for k := range obj {
			top = append(top, k)
		}
		sort.Strings(top)
		if len(top) > 20 {
			top = top[:20]
		}
		analysis.ConfigKeys = top
		analysis.EntryPoints = top
	}
	return analysis
}

// walkJSON counts keys and nesting depth with a depth guard.
func walkJSON(v interface{}, depth int) (keys, maxDepth int) {
	if depth >= jsonDepthLimit {
		return 0, depth
	}
	maxDepth = depth
	switch t := v.(type) {
	case map[string]interface{}:
		keys = len(t)
		for _, child := range t {
			k, d := walkJSON(child, depth+1)
			keys += k
			if d > maxDepth {
				maxDepth = d
			}
		}
	case []interface{}:
		for _, child := range t {
			k, d := walkJSON(child, depth+1)
			keys += k
			if d > maxDepth {
				maxDepth = d
			}
		}
	}
	return keys, maxDepth
}

func (a *JSONAnalyzer) StructureRanges(lines []string) []LineRange {
	return nil
}

func (a *JSONAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	total := countLines(content)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	return []LineRange{{1, maxLines}}, analysis
}

// --- YAML ---

// Line-leading keys only; deliberately not a YAML parse.
var yamlKeyRe = regexp.MustCompile(`^([A-Za-z_][\w-]*)\s*:`)

type YAMLAnalyzer struct{}

func (a *YAMLAnalyzer) Analyze(content, path string) Analysis {
	analysis := Analysis{Language: "YAML", Category: "config"}
	for _, line := range splitLines(content) {
		if m := yamlKeyRe.FindStringSubmatch(line); m != nil {
			analysis.ConfigKeys = append(analysis.ConfigKeys, m[1])
		}
	}
	analysis.Markers = collectMarkers(splitLines(content), "#")
	return analysis
}

func (a *YAMLAnalyzer) StructureRanges(lines []string) []LineRange {
	return nil
}

func (a *YAMLAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	total := countLines(content)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	return []LineRange{{1, maxLines}}, analysis
}

// --- Rust ---

var (
	rsStructRe = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?struct\s+(\w+)`)
	rsEnumRe   = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?enum\s+(\w+)`)
	rsTraitRe  = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?trait\s+(\w+)`)
	rsFuncRe   = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+(\w+)`)
	rsUseRe    = regexp.MustCompile(`^\s*(?:pub\s+)?use\s+([\w:]+)`)
	rsStructLn = regexp.MustCompile(`^\s*(?:#\[|pub\b|use\s|mod\s|struct\s|enum\s|trait\s|impl\b|(?:async\s+)?fn\s|extern\s|macro_rules!)`)
)

type RustAnalyzer struct{}

func (a *RustAnalyzer) Analyze(content, path string) Analysis {
	lines := splitLines(content)
	analysis := Analysis{Language: "Rust", Category: "library"}
	for _, line := range lines {
		if m := rsStructRe.FindStringSubmatch(line); m != nil {
			analysis.Classes = append(analysis.Classes, m[1])
		}
		if m := rsEnumRe.FindStringSubmatch(line); m != nil {
			analysis.Classes = append(analysis.Classes, m[1])
		}
		if m := rsTraitRe.FindStringSubmatch(line); m != nil {
			analysis.Classes = append(analysis.Classes, m[1])
		}
		if m := rsFuncRe.FindStringSubmatch(line); m != nil {
			analysis.Functions = append(analysis.Functions, m[1])
			if m[1] == "main" {
				analysis.EntryPoints = append(analysis.EntryPoints, "main function")
			}
		}
		if m := rsUseRe.FindStringSubmatch(line); m != nil {
			analysis.Imports = append(analysis.Imports, m[1])
		}
	}
	analysis.Markers = collectMarkers(lines, "//")
	if len(analysis.EntryPoints) > 0 {
		analysis.Category = "application"
	}
	if isTestPath(path) {
		analysis.Category = "test"
	}
	return analysis
}

func (a *RustAnalyzer) StructureRanges(lines []string) []LineRange {
	var ranges []LineRange
	for i, line := range lines {
		if rsStructLn.MatchString(line) {
			ranges = append(ranges, LineRange{i + 1, i + 1})
		}
	}
	return mergeRanges(ranges)
}

func (a *RustAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	lines := splitLines(content)
	total := len(lines)
	if total <= maxLines {
		return []LineRange{{1, total}}, analysis
	}
	ranges := headTailRanges(total, maxLines)
	for i, line := range lines {
		if m := rsFuncRe.FindStringSubmatch(line); m != nil && m[1] == "main" {
			ranges = append(ranges, LineRange{i - 1, i + 6})
		}
	}
	return mergeRanges(clampRanges(ranges, total)), analysis
}

var _ = []Analyzer{
	(*GenericAnalyzer)(nil), (*PythonAnalyzer)(nil), (*JavaScriptAnalyzer)(nil),
	(*ShellAnalyzer)(nil), (*MarkdownAnalyzer)(nil), (*JSONAnalyzer)(nil),
	(*YAMLAnalyzer)(nil), (*RustAnalyzer)(nil),
}
