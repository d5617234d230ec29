package main

import (
	"fmt"
	"strings"
)

// Truncation modes.
const (
	truncateModeSimple    = "simple"
	truncateModeSmart     = "smart"
	truncateModeStructure = "structure"
)

// TruncationResult is what the truncation engine hands back: the
// (possibly shortened) content, whether anything was removed, and the
// analysis used to build the human-readable marker.
type TruncationResult struct {
	Content      string
	WasTruncated bool
	Analysis     Analysis
}

// truncateContent shortens content according to the requested mode.
//
// structure: keep only signature/import lines per the file's analyzer;
// falls back to smart when the analyzer has no structure support.
// smart: keep the analyzer's heuristically important ranges under the
// line cap. simple: keep the first maxLines lines.
//
// Output is deterministic: identical inputs produce identical bytes.
func truncateContent(content, path string, maxLines int, mode string, registry *AnalyzerRegistry, includeSummary bool) TruncationResult {
	if registry == nil {
		registry = NewAnalyzerRegistry()
	}
	analyzer := registry.AnalyzerFor(path)
	lines := splitLines(content)
	total := len(lines)

	switch mode {
	case truncateModeStructure:
		ranges := analyzer.StructureRanges(lines)
		if len(ranges) == 0 {
			return truncateContent(content, path, maxLines, truncateModeSmart, registry, includeSummary)
		}
		kept := rangeLineCount(ranges)
		if kept >= total {
			return TruncationResult{Content: content, Analysis: analyzer.Analyze(content, path)}
		}
		body := extractRanges(lines, ranges, false)
		analysis := analyzer.Analyze(content, path)
		if includeSummary {
			body += "\n" + structureMarker(path, kept, total)
		}
		return TruncationResult{Content: body, WasTruncated: true, Analysis: analysis}

	case truncateModeSimple:
		if maxLines <= 0 || total <= maxLines {
			return TruncationResult{Content: content, Analysis: analyzer.Analyze(content, path)}
		}
		body := strings.Join(lines[:maxLines], "\n")
		analysis := analyzer.Analyze(content, path)
		if includeSummary {
			body += "\n" + simpleMarker(path, maxLines, total)
		}
		return TruncationResult{Content: body, WasTruncated: true, Analysis: analysis}

	case truncateModeSmart:
		if maxLines <= 0 || total <= maxLines {
			return TruncationResult{Content: content, Analysis: analyzer.Analyze(content, path)}
		}
		ranges, analysis := analyzer.TruncateRanges(content, maxLines)
		kept := rangeLineCount(ranges)
		if kept >= total {
			return TruncationResult{Content: content, Analysis: analysis}
		}
		body := extractRanges(lines, ranges, true)
		if includeSummary {
			body += "\n" + smartMarker(path, analysis, kept, total)
		}
		return TruncationResult{Content: body, WasTruncated: true, Analysis: analysis}
	}

	// Unknown mode: leave content untouched rather than guess.
	return TruncationResult{Content: content, Analysis: analyzer.Analyze(content, path)}
}

// rangeLineCount sums the lines covered by the (merged) ranges.
func rangeLineCount(ranges []LineRange) int {
	n := 0
	for _, r := range ranges {
		n += r.End - r.Start + 1
	}
	return n
}

// extractRanges concatenates the lines inside each range. With gaps
// enabled, an omission marker is inserted between non-adjacent ranges.
func extractRanges(lines []string, ranges []LineRange, gaps bool) string {
	ranges = mergeRanges(clampRanges(ranges, len(lines)))
	var parts []string
	prevEnd := 0
	for _, r := range ranges {
		if gaps && prevEnd > 0 && r.Start > prevEnd+1 {
			parts = append(parts, fmt.Sprintf("... [%d lines omitted] ...", r.Start-prevEnd-1))
		}
		parts = append(parts, strings.Join(lines[r.Start-1:r.End], "\n"))
		prevEnd = r.End
	}
	return strings.Join(parts, "\n")
}

func reincludeHint(path string) string {
	return fmt.Sprintf("Re-include in full with: --include %s --truncate 0", path)
}

// simpleMarker is appended after simple-mode truncation.
func simpleMarker(path string, kept, total int) string {
	reduction := 100 - kept*100/total
	return fmt.Sprintf("... [TRUNCATED: kept %d/%d lines, %d%% reduction. %s]",
		kept, total, reduction, reincludeHint(path))
}

// structureMarker is appended after structure-mode truncation.
func structureMarker(path string, kept, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# ---------- [STRUCTURE MODE: kept %d/%d lines] ----------\n", kept, total)
	b.WriteString("# Kept: imports, signatures, declarations. Elided: implementation bodies.\n")
	fmt.Fprintf(&b, "# %s", reincludeHint(path))
	return b.String()
}

// smartMarker is the rich summary block appended after smart-mode
// truncation: language, category, capped symbol lists and the
// re-inclusion hint.
func smartMarker(path string, analysis Analysis, kept, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# ========== [TRUNCATED: kept %d/%d lines] ==========\n", kept, total)
	fmt.Fprintf(&b, "# Language: %s | Category: %s\n", analysis.Language, analysis.Category)
	if len(analysis.Classes) > 0 {
		fmt.Fprintf(&b, "# Classes: %s\n", cappedList(analysis.Classes, 10))
	}
	if len(analysis.Functions) > 0 {
		fmt.Fprintf(&b, "# Functions: %s\n", cappedList(analysis.Functions, 10))
	}
	if len(analysis.Imports) > 0 {
		imports := analysis.Imports
		suffix := ""
		if len(imports) > 8 {
			imports = imports[:8]
			suffix = ", ..."
		}
		fmt.Fprintf(&b, "# Imports: %s%s\n", strings.Join(imports, ", "), suffix)
	}
	if len(analysis.EntryPoints) > 0 {
		entries := analysis.EntryPoints
		if len(entries) > 5 {
			entries = entries[:5]
		}
		fmt.Fprintf(&b, "# Entry points: %s\n", strings.Join(entries, ", "))
	}
	if len(analysis.Markers) > 0 {
		markers := analysis.Markers
		if len(markers) > 5 {
			markers = markers[:5]
		}
		fmt.Fprintf(&b, "# Markers: %s\n", strings.Join(markers, "; "))
	}
	fmt.Fprintf(&b, "# %s", reincludeHint(path))
	return b.String()
}

// cappedList joins up to max names, noting how many were left out.
func cappedList(names []string, max int) string {
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(names[:max], ", "), len(names)-max)
}
