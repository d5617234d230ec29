package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Budget strategies.
const (
	strategyDrop     = "drop"
	strategyTruncate = "truncate"
	strategyHybrid   = "hybrid"
)

// hybridThreshold is the fraction of the original budget above which
// the hybrid strategy pre-truncates a file before allocation starts.
const hybridThreshold = 0.10

// budgetEntry tracks one file through allocation.
type budgetEntry struct {
	file           FileRecord
	priority       int
	tokens         int
	originalTokens int
	truncated      bool
}

// IncludedFile is one selected file in the budget report.
type IncludedFile struct {
	Path      string
	Priority  int
	Tokens    int
	Truncated bool
}

// DroppedFile is one excluded file in the budget report.
type DroppedFile struct {
	Path     string
	Priority int
	Tokens   int
}

// BudgetReport summarizes one allocation run.
type BudgetReport struct {
	Budget           int
	Used             int
	SelectedCount    int
	DroppedCount     int
	TruncatedCount   int
	IncludedFiles    []IncludedFile
	DroppedFiles     []DroppedFile
	EstimationMethod string
	Strategy         string
}

// UsedPercentage returns the share of the budget consumed, in percent.
func (r *BudgetReport) UsedPercentage() float64 {
	if r.Budget <= 0 {
		return 0
	}
	return float64(r.Used) / float64(r.Budget) * 100
}

// Remaining returns the unused budget, clamped at zero.
func (r *BudgetReport) Remaining() int {
	if r.Used > r.Budget {
		return 0
	}
	return r.Budget - r.Used
}

// PrintReport writes the human-readable budget report, normally to
// stderr so the serialized stream on stdout stays clean.
func (r *BudgetReport) PrintReport(w io.Writer) {
	banner := strings.Repeat("=", 70)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "TOKEN BUDGET REPORT")
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Budget:     %10s tokens\n", formatNumber(r.Budget))
	fmt.Fprintf(w, "Used:       %10s tokens (%.1f%%)\n", formatNumber(r.Used), r.UsedPercentage())
	fmt.Fprintf(w, "Remaining:  %10s tokens\n", formatNumber(r.Remaining()))
	fmt.Fprintf(w, "Estimation: %s\n", r.EstimationMethod)
	fmt.Fprintf(w, "Strategy:   %s\n", r.Strategy)
	fmt.Fprintln(w)

	if r.Strategy == strategyDrop {
		fmt.Fprintf(w, "Files included: %d\n", r.SelectedCount)
	} else {
		full := r.SelectedCount - r.TruncatedCount
		fmt.Fprintf(w, "Files included: %d (%d full, %d truncated)\n", r.SelectedCount, full, r.TruncatedCount)
	}
	fmt.Fprintf(w, "Files dropped:  %d (lowest priority first)\n", r.DroppedCount)

	if r.TruncatedCount > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Auto-truncated files (structure mode):")
		shown := 0
		for _, f := range r.IncludedFiles {
			if !f.Truncated {
				continue
			}
			if shown < 5 {
				fmt.Fprintf(w, "  [P:%3d] %s (%s tokens)\n", f.Priority, f.Path, formatNumber(f.Tokens))
			}
			shown++
		}
		if shown > 5 {
			fmt.Fprintf(w, "  ... and %d more\n", shown-5)
		}
	}

	if len(r.DroppedFiles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Dropped files:")
		for i, f := range r.DroppedFiles {
			if i >= 10 {
				fmt.Fprintf(w, "  ... and %d more\n", len(r.DroppedFiles)-10)
				break
			}
			fmt.Fprintf(w, "  [P:%3d] %s (%s tokens)\n", f.Priority, f.Path, formatNumber(f.Tokens))
		}
	}

	fmt.Fprintln(w, banner)
}

// formatNumber renders n with thousand separators.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// truncateToStructure reduces content to its structural skeleton using
// the file's analyzer. Returns the content unchanged (and false) when
// the analyzer has no structure support or nothing would be saved.
func truncateToStructure(path, content string, registry *AnalyzerRegistry) (string, bool) {
	if registry == nil {
		registry = NewAnalyzerRegistry()
	}
	analyzer := registry.AnalyzerFor(path)
	lines := splitLines(content)
	ranges := analyzer.StructureRanges(lines)
	if len(ranges) == 0 {
		return content, false
	}
	kept := rangeLineCount(mergeRanges(clampRanges(ranges, len(lines))))
	if kept >= len(lines) {
		return content, false
	}
	body := extractRanges(lines, ranges, false)
	body += "\n" + structureMarker(path, kept, len(lines))
	return body, true
}

// applyTokenBudget selects the subset of files fitting within budget
// tokens, highest priority first, alphabetical within equal priority.
//
// Strategies: "drop" skips files that do not fit; "truncate"
// additionally tries a structure-mode rendition of a non-fitting file
// before giving up; "hybrid" also pre-truncates any file costing more
// than 10% of the original budget.
func applyTokenBudget(files []FileRecord, budget int, lenses *LensManager, strategy string, registry *AnalyzerRegistry) ([]FileRecord, *BudgetReport) {
	if registry == nil {
		registry = NewAnalyzerRegistry()
	}
	if lenses == nil {
		lenses = NewLensManager()
	}
	if strategy == "" {
		strategy = strategyDrop
	}

	entries := make([]budgetEntry, 0, len(files))
	for _, f := range files {
		gc := lenses.FileGroupConfig(f.Path, nil)
		original := estimateFileTokens(f)

		// Group-level structure mode applies before any budget math.
		truncated := false
		if gc.TruncateMode == truncateModeStructure {
			if body, ok := truncateToStructure(f.Path, f.Content, registry); ok {
				f.Content = body
				f.Truncated = true
				truncated = true
			}
		}

		entries = append(entries, budgetEntry{
			file:           f,
			priority:       gc.Priority,
			tokens:         estimateFileTokens(f),
			originalTokens: original,
			truncated:      truncated,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].file.Path < entries[j].file.Path
	})

	if strategy == strategyHybrid {
		threshold := int(float64(budget) * hybridThreshold)
		for i := range entries {
			e := &entries[i]
			if e.tokens <= threshold || e.truncated {
				continue
			}
			if body, ok := truncateToStructure(e.file.Path, e.file.Content, registry); ok {
				e.file.Content = body
				e.file.Truncated = true
				e.tokens = estimateFileTokens(e.file)
				e.truncated = true
			}
		}
	}

	var (
		selected       []FileRecord
		included       []IncludedFile
		dropped        []DroppedFile
		total          int
		truncatedCount int
	)

	for _, e := range entries {
		if total+e.tokens <= budget {
			if e.truncated {
				truncatedCount++
			}
			included = append(included, IncludedFile{Path: e.file.Path, Priority: e.priority, Tokens: e.tokens, Truncated: e.truncated})
			selected = append(selected, e.file)
			total += e.tokens
			continue
		}

		if strategy == strategyTruncate || strategy == strategyHybrid {
			if body, ok := truncateToStructure(e.file.Path, e.file.Content, registry); ok {
				shrunk := e.file
				shrunk.Content = body
				shrunk.Truncated = true
				tokens := estimateFileTokens(shrunk)
				if total+tokens <= budget {
					truncatedCount++
					included = append(included, IncludedFile{Path: shrunk.Path, Priority: e.priority, Tokens: tokens, Truncated: true})
					selected = append(selected, shrunk)
					total += tokens
					continue
				}
			}
		}

		dropped = append(dropped, DroppedFile{Path: e.file.Path, Priority: e.priority, Tokens: e.originalTokens})
	}

	report := &BudgetReport{
		Budget:           budget,
		Used:             total,
		SelectedCount:    len(selected),
		DroppedCount:     len(dropped),
		TruncatedCount:   truncatedCount,
		IncludedFiles:    included,
		DroppedFiles:     dropped,
		EstimationMethod: estimatorMethod(),
		Strategy:         strategy,
	}
	return selected, report
}
