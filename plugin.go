package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// createPluginTemplate prints a skeleton analyzer for a new language to
// stdout. The skeleton compiles once the TODOs are filled in and the
// type is registered in NewAnalyzerRegistry; there is no dynamic
// loading, the registry is a closed set.
func createPluginTemplate(w io.Writer, language string) {
	name := strings.ToLower(language)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	fmt.Fprintf(w, `// pmenc Language Plugin: %s
//
// Register this analyzer in NewAnalyzerRegistry under the file
// extensions it should handle, e.g. byExt[".%s"] = &%sAnalyzer{}.

package main

type %sAnalyzer struct{}

func (a *%sAnalyzer) Analyze(content, path string) Analysis {
	analysis := Analysis{Language: "%s", Category: "source"}
	if isTestPath(path) {
		analysis.Category = "test"
	}
	// TODO: extract classes, functions, imports and entry points with
	// line-oriented regexes. See PythonAnalyzer for the expected shape.
	analysis.Markers = collectMarkers(splitLines(content), "//")
	return analysis
}

func (a *%sAnalyzer) StructureRanges(lines []string) []LineRange {
	// TODO: return the 1-indexed line ranges holding imports and
	// declaration signatures. Return nil to opt out of structure mode.
	return nil
}

func (a *%sAnalyzer) TruncateRanges(content string, maxLines int) ([]LineRange, Analysis) {
	analysis := a.Analyze(content, "")
	lines := splitLines(content)
	if len(lines) <= maxLines {
		return []LineRange{{Start: 1, End: len(lines)}}, analysis
	}
	// Head/tail split is a reasonable default for smart mode.
	return headTailRanges(len(lines), maxLines), analysis
}
`, name, strings.ToLower(language), name, name, name, name, name, name)
	fmt.Fprintf(os.Stderr, "Plugin template generated for %s.\n", language)
}

// createPluginPrompt prints an AI-assistant prompt describing the
// analyzer contract, for generating a first draft of a new analyzer.
func createPluginPrompt(w io.Writer, language string) {
	fmt.Fprintf(w, `Write a Go language analyzer for %s implementing this interface:

    type Analyzer interface {
        Analyze(content, path string) Analysis
        StructureRanges(lines []string) []LineRange
        TruncateRanges(content string, maxLines int) ([]LineRange, Analysis)
    }

Requirements:
- Analyze fills an Analysis struct: Language (display name), Category
  (source/config/docs/test), Classes, Functions, Imports, EntryPoints
  and Markers (TODO/FIXME/XXX/HACK/NOTE comments).
- Use line-oriented regular expressions only. Heuristic extraction is
  the contract; full parsing is out of scope.
- StructureRanges returns 1-indexed inclusive line ranges covering
  imports and declaration signatures, or nil when %s has no
  meaningful structural skeleton.
- TruncateRanges returns the heuristically important ranges to keep
  under maxLines lines for smart truncation.
- Failures must degrade: on unparseable input return a best-effort
  Analysis, never an error.
`, language, language)
}
