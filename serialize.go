package main

import (
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"strings"
)

// metaFileName is the pseudo-file emitted first when a lens is active,
// so the consumer knows the stream is a filtered view.
const metaFileName = ".pmenc_meta"

func fileHeader(path string) string {
	return fmt.Sprintf("++++++++++ %s ++++++++++\n", path)
}

func fileFooter(path, checksum string) string {
	return fmt.Sprintf("---------- %s %s %s ----------\n", path, checksum, path)
}

// writePMFormat writes one file in the Plus/Minus envelope. The footer
// checksum covers the content exactly as serialized, minus the newline
// added when the content does not end with one.
func writePMFormat(w io.Writer, path, content string) error {
	checksum := fmt.Sprintf("%x", md5.Sum([]byte(content)))
	if _, err := io.WriteString(w, fileHeader(path)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, content); err != nil {
		return err
	}
	if !strings.HasSuffix(content, "\n") {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, fileFooter(path, checksum))
	return err
}

// sortFiles orders files in place by name, mtime or ctime. Path is the
// tiebreaker for the time-based sorts so output stays deterministic.
func sortFiles(files []FileRecord, by, order string) {
	less := func(a, b FileRecord) bool {
		switch by {
		case "mtime":
			if a.ModTime != b.ModTime {
				return a.ModTime < b.ModTime
			}
		case "ctime":
			if a.ChangeTime != b.ChangeTime {
				return a.ChangeTime < b.ChangeTime
			}
		}
		return a.Path < b.Path
	}
	sort.SliceStable(files, func(i, j int) bool {
		if order == "desc" {
			return less(files[j], files[i])
		}
		return less(files[i], files[j])
	})
}

// effectiveTruncation resolves the truncation policy for one file:
// group-level overrides beat the global settings, and truncate-exclude
// patterns disable truncation entirely.
func effectiveTruncation(path string, cfg *EncoderConfig, lenses *LensManager) (maxLines int, mode string) {
	if matchesAnyPattern(path, cfg.TruncateExclude) {
		return 0, ""
	}
	maxLines = cfg.Truncate
	mode = cfg.TruncateMode
	if lenses != nil {
		gc := lenses.FileGroupConfig(path, nil)
		if gc.TruncateMode != "" {
			mode = gc.TruncateMode
		}
		if gc.Truncate != nil {
			maxLines = *gc.Truncate
		}
	}
	if mode == "" {
		mode = truncateModeSimple
	}
	return maxLines, mode
}

// finalizeFiles produces the exact record list the stream will carry:
// the lens meta pseudo-file first when a lens is active, then every
// file in sorted order with the per-file truncation policy applied.
// Records the budget allocator already truncated pass through as-is.
func finalizeFiles(files []FileRecord, cfg *EncoderConfig, lenses *LensManager, registry *AnalyzerRegistry) []FileRecord {
	if registry == nil {
		registry = NewAnalyzerRegistry()
	}

	sorted := append([]FileRecord(nil), files...)
	sortFiles(sorted, cfg.SortBy, cfg.SortOrder)

	var final []FileRecord
	if lenses != nil && lenses.ActiveName() != "" {
		final = append(final, FileRecord{Path: metaFileName, Content: lenses.MetaContent()})
	}

	for _, f := range sorted {
		if !f.Truncated {
			maxLines, mode := effectiveTruncation(f.Path, cfg, lenses)
			if mode == truncateModeStructure || maxLines > 0 {
				res := truncateContent(f.Content, f.Path, maxLines, mode, registry, true)
				f.Content = res.Content
				f.Truncated = res.WasTruncated
				// Structure mode ignores the line cap, so apply it as a
				// safety net on the skeleton it produced.
				if res.WasTruncated && mode == truncateModeStructure && maxLines > 0 && countLines(f.Content) > maxLines {
					f.Content = truncateContent(f.Content, f.Path, maxLines, truncateModeSimple, registry, true).Content
				}
			}
		}
		final = append(final, f)
	}
	return final
}

// writeSerialized writes already-finalized records as one Plus/Minus
// stream and returns the run summary.
func writeSerialized(w io.Writer, files []FileRecord) (Summary, error) {
	var summary Summary
	for _, f := range files {
		if err := writePMFormat(w, f.Path, f.Content); err != nil {
			return summary, err
		}
		summary.TotalFiles++
		summary.TotalBytes += int64(len(f.Content))
		summary.TotalTokens += estimateTokens(f.Content)
	}
	return summary, nil
}
