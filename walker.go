package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	gitignore "github.com/monochromegane/go-gitignore"
)

// maxFileBytes is the per-file size cap; larger files are skipped.
const maxFileBytes = 5 * 1024 * 1024

// binarySniffBytes is how much of a file the NUL-byte heuristic reads.
const binarySniffBytes = 1024

// collectFiles walks root and returns every file passing the config's
// ignore/include filters, with decoded content. Skips and keeps are
// reported on stderr. A root naming a single file bypasses the ignore
// walk but still honors include patterns.
func collectFiles(root string, cfg *EncoderConfig) ([]FileRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", root, err)
	}

	if !info.IsDir() {
		rel := filepath.ToSlash(filepath.Base(root))
		if len(cfg.IncludePatterns) > 0 && !matchesAnyPattern(rel, cfg.IncludePatterns) {
			return nil, nil
		}
		rec, ok := readFileRecord(root, rel)
		if !ok {
			return nil, nil
		}
		fmt.Fprintf(os.Stderr, "[KEEP] %s\n", rel)
		return []FileRecord{rec}, nil
	}

	var matcher gitignore.IgnoreMatcher
	if cfg.RespectGitignore {
		gitIgnorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			m, err := gitignore.NewGitIgnore(gitIgnorePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not parse .gitignore file %s: %v\n", gitIgnorePath, err)
			} else {
				matcher = m
			}
		}
	}

	var files []FileRecord
	err = walkTree(root, "", cfg, matcher, &files)
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return files, nil
}

// walkTree recurses through one directory level. Entries are visited
// directories first, then files, case-insensitively by name, so the
// output stream is deterministic across platforms.
func walkTree(root, rel string, cfg *EncoderConfig, matcher gitignore.IgnoreMatcher, out *[]FileRecord) error {
	dir := root
	if rel != "" {
		dir = filepath.Join(root, filepath.FromSlash(rel))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error reading directory %s: %v\n", dir, err)
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		return strings.ToLower(a.Name()) < strings.ToLower(b.Name())
	})

	for _, entry := range entries {
		entryRel := entry.Name()
		if rel != "" {
			entryRel = rel + "/" + entry.Name()
		}

		if segmentIgnored(entryRel, cfg.IgnorePatterns) {
			if entry.IsDir() {
				fmt.Fprintf(os.Stderr, "[SKIP DIR] %s (matches ignore pattern)\n", entryRel)
			}
			continue
		}
		if matcher != nil && matcher.Match(filepath.FromSlash(entryRel), entry.IsDir()) {
			if entry.IsDir() {
				fmt.Fprintf(os.Stderr, "[SKIP DIR] %s (gitignored)\n", entryRel)
			}
			continue
		}

		if entry.IsDir() {
			if err := walkTree(root, entryRel, cfg, matcher, out); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}

		if len(cfg.IncludePatterns) > 0 && !matchesAnyPattern(entryRel, cfg.IncludePatterns) {
			continue
		}

		rec, ok := readFileRecord(filepath.Join(root, filepath.FromSlash(entryRel)), entryRel)
		if !ok {
			continue
		}
		fmt.Fprintf(os.Stderr, "[KEEP] %s\n", entryRel)
		*out = append(*out, rec)
	}
	return nil
}

// segmentIgnored reports whether any slash-separated segment of the
// relative path matches any ignore pattern. Matching a directory
// segment prunes everything beneath it.
func segmentIgnored(rel string, patterns []string) bool {
	for _, part := range strings.Split(rel, "/") {
		for _, pattern := range patterns {
			if fnmatch(part, pattern) {
				return true
			}
		}
	}
	return false
}

// readFileRecord loads one file, enforcing the size cap, the NUL-byte
// binary heuristic and UTF-8 decoding with a latin-1 fallback.
func readFileRecord(fullPath, rel string) (FileRecord, bool) {
	info, err := os.Stat(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not stat file %s: %v. Skipping.\n", rel, err)
		return FileRecord{}, false
	}
	if info.Size() > maxFileBytes {
		fmt.Fprintf(os.Stderr, "[SKIP] %s (file too large)\n", rel)
		return FileRecord{}, false
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not read file %s: %v. Skipping.\n", rel, err)
		return FileRecord{}, false
	}

	sniff := data
	if len(sniff) > binarySniffBytes {
		sniff = sniff[:binarySniffBytes]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		fmt.Fprintf(os.Stderr, "[SKIP] %s (likely binary)\n", rel)
		return FileRecord{}, false
	}

	content := decodeText(data)
	mod := info.ModTime().Unix()
	return FileRecord{
		Path:    rel,
		Content: content,
		ModTime: mod,
		// Change time is not portably available; modification time
		// stands in so mtime/ctime sorts stay consistent.
		ChangeTime: mod,
	}, true
}

// decodeText interprets data as UTF-8, falling back to latin-1 where
// every byte maps to the code point of the same value.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
