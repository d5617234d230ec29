package main

import (
	"regexp"
	"strings"
	"sync"
)

// Glob matching for ignore/include filtering and priority groups.
//
// Semantics follow fnmatch: '*' matches any run of characters including
// '/', '?' matches a single character, '[...]' is a character class.
// A single '**' splits the pattern into a directory prefix and a file
// suffix. Patterns with more than one '**' match nothing.

var (
	globCacheMu sync.Mutex
	globCache   = map[string]*regexp.Regexp{}
)

// fnmatch reports whether name matches the shell-style pattern.
func fnmatch(name, pattern string) bool {
	globCacheMu.Lock()
	re, ok := globCache[pattern]
	if !ok {
		re = regexp.MustCompile(translateGlob(pattern))
		globCache[pattern] = re
	}
	globCacheMu.Unlock()
	return re.MatchString(name)
}

// translateGlob converts a shell pattern into an anchored regexp.
func translateGlob(pattern string) string {
	var b strings.Builder
	b.WriteString(`\A`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			// Find the closing bracket; '!' negates, ']' first is literal.
			j := i + 1
			if j < len(runes) && runes[j] == '!' {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				b.WriteString(`\[`)
			} else {
				class := string(runes[i+1 : j])
				class = strings.ReplaceAll(class, `\`, `\\`)
				if strings.HasPrefix(class, "!") {
					class = "^" + class[1:]
				}
				b.WriteString("[" + class + "]")
				i = j
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`\z`)
	return b.String()
}

// matchesPattern reports whether the slash-separated relative path
// matches a glob pattern.
//
// Patterns without '**' are tried against the full path and against the
// bare filename, so "*.py" matches both "main.py" and "dir/sub/main.py".
// A single '**' is split into prefix and suffix:
//
//	"dir/**"        anything at or under dir/
//	"**/*.ext"      filename match, or path with one leading segment gone
//	"dir/**/*.ext"  must start with dir/, remainder matched as above
//	"**"            everything
func matchesPattern(path, pattern string) bool {
	path = strings.Trim(path, "/")

	if !strings.Contains(pattern, "**") {
		if fnmatch(path, pattern) {
			return true
		}
		return fnmatch(baseName(path), pattern)
	}

	if strings.Count(pattern, "**") > 1 {
		// Unsupported shape; match nothing rather than guess.
		return false
	}

	if pattern == "**" {
		return true
	}

	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" {
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			return false
		}
		if suffix == "" {
			return true
		}
		rest := strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
		if rest == "" {
			return false
		}
		return fnmatch(rest, suffix) || fnmatch(baseName(rest), suffix)
	}

	// Suffix-only pattern like "**/*.ext".
	if suffix == "" {
		return true
	}
	if fnmatch(baseName(path), suffix) {
		return true
	}
	if i := strings.Index(path, "/"); i >= 0 {
		return fnmatch(path[i+1:], suffix)
	}
	return false
}

// matchesAnyPattern reports whether the path matches at least one pattern.
func matchesAnyPattern(path string, patterns []string) bool {
	for _, p := range patterns {
		if matchesPattern(path, p) {
			return true
		}
	}
	return false
}

// baseName returns the final slash-separated segment of a path.
func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
