package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesPatternPlainGlobs(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"main.py", "*.py", true},
		{"dir/sub/main.py", "*.py", true},
		{"main.pyc", "*.py", false},
		{"README.md", "README.md", true},
		{"docs/README.md", "README.md", true},
		{"readme.md", "README.md", false},
		{"a/b/c.txt", "a/b/*.txt", true},
		{"a/b/c.txt", "a/*/c.txt", true},
		{"file_v2.py", "file_v?.py", true},
		{"file_1.py", "file_[0-9].py", true},
		{"file_x.py", "file_[!0-9].py", true},
		{"file_1.py", "file_[!0-9].py", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesPattern(tt.path, tt.pattern),
			"path=%q pattern=%q", tt.path, tt.pattern)
	}
}

func TestMatchesPatternDoubleStar(t *testing.T) {
	// Prefix form: anything at or under the directory.
	assert.True(t, matchesPattern("src/main.py", "src/**"))
	assert.True(t, matchesPattern("src/a/b/c.py", "src/**"))
	assert.True(t, matchesPattern("src", "src/**"))
	assert.False(t, matchesPattern("other/main.py", "src/**"))
	assert.False(t, matchesPattern("mysrc/main.py", "src/**"))

	// Suffix form: filename match, or one leading segment stripped.
	assert.True(t, matchesPattern("main.py", "**/*.py"))
	assert.True(t, matchesPattern("deep/nested/main.py", "**/*.py"))
	assert.False(t, matchesPattern("main.rs", "**/*.py"))

	// Both sides.
	assert.True(t, matchesPattern("src/lib/util.py", "src/**/*.py"))
	assert.False(t, matchesPattern("lib/util.py", "src/**/*.py"))

	// Bare ** matches everything.
	assert.True(t, matchesPattern("anything/at/all", "**"))

	// More than one ** is unsupported and matches nothing.
	assert.False(t, matchesPattern("a/b/c/d.py", "**/b/**"))
}

func TestMatchesPatternStarCrossesSlash(t *testing.T) {
	// fnmatch semantics: a single * spans path separators.
	assert.True(t, matchesPattern("src/auth/token.py", "*auth*"))
	assert.True(t, matchesPattern("tests/test_login.py", "*login*"))
}

func TestMatchesAnyPattern(t *testing.T) {
	patterns := []string{"*.py", "*.rs"}
	assert.True(t, matchesAnyPattern("main.py", patterns))
	assert.True(t, matchesAnyPattern("lib.rs", patterns))
	assert.False(t, matchesAnyPattern("main.go", patterns))
	assert.False(t, matchesAnyPattern("main.py", nil))
}

func TestSegmentIgnored(t *testing.T) {
	patterns := []string{".git", "__pycache__", "*.pyc"}
	assert.True(t, segmentIgnored(".git/config", patterns))
	assert.True(t, segmentIgnored("pkg/__pycache__/mod.cpython-312.pyc", patterns))
	assert.True(t, segmentIgnored("pkg/mod.pyc", patterns))
	assert.False(t, segmentIgnored("pkg/mod.py", patterns))
}
