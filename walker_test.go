package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, content, 0644))
}

func collectedPaths(files []FileRecord) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

func TestCollectFilesIgnoresAndSorts(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "b.txt", []byte("b\n"))
	writeTestFile(t, root, "A.txt", []byte("a\n"))
	writeTestFile(t, root, "src/main.py", []byte("x = 1\n"))
	writeTestFile(t, root, ".git/config", []byte("nope\n"))
	writeTestFile(t, root, "__pycache__/mod.pyc", []byte("nope\n"))

	cfg := defaultConfig()
	files, err := collectFiles(root, cfg)
	require.NoError(t, err)

	// Directories are visited before files, names case-insensitively.
	assert.Equal(t, []string{"src/main.py", "A.txt", "b.txt"}, collectedPaths(files))
}

func TestCollectFilesIncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.py", []byte("x = 1\n"))
	writeTestFile(t, root, "notes.txt", []byte("n\n"))
	writeTestFile(t, root, "lib/util.py", []byte("y = 2\n"))

	cfg := defaultConfig()
	cfg.IncludePatterns = []string{"*.py"}
	files, err := collectFiles(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"lib/util.py", "main.py"}, collectedPaths(files))
}

func TestCollectFilesSkipsBinary(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "data.bin", []byte{0x89, 0x50, 0x00, 0x47})
	writeTestFile(t, root, "text.txt", []byte("fine\n"))

	files, err := collectFiles(root, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"text.txt"}, collectedPaths(files))
}

func TestCollectFilesSingleFileRoot(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "single.py", []byte("z = 3\n"))

	files, err := collectFiles(filepath.Join(root, "single.py"), defaultConfig())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "single.py", files[0].Path)
	assert.Equal(t, "z = 3\n", files[0].Content)
	assert.NotZero(t, files[0].ModTime)
}

func TestCollectFilesMissingRoot(t *testing.T) {
	_, err := collectFiles(filepath.Join(t.TempDir(), "absent"), defaultConfig())
	assert.Error(t, err)
}

func TestCollectFilesRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, ".gitignore", []byte("generated/\n*.log\n"))
	writeTestFile(t, root, "generated/out.txt", []byte("g\n"))
	writeTestFile(t, root, "app.log", []byte("l\n"))
	writeTestFile(t, root, "keep.txt", []byte("k\n"))

	cfg := defaultConfig()
	files, err := collectFiles(root, cfg)
	require.NoError(t, err)
	paths := collectedPaths(files)
	assert.Contains(t, paths, "keep.txt")
	assert.NotContains(t, paths, "generated/out.txt")
	assert.NotContains(t, paths, "app.log")

	cfg.RespectGitignore = false
	files, err = collectFiles(root, cfg)
	require.NoError(t, err)
	assert.Contains(t, collectedPaths(files), "app.log")
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "plain", decodeText([]byte("plain")))

	// Invalid UTF-8 falls back to latin-1: 0xE9 is é.
	got := decodeText([]byte{'c', 'a', 'f', 0xE9})
	assert.Equal(t, "café", got)
}
