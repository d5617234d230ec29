package main

// FileRecord holds a single file collected for serialization.
type FileRecord struct {
	// Path is the slash-normalized path relative to the input root.
	// It is the unique key for the file within one run.
	Path string

	// Content is the decoded text of the file.
	Content string

	// ModTime and ChangeTime are unix timestamps used by mtime/ctime
	// sorting (the debug lens). Zero for pseudo-files (web pages, meta).
	ModTime    int64
	ChangeTime int64

	// Truncated marks content already shortened by the budget
	// allocator, so the serializer must not truncate it again.
	Truncated bool
}

// LineCount returns the number of lines in the record's content.
func (f *FileRecord) LineCount() int {
	return countLines(f.Content)
}

// Summary holds aggregated information about one serialization run.
type Summary struct {
	TotalFiles  int
	TotalBytes  int64
	TotalTokens int
}
