package store

import "time"

// File is the build info recorded for one file.
type File struct {
	ID           int64
	Path         string
	Version      string
	ProblemCount int
	CheckedAt    time.Time
}

// Diagnostic is a diagnostic recorded for a file.
type Diagnostic struct {
	ID      int64
	FileID  int64
	Line    int
	Column  int
	Code    string
	Message string
}

// FileResult is one file's outcome in a check run.
type FileResult struct {
	Path        string
	Version     string
	Diagnostics []Diagnostic
}
