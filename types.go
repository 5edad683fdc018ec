package vuetsc

import (
	"github.com/jward/vuetsc/internal/config"
	"github.com/jward/vuetsc/internal/scriptcache"
	"github.com/jward/vuetsc/internal/vfs"
)

// CompilerOptions are the host compiler settings.
type CompilerOptions = config.CompilerOptions

// VueCompilerOptions are the component-language options read from the
// vueCompilerOptions block of the project file.
type VueCompilerOptions = config.VueCompilerOptions

// ProjectReference points at another project file.
type ProjectReference = config.ProjectReference

// Snapshot is an immutable capture of a file's text.
type Snapshot = scriptcache.Snapshot

// FileStat, FileType and DirEntry describe entries returned by a FileSystem.
type (
	FileStat = vfs.FileStat
	FileType = vfs.FileType
	DirEntry = vfs.DirEntry
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a problem reported by the analysis engine. Line and Column
// are 1-based and refer to the original file, not to derived virtual code.
type Diagnostic struct {
	FileName string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"-"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// VirtualFile is code the engine derives from a source file, e.g. the
// script block of a component.
type VirtualFile struct {
	Name string
	Text string
}
