package vuetsc

import "context"

// LanguageServiceHost is what the analysis engine sees of the program: the
// current file list, settings and snapshots. Every call reads the latest
// state of the owning ProgramContext.
type LanguageServiceHost interface {
	ScriptFileNames() []string
	CompilationSettings() *CompilerOptions
	ProjectReferences() []ProjectReference
	// ScriptSnapshot returns nil when the file does not exist or cannot be
	// read.
	ScriptSnapshot(fileName string) *Snapshot
	ScriptVersion(fileName string) string
	ProjectVersion() string
	// CurrentDirectory always uses forward slashes.
	CurrentDirectory() string
	CancellationToken() CancellationToken
}

// FileSystem answers URI-addressed queries for the engine. Failures are
// reported as absent values, never as errors.
type FileSystem interface {
	Stat(uri string) (*FileStat, bool)
	ReadFile(uri string) (string, bool)
	ReadDirectory(uri string) []DirEntry
}

// LanguageServiceFactory constructs the analysis engine for a new program
// context.
type LanguageServiceFactory interface {
	NewLanguageService(host LanguageServiceHost, fsys FileSystem, vueOptions *VueCompilerOptions) (LanguageService, error)
}

// LanguageService is one analysis engine instance.
type LanguageService interface {
	Program() EngineProgram
}

// EngineProgram is the engine's view of the program at the current project
// version.
type EngineProgram interface {
	RootFileNames() []string
	Diagnostics(ctx context.Context) ([]Diagnostic, error)
}

// VirtualFileProvider is implemented by language services that can expose
// the virtual code derived from a file.
type VirtualFileProvider interface {
	VirtualFiles(fileName string) ([]VirtualFile, error)
}
