package vuetsc

import "time"

// CompilerHost is the host compiler's file access.
type CompilerHost interface {
	CurrentDirectory() string
	FileExists(fileName string) bool
	// ReadFile returns the file's text; ok is false when it cannot be read.
	ReadFile(fileName string) (text string, ok bool)
	// SourceFile materializes fileName in the host compiler. Called for every
	// root file once all hooks have run so that watch registration happens.
	SourceFile(fileName string) bool
}

// Hasher is implemented by hosts that can hash file content. The hash becomes
// the script version; without it the raw content is used.
type Hasher interface {
	CreateHash(content string) string
}

// ModTimeProvider is implemented by hosts that can report modification
// times. Without it every project version bump re-reads every file.
type ModTimeProvider interface {
	ModifiedTime(fileName string) (mtime time.Time, ok bool)
}

// CancellationToken is polled by the analysis engine.
type CancellationToken interface {
	IsCancellationRequested() bool
}

// CancellationTokenProvider is implemented by hosts that support
// cancellation.
type CancellationTokenProvider interface {
	CancellationToken() CancellationToken
}

type neverCancelled struct{}

func (neverCancelled) IsCancellationRequested() bool { return false }
