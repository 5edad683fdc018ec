// Package scriptcache holds the most recent content snapshot of each source
// file handed to the analysis engine, together with the project version and
// modification time it was computed at.
//
// An entry is reused when either its recorded project version matches the
// current one, or the file's modification time has not moved since the entry
// was built. Otherwise the file is re-read through the Source. Entries are
// never evicted; the set of files a project touches is bounded.
package scriptcache

import (
	"sync"
	"time"
)

// Source is the file access the cache needs from the host compiler.
type Source interface {
	FileExists(fileName string) bool
	ReadFile(fileName string) (string, bool)
	// ModifiedTime reports the file's modification time. ok is false when
	// the host cannot tell.
	ModifiedTime(fileName string) (mtime time.Time, ok bool)
	// Version derives the script version string from file content.
	Version(content string) string
}

// Snapshot is an immutable capture of a file's text.
type Snapshot struct {
	text string
}

// NewSnapshot captures text.
func NewSnapshot(text string) *Snapshot {
	return &Snapshot{text: text}
}

// Text returns the full captured text.
func (s *Snapshot) Text() string { return s.text }

// Stamp records when an entry was computed.
type Stamp struct {
	ProjectVersion int
	ModifiedTime   time.Time
	HasModTime     bool
}

// Fresh reports whether an entry stamped with s can be served at
// projectVersion, given the file's current modification time (ok=false when
// unknown). A matching version short-circuits before the mtime is consulted.
func (s Stamp) Fresh(projectVersion int, mtime time.Time, ok bool) bool {
	if s.ProjectVersion == projectVersion {
		return true
	}
	return s.HasModTime && ok && s.ModifiedTime.Equal(mtime)
}

// Entry is one cached file.
type Entry struct {
	Stamp
	Snapshot *Snapshot
	// Version is the content hash when the host supports hashing, otherwise
	// the raw content.
	Version string
}

// Cache maps file names to their latest Entry.
type Cache struct {
	src Source

	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates an empty Cache reading through src.
func New(src Source) *Cache {
	return &Cache{
		src:     src,
		entries: make(map[string]*Entry),
	}
}

// Get returns the entry for fileName at projectVersion, recomputing it if it
// is stale. Returns nil when the file does not exist or cannot be read; that
// outcome is not cached, so the next call checks again.
func (c *Cache) Get(fileName string, projectVersion int) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.entries[fileName]
	if existing != nil && existing.ProjectVersion == projectVersion {
		return existing
	}

	mtime, ok := c.src.ModifiedTime(fileName)
	if existing != nil && existing.Fresh(projectVersion, mtime, ok) {
		return existing
	}

	if !c.src.FileExists(fileName) {
		return nil
	}
	content, readOK := c.src.ReadFile(fileName)
	if !readOK {
		return nil
	}

	e := &Entry{
		Stamp: Stamp{
			ProjectVersion: projectVersion,
			ModifiedTime:   mtime,
			HasModTime:     ok,
		},
		Snapshot: NewSnapshot(content),
		Version:  c.src.Version(content),
	}
	c.entries[fileName] = e
	return e
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
