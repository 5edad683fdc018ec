// Package vfs answers stat, read and list queries addressed by URI on behalf
// of the analysis engine. Only file:// URIs are handled; every other scheme,
// and every filesystem failure, comes back as "does not exist".
package vfs

import (
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// FileType classifies a filesystem entry.
type FileType int

const (
	Unknown FileType = iota
	File
	Directory
	SymbolicLink
)

func (t FileType) String() string {
	switch t {
	case File:
		return "file"
	case Directory:
		return "directory"
	case SymbolicLink:
		return "symlink"
	default:
		return "unknown"
	}
}

// FileStat is the result of Stat.
type FileStat struct {
	Type FileType
	// Ctime falls back to the modification time; billy does not expose
	// creation times.
	Ctime time.Time
	Mtime time.Time
	Size  int64
}

// DirEntry is one child returned by ReadDirectory.
type DirEntry struct {
	Name string
	Type FileType
}

const fileScheme = "file"

// Bridge translates URIs to paths on a billy filesystem.
type Bridge struct {
	fs billy.Filesystem
}

// New creates a Bridge over fsys. Paths handed to fsys are slash-separated
// absolute paths, so fsys is usually rooted at "/".
func New(fsys billy.Filesystem) *Bridge {
	return &Bridge{fs: fsys}
}

// URIToFileName converts a file:// URI to a slash-separated path. ok is false
// for any other scheme or a malformed URI.
func URIToFileName(uri string) (name string, ok bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != fileScheme {
		return "", false
	}
	p := u.Path
	// file:///C:/dir -> C:/dir
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if p == "" {
		return "", false
	}
	return p, true
}

// FileNameToURI converts a host path to a file:// URI.
func FileNameToURI(fileName string) string {
	p := filepath.ToSlash(fileName)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: fileScheme, Path: p}
	return u.String()
}

// Stat returns the entry's kind, times and size. ok is false when the URI is
// not a file URI or the path cannot be statted.
func (b *Bridge) Stat(uri string) (stat *FileStat, ok bool) {
	name, ok := URIToFileName(uri)
	if !ok {
		return nil, false
	}
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, false
	}
	return &FileStat{
		Type:  typeOf(info.Mode()),
		Ctime: info.ModTime(),
		Mtime: info.ModTime(),
		Size:  info.Size(),
	}, true
}

// ReadFile returns the decoded text of the file at uri.
func (b *Bridge) ReadFile(uri string) (string, bool) {
	name, ok := URIToFileName(uri)
	if !ok {
		return "", false
	}
	data, err := util.ReadFile(b.fs, name)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ReadDirectory lists the direct children of the directory at uri. Returns an
// empty list on failure or for non-file URIs.
func (b *Bridge) ReadDirectory(uri string) []DirEntry {
	name, ok := URIToFileName(uri)
	if !ok {
		return []DirEntry{}
	}
	infos, err := b.fs.ReadDir(name)
	if err != nil {
		return []DirEntry{}
	}
	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, DirEntry{
			Name: path.Base(info.Name()),
			Type: typeOf(info.Mode()),
		})
	}
	return entries
}

func typeOf(mode os.FileMode) FileType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return SymbolicLink
	case mode.IsDir():
		return Directory
	case mode.IsRegular():
		return File
	default:
		return Unknown
	}
}
