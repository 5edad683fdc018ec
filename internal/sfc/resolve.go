package sfc

import (
	"path/filepath"
	"strings"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/vfs"
)

// resolveExtensions are tried, in order, for extensionless specifiers.
var resolveExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx"}

// jsToTS maps emitted-style extensions in specifiers back to sources.
var jsToTS = map[string][]string{
	".js":  {".ts", ".tsx", ".d.ts"},
	".jsx": {".tsx"},
	".mjs": {".mts", ".d.mts"},
	".cjs": {".cts", ".d.cts"},
}

// resolver checks relative module specifiers against the engine's
// filesystem bridge.
type resolver struct {
	fsys       vuetsc.FileSystem
	components []string
}

// isRelative reports whether spec is resolved against the importing file.
// Bare specifiers name packages and are not checked.
func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// resolve returns the file spec refers to from fromFile, or "" when nothing
// matches.
func (r *resolver) resolve(fromFile, spec string) string {
	base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(spec))

	if r.isFile(base) {
		return base
	}
	ext := filepath.Ext(base)
	if alts, ok := jsToTS[ext]; ok {
		stem := strings.TrimSuffix(base, ext)
		for _, alt := range alts {
			if r.isFile(stem + alt) {
				return stem + alt
			}
		}
	}
	for _, ext := range r.extensions() {
		if r.isFile(base + ext) {
			return base + ext
		}
	}
	return r.resolveIndex(base)
}

func (r *resolver) extensions() []string {
	return append(append([]string(nil), resolveExtensions...), r.components...)
}

// resolveIndex looks for an index file inside the directory base.
func (r *resolver) resolveIndex(base string) string {
	stat, ok := r.fsys.Stat(vfs.FileNameToURI(base))
	if !ok || stat.Type != vfs.Directory {
		return ""
	}
	present := make(map[string]bool)
	for _, e := range r.fsys.ReadDirectory(vfs.FileNameToURI(base)) {
		if e.Type == vfs.File {
			present[e.Name] = true
		}
	}
	for _, ext := range r.extensions() {
		if present["index"+ext] {
			return filepath.Join(base, "index"+ext)
		}
	}
	return ""
}

func (r *resolver) isFile(name string) bool {
	stat, ok := r.fsys.Stat(vfs.FileNameToURI(name))
	return ok && stat.Type == vfs.File
}
