package config

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultExclude applies when the project sets no exclude list.
var defaultExclude = []string{"**/node_modules/**"}

// scriptExtensions are the host-language extensions always picked up by
// include patterns.
var scriptExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mts", ".cts"}

type fileSpec struct {
	files    []string
	include  []string
	exclude  []string
	hasFiles bool
}

func supportedExtensions(vueOpts *VueCompilerOptions) []string {
	return append(slices.Clone(scriptExtensions), vueOpts.ComponentExtensions()...)
}

// discoverFiles expands a files/include/exclude spec rooted at dir into a
// sorted, de-duplicated list of absolute paths.
func discoverFiles(dir string, spec fileSpec, exts []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, f := range spec.files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(dir, f)
		}
		add(filepath.Clean(f))
	}

	include := spec.include
	if len(include) == 0 && !spec.hasFiles {
		include = []string{"**/*"}
	}
	exclude := spec.exclude
	if len(exclude) == 0 {
		exclude = defaultExclude
	}

	fsys := os.DirFS(dir)
	for _, pattern := range include {
		pattern = normalizePattern(pattern)
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, err
		}
		// A bare directory include ("src") means everything below it.
		if len(matches) == 0 && !strings.ContainsAny(pattern, "*?[{") {
			matches, err = doublestar.Glob(fsys, path.Join(pattern, "**", "*"), doublestar.WithFilesOnly())
			if err != nil {
				return nil, err
			}
		}
		for _, m := range matches {
			if !hasExtension(m, exts) || excluded(m, exclude) {
				continue
			}
			add(filepath.Join(dir, filepath.FromSlash(m)))
		}
	}

	slices.Sort(out)
	return out, nil
}

func normalizePattern(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return strings.TrimSuffix(p, "/")
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".d.ts") {
		return true
	}
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		p = normalizePattern(p)
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
		// A bare directory exclude covers everything beneath it.
		if ok, _ := doublestar.Match(p+"/**", name); ok {
			return true
		}
	}
	return false
}
