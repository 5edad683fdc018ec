package vuetsc

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// languageHost adapts a ProgramContext to LanguageServiceHost and feeds the
// script cache. It holds no state of its own.
type languageHost struct {
	ctx *ProgramContext
}

var _ LanguageServiceHost = (*languageHost)(nil)

func (h *languageHost) ScriptFileNames() []string {
	return h.ctx.options.RootNames
}

func (h *languageHost) CompilationSettings() *CompilerOptions {
	return h.ctx.compilerOptions()
}

func (h *languageHost) ProjectReferences() []ProjectReference {
	return h.ctx.options.ProjectReferences
}

func (h *languageHost) ScriptSnapshot(fileName string) *Snapshot {
	if e := h.ctx.scripts.Get(fileName, h.ctx.projectVersion); e != nil {
		return e.Snapshot
	}
	return nil
}

func (h *languageHost) ScriptVersion(fileName string) string {
	if e := h.ctx.scripts.Get(fileName, h.ctx.projectVersion); e != nil {
		return e.Version
	}
	return ""
}

func (h *languageHost) ProjectVersion() string {
	return strconv.Itoa(h.ctx.projectVersion)
}

func (h *languageHost) CurrentDirectory() string {
	return toSlash(h.ctx.options.Host.CurrentDirectory())
}

func (h *languageHost) CancellationToken() CancellationToken {
	if p, ok := h.ctx.options.Host.(CancellationTokenProvider); ok {
		if tok := p.CancellationToken(); tok != nil {
			return tok
		}
	}
	return neverCancelled{}
}

// The methods below satisfy scriptcache.Source.

func (h *languageHost) FileExists(fileName string) bool {
	return h.ctx.options.Host.FileExists(fileName)
}

func (h *languageHost) ReadFile(fileName string) (string, bool) {
	return h.ctx.options.Host.ReadFile(fileName)
}

func (h *languageHost) ModifiedTime(fileName string) (time.Time, bool) {
	if p, ok := h.ctx.options.Host.(ModTimeProvider); ok {
		return p.ModifiedTime(fileName)
	}
	return time.Time{}, false
}

func (h *languageHost) Version(content string) string {
	if hasher, ok := h.ctx.options.Host.(Hasher); ok {
		return hasher.CreateHash(content)
	}
	return content
}

// toSlash converts both separators regardless of the running platform.
func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
