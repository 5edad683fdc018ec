package vuetsc

import (
	"github.com/jward/vuetsc/internal/scriptcache"
	"github.com/jward/vuetsc/internal/vfs"
)

// ProgramContext is the long-lived state attached to a Program. It is built
// once, by the first CreateProgram call, and mutated in place by later calls.
type ProgramContext struct {
	projectVersion int
	options        CreateProgramOptions
	vueOptions     *VueCompilerOptions

	scripts      *scriptcache.Cache
	languageHost *languageHost
	fsys         *vfs.Bridge
	service      LanguageService

	// hookIndex is the index of the last hook started for this program.
	hookIndex int
}

// ProjectVersion is bumped by one on every reuse of the context.
func (c *ProgramContext) ProjectVersion() int { return c.projectVersion }

// Options returns the options passed to the latest CreateProgram call.
func (c *ProgramContext) Options() CreateProgramOptions { return c.options }

// LanguageHost returns the adapter handed to the analysis engine.
func (c *ProgramContext) LanguageHost() LanguageServiceHost { return c.languageHost }

// VueCompilerOptions returns the options read from the project file when the
// context was created.
func (c *ProgramContext) VueCompilerOptions() *VueCompilerOptions { return c.vueOptions }

// LanguageService returns the analysis engine instance.
func (c *ProgramContext) LanguageService() LanguageService { return c.service }

// FileSystem returns the URI bridge handed to the analysis engine.
func (c *ProgramContext) FileSystem() FileSystem { return c.fsys }

// compilerOptions never returns nil.
func (c *ProgramContext) compilerOptions() *CompilerOptions {
	if c.options.Options == nil {
		return &CompilerOptions{}
	}
	return c.options.Options
}
