package vuetsc

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/jward/vuetsc/internal/config"
	"github.com/jward/vuetsc/internal/scriptcache"
	"github.com/jward/vuetsc/internal/vfs"
)

const (
	msgJSEmit        = "js emit is not supported"
	msgNoEmitOnError = "noEmitOnError is not supported"
	msgDiagnostics   = "--extendedDiagnostics / --generateTrace is not supported, please write the virtual files with `vuetsc dump` and run `--extendedDiagnostics` / `--generateTrace` through the host compiler instead"
	msgNoHost        = "compiler host is required"
	msgNoSession     = "hook session is required"
	msgNoEngine      = "analysis engine is required"
)

// CreateProgramOptions is the input to CreateProgram. It is stored on the
// program's context and replaced wholesale by every call.
type CreateProgramOptions struct {
	RootNames         []string
	Options           *CompilerOptions
	Host              CompilerHost
	ProjectReferences []ProjectReference

	// OldProgram is the program returned by the previous call. When set its
	// context is reused and its project version bumped.
	OldProgram *Program

	// Engine builds the language service for a new context. Only consulted
	// when no context is reused.
	Engine LanguageServiceFactory

	// FileSystem backs the URI bridge handed to the engine. Defaults to the
	// OS filesystem rooted at "/".
	FileSystem billy.Filesystem
}

// Program is the host program augmented with its ProgramContext.
type Program struct {
	ctx *ProgramContext
}

// Context returns the program's context.
func (p *Program) Context() *ProgramContext { return p.ctx }

// Engine returns the analysis engine's program at the current project
// version.
func (p *Program) Engine() EngineProgram { return p.ctx.service.Program() }

// Diagnostics reports the engine's diagnostics for all root files.
func (p *Program) Diagnostics(ctx context.Context) ([]Diagnostic, error) {
	return p.Engine().Diagnostics(ctx)
}

// VirtualFiles returns the virtual code the engine derives from fileName.
func (p *Program) VirtualFiles(fileName string) ([]VirtualFile, error) {
	provider, ok := p.ctx.service.(VirtualFileProvider)
	if !ok {
		return nil, fmt.Errorf("vuetsc: language service does not expose virtual files")
	}
	return provider.VirtualFiles(fileName)
}

// RootFileNames returns the root files of the latest call.
func (p *Program) RootFileNames() []string { return p.ctx.options.RootNames }

// ProjectVersion returns the context's project version.
func (p *Program) ProjectVersion() int { return p.ctx.projectVersion }

// ConfigFilePath returns the project file the options came from, or "".
func (p *Program) ConfigFilePath() string { return p.ctx.compilerOptions().ConfigFilePath }

// CurrentDirectory returns the host's working directory with forward
// slashes.
func (p *Program) CurrentDirectory() string { return p.ctx.languageHost.CurrentDirectory() }

// ReadSnapshot returns the cached text of fileName at the current project
// version.
func (p *Program) ReadSnapshot(fileName string) (string, bool) {
	snap := p.ctx.languageHost.ScriptSnapshot(fileName)
	if snap == nil {
		return "", false
	}
	return snap.Text(), true
}

// CreateProgram creates or reuses a program for opts.
//
// If session holds a hook chain in progress, its program is resumed and only
// its options are replaced. Otherwise opts.OldProgram is reused with its
// project version bumped by one, or a new context is built. If the program
// has hooks left to run, the next one is started and a *HookPendingError is
// returned; the caller waits on session and calls again. Once all hooks
// have run every root file is passed to Host.SourceFile and the program is
// returned.
//
// Unsupported option combinations and a missing host or session are
// reported as *ConfigError before any file is touched.
func CreateProgram(session *HookSession, opts CreateProgramOptions) (*Program, error) {
	if err := validate(session, opts); err != nil {
		Logger().Error(err.Message)
		return nil, err
	}

	var p *Program
	switch {
	case session.Active():
		// The running hook reads the context; leave it alone until it settles.
		if err := session.inFlight(); err != nil {
			return nil, err
		}
		p = session.Program()
		p.ctx.options = opts
	case opts.OldProgram != nil:
		p = opts.OldProgram
		p.ctx.options = opts
		p.ctx.projectVersion++
	default:
		var err error
		p, err = newProgram(opts)
		if err != nil {
			return nil, err
		}
	}

	if err := session.advance(p); err != nil {
		return nil, err
	}

	for _, name := range opts.RootNames {
		opts.Host.SourceFile(name)
	}
	return p, nil
}

func validate(session *HookSession, opts CreateProgramOptions) *ConfigError {
	o := opts.Options
	if o == nil {
		o = &CompilerOptions{}
	}
	switch {
	case !o.NoEmit && !o.EmitDeclarationOnly:
		return &ConfigError{Message: msgJSEmit}
	case !o.NoEmit && o.NoEmitOnError:
		return &ConfigError{Message: msgNoEmitOnError}
	case o.ExtendedDiagnostics || o.GenerateTrace != "":
		return &ConfigError{Message: msgDiagnostics}
	case opts.Host == nil:
		return &ConfigError{Message: msgNoHost}
	case session == nil:
		return &ConfigError{Message: msgNoSession}
	}
	return nil
}

// newProgram builds a fresh context at project version 0.
func newProgram(opts CreateProgramOptions) (*Program, error) {
	if opts.Engine == nil {
		err := &ConfigError{Message: msgNoEngine}
		Logger().Error(err.Message)
		return nil, err
	}

	ctx := &ProgramContext{
		options:   opts,
		hookIndex: -1,
	}
	ctx.languageHost = &languageHost{ctx: ctx}
	ctx.scripts = scriptcache.New(ctx.languageHost)

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = osfs.New("/")
	}
	ctx.fsys = vfs.New(fsys)

	vueOpts, err := config.VueOptions(ctx.compilerOptions().ConfigFilePath)
	if err != nil {
		return nil, fmt.Errorf("vuetsc: read vueCompilerOptions: %w", err)
	}
	ctx.vueOptions = vueOpts

	service, err := opts.Engine.NewLanguageService(ctx.languageHost, ctx.fsys, vueOpts)
	if err != nil {
		return nil, fmt.Errorf("vuetsc: create language service: %w", err)
	}
	ctx.service = service

	Logger().Debug("program context created", "roots", len(opts.RootNames), "hooks", len(vueOpts.Hooks))
	return &Program{ctx: ctx}, nil
}
