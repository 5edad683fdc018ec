package vuetsc

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jward/vuetsc/internal/runtime"
)

// Hook is an extension run against the live program before compilation
// proceeds.
type Hook interface {
	Run(ctx context.Context, p *Program) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, p *Program) error

// Run calls f.
func (f HookFunc) Run(ctx context.Context, p *Program) error {
	return f(ctx, p)
}

var (
	hooksMu sync.RWMutex
	hooks   = make(map[string]Hook)
)

// RegisterHook makes a hook available under name, so that
// vueCompilerOptions.hooks can refer to it. Registered names take precedence
// over script paths. It panics if name is registered twice or h is nil.
func RegisterHook(name string, h Hook) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h == nil {
		panic("vuetsc: RegisterHook hook is nil")
	}
	if _, dup := hooks[name]; dup {
		panic("vuetsc: RegisterHook called twice for hook " + name)
	}
	hooks[name] = h
}

// RegisteredHooks returns the sorted names of registered hooks.
func RegisteredHooks() []string {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupHook(name string) (Hook, bool) {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	h, ok := hooks[name]
	return h, ok
}

// scriptHook runs a Risor script with the program exposed through the
// runtime's hook builtins.
type scriptHook struct {
	path string
}

func (h *scriptHook) Run(ctx context.Context, p *Program) error {
	rt := runtime.NewRuntime(filepath.Dir(h.path), runtime.WithLogger(Logger()))
	return rt.RunHook(ctx, h.path, p)
}

// resolveHook maps a hook reference to a Hook. Script paths are relative to
// the project file's directory, or the host's current directory when there
// is no project file.
func (c *ProgramContext) resolveHook(ref string) (Hook, error) {
	if h, ok := lookupHook(ref); ok {
		return h, nil
	}
	if !runtime.IsScript(ref) {
		return nil, fmt.Errorf("no hook registered as %q", ref)
	}
	path := ref
	if !filepath.IsAbs(path) {
		base := c.options.Host.CurrentDirectory()
		if cfg := c.compilerOptions().ConfigFilePath; cfg != "" {
			base = filepath.Dir(cfg)
		}
		path = filepath.Join(base, path)
	}
	return &scriptHook{path: path}, nil
}

// HookSession is the single hook-chain slot shared by a caller's
// CreateProgram calls. While a chain is in progress the session holds the
// program being processed, and CreateProgram resumes that program instead of
// creating or bumping one. The caller clears the slot with Reset once
// CreateProgram has returned something other than a *HookPendingError.
//
// The zero value is ready to use; hooks then run under
// context.Background().
type HookSession struct {
	ctx context.Context

	mu      sync.Mutex
	program *Program
	pending *inflightHook
}

type inflightHook struct {
	index int
	ref   string
	done  chan struct{}
	err   error
}

// NewHookSession returns a session whose hooks run under ctx.
func NewHookSession(ctx context.Context) *HookSession {
	return &HookSession{ctx: ctx}
}

// Active reports whether a hook chain is in progress.
func (s *HookSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program != nil
}

// Program returns the program whose hook chain is in progress, or nil.
func (s *HookSession) Program() *Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// Wait blocks until the in-flight hook settles or ctx is done. It returns
// nil immediately when no hook is in flight. The hook's own error is not
// returned here; the next CreateProgram call reports it.
func (s *HookSession) Wait(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()
	if pending == nil {
		return nil
	}
	select {
	case <-pending.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset clears the slot. It must not be called while a hook is in flight.
func (s *HookSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = nil
	s.pending = nil
}

func (s *HookSession) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// inFlight returns a *HookPendingError while the session's hook has not
// settled.
func (s *HookSession) inFlight() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	select {
	case <-s.pending.done:
		return nil
	default:
		return &HookPendingError{Index: s.pending.index, Ref: s.pending.ref}
	}
}

// advance settles the previous hook of p and starts the next one. It returns
// nil once every hook has run.
func (s *HookSession) advance(p *Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil && s.program == p {
		select {
		case <-s.pending.done:
		default:
			return &HookPendingError{Index: s.pending.index, Ref: s.pending.ref}
		}
		if s.pending.err != nil {
			return &HookError{Index: s.pending.index, Ref: s.pending.ref, Err: s.pending.err}
		}
	}

	refs := p.ctx.vueOptions.Hooks
	next := p.ctx.hookIndex + 1
	if next >= len(refs) {
		return nil
	}
	ref := refs[next]
	h, err := p.ctx.resolveHook(ref)
	if err != nil {
		return &HookError{Index: next, Ref: ref, Err: err}
	}

	p.ctx.hookIndex = next
	run := &inflightHook{index: next, ref: ref, done: make(chan struct{})}
	s.program = p
	s.pending = run

	Logger().Debug("starting hook", "index", next, "hook", ref)
	go func(ctx context.Context) {
		defer close(run.done)
		defer func() {
			if r := recover(); r != nil {
				run.err = fmt.Errorf("panic: %v", r)
			}
		}()
		run.err = h.Run(ctx, p)
		Logger().Debug("hook settled", "index", run.index, "hook", run.ref, "err", run.err)
	}(s.context())

	return &HookPendingError{Index: next, Ref: ref}
}
