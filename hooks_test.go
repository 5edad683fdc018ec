package vuetsc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hookRecorder registers hooks under names unique to the test and records
// the order they run in.
type hookRecorder struct {
	mu       sync.Mutex
	ran      []int
	versions []int
}

func (r *hookRecorder) register(t *testing.T, n int) []string {
	t.Helper()
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("%s/hook-%d", t.Name(), i)
		RegisterHook(names[i], HookFunc(func(ctx context.Context, p *Program) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.ran = append(r.ran, i)
			r.versions = append(r.versions, p.ProjectVersion())
			return nil
		}))
	}
	return names
}

func (r *hookRecorder) order() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.ran...)
}

// drive calls CreateProgram until it stops returning the pending signal,
// waiting on the session in between. Returns the number of pending results.
func drive(t *testing.T, session *HookSession, opts CreateProgramOptions) (*Program, int, error) {
	t.Helper()
	pending := 0
	for {
		p, err := CreateProgram(session, opts)
		if !IsHookPending(err) {
			return p, pending, err
		}
		pending++
		require.NoError(t, session.Wait(context.Background()))
	}
}

func TestHooks_RunInOrderOncePerProgram(t *testing.T) {
	t.Parallel()
	var rec hookRecorder
	cfg := writeProject(t, rec.register(t, 3)...)
	host := newFakeHost(testFiles())
	opts := testOptions(host, cfg)
	factory := opts.Engine.(*fakeFactory)
	session := &HookSession{}

	p, pending, err := drive(t, session, opts)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, 3, pending)
	assert.Equal(t, []int{0, 1, 2}, rec.order())
	assert.Equal(t, []int{0, 0, 0}, rec.versions, "resume does not bump the version")
	assert.Equal(t, 0, p.ProjectVersion())
	assert.Equal(t, 1, factory.created)
	assert.Equal(t, opts.RootNames, host.sourceFiles, "roots materialized only after the last hook")
	assert.True(t, session.Active(), "slot is cleared by the caller")

	session.Reset()
	opts.OldProgram = p
	again, pending, err := drive(t, session, opts)
	require.NoError(t, err)
	assert.Same(t, p, again)
	assert.Zero(t, pending, "hooks never rerun for the same program")
	assert.Equal(t, 1, again.ProjectVersion())
	assert.Len(t, rec.order(), 3)
}

func TestHooks_PendingUntilSettled(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	started := 0
	var mu sync.Mutex
	name := t.Name() + "/blocking"
	RegisterHook(name, HookFunc(func(ctx context.Context, p *Program) error {
		mu.Lock()
		started++
		mu.Unlock()
		<-release
		return nil
	}))

	cfg := writeProject(t, name)
	host := newFakeHost(testFiles())
	opts := testOptions(host, cfg)
	session := &HookSession{}

	_, err := CreateProgram(session, opts)
	var pending *HookPendingError
	require.ErrorAs(t, err, &pending)
	assert.Equal(t, 0, pending.Index)
	assert.Equal(t, name, pending.Ref)
	assert.ErrorIs(t, err, ErrHookPending)

	_, err = CreateProgram(session, opts)
	require.ErrorAs(t, err, &pending, "still in flight")
	assert.Equal(t, 0, pending.Index)

	close(release)
	require.NoError(t, session.Wait(context.Background()))

	p, err := CreateProgram(session, opts)
	require.NoError(t, err)
	assert.Same(t, session.Program(), p)
	assert.Equal(t, 0, p.ProjectVersion())

	mu.Lock()
	assert.Equal(t, 1, started)
	mu.Unlock()
	assert.Equal(t, opts.RootNames, host.sourceFiles)
}

func TestHooks_CallWhileInFlightLeavesContextAlone(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	started := make(chan struct{})
	var swapped atomic.Bool
	name := t.Name() + "/reader"
	RegisterHook(name, HookFunc(func(ctx context.Context, p *Program) error {
		initial := p.RootFileNames()
		close(started)
		for {
			if !slices.Equal(p.RootFileNames(), initial) {
				swapped.Store(true)
			}
			select {
			case <-release:
				return nil
			case <-time.After(time.Millisecond):
			}
		}
	}))

	cfg := writeProject(t, name)
	opts := testOptions(newFakeHost(testFiles()), cfg)
	session := &HookSession{}

	_, err := CreateProgram(session, opts)
	require.True(t, IsHookPending(err))
	<-started

	moved := opts
	moved.RootNames = []string{"/proj/src/main.ts"}
	for range 5 {
		_, err = CreateProgram(session, moved)
		require.True(t, IsHookPending(err), "hook still in flight")
	}
	close(release)
	require.NoError(t, session.Wait(context.Background()))
	assert.False(t, swapped.Load(), "roots changed under the running hook")

	p, err := CreateProgram(session, moved)
	require.NoError(t, err)
	assert.Equal(t, moved.RootNames, p.RootFileNames())
}

func TestHooks_ResumeReplacesOptions(t *testing.T) {
	t.Parallel()
	var rec hookRecorder
	cfg := writeProject(t, rec.register(t, 1)...)
	opts := testOptions(newFakeHost(testFiles()), cfg)
	session := &HookSession{}

	_, err := CreateProgram(session, opts)
	require.True(t, IsHookPending(err))
	require.NoError(t, session.Wait(context.Background()))

	opts.RootNames = []string{"/proj/src/main.ts"}
	p, err := CreateProgram(session, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/src/main.ts"}, p.RootFileNames())
	assert.Equal(t, 0, p.ProjectVersion())
}

func TestHooks_FailureSurfacesAsHookError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	name := t.Name() + "/failing"
	RegisterHook(name, HookFunc(func(ctx context.Context, p *Program) error {
		return boom
	}))

	cfg := writeProject(t, name)
	opts := testOptions(newFakeHost(testFiles()), cfg)
	session := &HookSession{}

	_, pending, err := drive(t, session, opts)
	assert.Equal(t, 1, pending)
	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, 0, hookErr.Index)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsHookPending(err))
}

func TestHooks_PanicSurfacesAsHookError(t *testing.T) {
	t.Parallel()
	name := t.Name() + "/panicking"
	RegisterHook(name, HookFunc(func(ctx context.Context, p *Program) error {
		panic("bad hook")
	}))

	cfg := writeProject(t, name)
	_, _, err := drive(t, &HookSession{}, testOptions(newFakeHost(testFiles()), cfg))
	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Contains(t, hookErr.Error(), "bad hook")
}

func TestHooks_UnknownReference(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, "not-registered-anywhere")
	host := newFakeHost(testFiles())

	_, err := CreateProgram(&HookSession{}, testOptions(host, cfg))
	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "not-registered-anywhere", hookErr.Ref)
	assert.Empty(t, host.sourceFiles)
}

func TestHooks_RisorScriptRelativeToConfig(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, "./hooks/check.risor")
	dir := filepath.Dir(cfg)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hooks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hooks", "check.risor"), []byte(`
assert(project_version() == 0, "fresh program")
assert(len(root_files()) == 2, "two roots")
assert(read_snapshot("/proj/src/main.ts") == "import App from './App.vue'", "snapshot")
assert(current_directory() == "/proj", "cwd")
`), 0o644))

	p, pending, err := drive(t, &HookSession{}, testOptions(newFakeHost(testFiles()), cfg))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, pending)
}

func TestHooks_RisorScriptFailure(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, "fail.risor")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(cfg), "fail.risor"), []byte(`
assert(false, "rejected by hook")
`), 0o644))

	_, _, err := drive(t, &HookSession{}, testOptions(newFakeHost(testFiles()), cfg))
	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Contains(t, err.Error(), "rejected by hook")
}

func TestHooks_ScriptPathWithoutConfigUsesHostDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "h.risor"), []byte(`x := 1`), 0o644))

	host := newFakeHost(testFiles())
	host.cwd = dir
	p := newTestProgram(t, host)

	h, err := p.Context().resolveHook("h.risor")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "h.risor"), h.(*scriptHook).path)
}

func TestHooks_RegisteredNameWinsOverScriptPath(t *testing.T) {
	t.Parallel()
	name := t.Name() + ".risor"
	ran := false
	RegisterHook(name, HookFunc(func(ctx context.Context, p *Program) error {
		ran = true
		return nil
	}))

	cfg := writeProject(t, name)
	_, _, err := drive(t, &HookSession{}, testOptions(newFakeHost(testFiles()), cfg))
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRegisterHook_Panics(t *testing.T) {
	t.Parallel()
	name := t.Name() + "/dup"
	RegisterHook(name, HookFunc(func(context.Context, *Program) error { return nil }))

	assert.Panics(t, func() {
		RegisterHook(name, HookFunc(func(context.Context, *Program) error { return nil }))
	})
	assert.Panics(t, func() { RegisterHook(t.Name()+"/nil", nil) })
	assert.Contains(t, RegisteredHooks(), name)
}

func TestHookSession_WaitHonorsContext(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	defer close(release)
	name := t.Name() + "/slow"
	RegisterHook(name, HookFunc(func(ctx context.Context, p *Program) error {
		<-release
		return nil
	}))

	cfg := writeProject(t, name)
	session := &HookSession{}
	_, err := CreateProgram(session, testOptions(newFakeHost(testFiles()), cfg))
	require.True(t, IsHookPending(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, session.Wait(ctx), context.Canceled)
	assert.True(t, session.Active())
}

func TestHookSession_WaitWithoutHook(t *testing.T) {
	t.Parallel()
	var s HookSession
	assert.NoError(t, s.Wait(context.Background()))
	assert.False(t, s.Active())
	assert.Nil(t, s.Program())
}
