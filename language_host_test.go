package vuetsc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProgram(t *testing.T, host CompilerHost) *Program {
	t.Helper()
	p, err := CreateProgram(&HookSession{}, testOptions(host, ""))
	require.NoError(t, err)
	return p
}

func reuse(t *testing.T, p *Program) {
	t.Helper()
	opts := p.Context().Options()
	opts.OldProgram = p
	_, err := CreateProgram(&HookSession{}, opts)
	require.NoError(t, err)
}

func TestLanguageHost_CurrentDirectoryUsesForwardSlashes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cwd  string
		want string
	}{
		{"/proj", "/proj"},
		{`C:\work\proj`, "C:/work/proj"},
		{`\\server\share\proj`, "//server/share/proj"},
		{`mixed\path/segments`, "mixed/path/segments"},
	}
	for _, tt := range tests {
		host := newFakeHost(testFiles())
		host.cwd = tt.cwd
		p := newTestProgram(t, host)
		assert.Equal(t, tt.want, p.Context().LanguageHost().CurrentDirectory())
		assert.Equal(t, tt.want, p.CurrentDirectory())
	}
}

func TestLanguageHost_SnapshotReusedAtSameVersion(t *testing.T) {
	t.Parallel()
	host := newFakeHost(testFiles())
	lh := newTestProgram(t, host).Context().LanguageHost()

	first := lh.ScriptSnapshot("/proj/src/main.ts")
	second := lh.ScriptSnapshot("/proj/src/main.ts")
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, host.reads)
}

func TestLanguageHost_MtimeDecidesAfterVersionBump(t *testing.T) {
	t.Parallel()
	base := newFakeHost(testFiles())
	base.mtimes["/proj/src/main.ts"] = time.Unix(100, 0)
	host := mtimeHost{base}
	p := newTestProgram(t, host)
	lh := p.Context().LanguageHost()

	first := lh.ScriptSnapshot("/proj/src/main.ts")
	require.NotNil(t, first)

	reuse(t, p)
	assert.Same(t, first, lh.ScriptSnapshot("/proj/src/main.ts"), "mtime unchanged")
	assert.Equal(t, 1, base.reads)

	base.files["/proj/src/main.ts"] = "export {}"
	base.mtimes["/proj/src/main.ts"] = time.Unix(200, 0)
	reuse(t, p)
	third := lh.ScriptSnapshot("/proj/src/main.ts")
	require.NotNil(t, third)
	assert.NotSame(t, first, third)
	assert.Equal(t, "export {}", third.Text())
	assert.Equal(t, 2, base.reads)
}

func TestLanguageHost_NoMtimeSupportRereadsOnBump(t *testing.T) {
	t.Parallel()
	host := newFakeHost(testFiles())
	p := newTestProgram(t, host)
	lh := p.Context().LanguageHost()

	lh.ScriptSnapshot("/proj/src/main.ts")
	reuse(t, p)
	lh.ScriptSnapshot("/proj/src/main.ts")
	assert.Equal(t, 2, host.reads)
}

func TestLanguageHost_MissingFileNotCached(t *testing.T) {
	t.Parallel()
	host := newFakeHost(testFiles())
	lh := newTestProgram(t, host).Context().LanguageHost()

	assert.Nil(t, lh.ScriptSnapshot("/proj/src/new.ts"))
	assert.Empty(t, lh.ScriptVersion("/proj/src/new.ts"))

	host.files["/proj/src/new.ts"] = "export const x = 1"
	snap := lh.ScriptSnapshot("/proj/src/new.ts")
	require.NotNil(t, snap)
	assert.Equal(t, "export const x = 1", snap.Text())
}

func TestLanguageHost_ScriptVersion(t *testing.T) {
	t.Parallel()

	raw := newTestProgram(t, newFakeHost(testFiles())).Context().LanguageHost()
	assert.Equal(t, "import App from './App.vue'", raw.ScriptVersion("/proj/src/main.ts"))

	hashed := newTestProgram(t, hashingHost{newFakeHost(testFiles())}).Context().LanguageHost()
	assert.Equal(t, "h:import App from './App.vue'", hashed.ScriptVersion("/proj/src/main.ts"))
}

func TestLanguageHost_Derivations(t *testing.T) {
	t.Parallel()
	host := newFakeHost(testFiles())
	opts := testOptions(host, "")
	opts.ProjectReferences = []ProjectReference{{Path: "/proj/tsconfig.node.json"}}
	p, err := CreateProgram(&HookSession{}, opts)
	require.NoError(t, err)
	lh := p.Context().LanguageHost()

	assert.Equal(t, opts.RootNames, lh.ScriptFileNames())
	assert.Same(t, opts.Options, lh.CompilationSettings())
	assert.Equal(t, opts.ProjectReferences, lh.ProjectReferences())
	assert.Equal(t, "0", lh.ProjectVersion())
	assert.False(t, lh.CancellationToken().IsCancellationRequested())
}
