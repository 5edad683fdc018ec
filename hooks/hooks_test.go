package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/sfc"
)

// runProject writes files and a project file naming hooks into a temp dir,
// then drives a program over them.
func runProject(t *testing.T, hooks []string, files map[string]string) (*vuetsc.Program, error) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := json.Marshal(map[string]any{
		"compilerOptions":    map[string]any{"noEmit": true},
		"vueCompilerOptions": map[string]any{"hooks": hooks},
	})
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, "tsconfig.json")
	require.NoError(t, os.WriteFile(cfgPath, cfg, 0o644))

	var roots []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		roots = append(roots, path)
	}

	fs := osfs.New("/")
	return vuetsc.Run(context.Background(), vuetsc.NewHookSession(context.Background()), vuetsc.CreateProgramOptions{
		RootNames:  roots,
		Options:    &vuetsc.CompilerOptions{NoEmit: true, ConfigFilePath: cfgPath},
		Host:       vuetsc.NewSystemHost(fs, dir),
		Engine:     sfc.NewFactory(),
		FileSystem: fs,
	})
}

// captureLog routes the package logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := vuetsc.Logger()
	vuetsc.SetLogger(log.NewWithOptions(&buf, log.Options{Prefix: "test"}))
	t.Cleanup(func() { vuetsc.SetLogger(prev) })
	return &buf
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"builtin:component-blocks",
		"builtin:require-roots",
		"builtin:summary",
	}, Names())

	registered := vuetsc.RegisteredHooks()
	for _, name := range Names() {
		assert.Contains(t, registered, name)
	}
}

func TestSummary_LogsCounts(t *testing.T) {
	buf := captureLog(t)

	_, err := runProject(t, []string{"builtin:summary"}, map[string]string{
		"src/App.vue": "<template><div/></template>\n",
		"src/main.ts": "export {}\n",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "project version 0: 2 files, 1 components")
}

func TestRequireRoots(t *testing.T) {
	_, err := runProject(t, []string{"builtin:require-roots"}, map[string]string{
		"src/main.ts": "export {}\n",
	})
	require.NoError(t, err)

	_, err = runProject(t, []string{"builtin:require-roots"}, nil)
	require.Error(t, err)
	var hookErr *vuetsc.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "builtin:require-roots", hookErr.Ref)
	assert.Contains(t, err.Error(), "no root files")
}

func TestComponentBlocks(t *testing.T) {
	_, err := runProject(t, []string{"builtin:component-blocks"}, map[string]string{
		"src/App.vue": "<script setup>\nconst a = 1\n</script>\n",
	})
	require.NoError(t, err)

	_, err = runProject(t, []string{"builtin:component-blocks"}, map[string]string{
		"src/Styles.vue": "<style>p { color: red }</style>\n",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no template or script block")
}

func TestChain_RunsInOrder(t *testing.T) {
	buf := captureLog(t)

	_, err := runProject(t, []string{"builtin:require-roots", "builtin:component-blocks", "builtin:summary"}, map[string]string{
		"src/App.vue": "<template><p/></template>\n",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 files, 1 components")
}
