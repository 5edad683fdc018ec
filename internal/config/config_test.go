package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates files (relative path -> content) under root.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestParse_CompilerAndVueOptions(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json": `{
			"compilerOptions": {"noEmit": true, "strict": true, "outDir": "dist", "jsx": "preserve"},
			"vueCompilerOptions": {"target": 3.3, "strictTemplates": true, "hooks": ["./hooks/a.risor", "named"], "extensions": ["md"]},
			"include": ["src/**/*"],
			"references": [{"path": "./tsconfig.node.json"}]
		}`,
		"src/App.vue":   "<template/>",
		"src/main.ts":   "import App from './App.vue'",
		"src/Doc.md":    "# doc",
		"src/notes.txt": "ignored",
	})

	parsed, err := Parse(filepath.Join(root, "tsconfig.json"))
	require.NoError(t, err)

	assert.True(t, parsed.Options.NoEmit)
	assert.True(t, parsed.Options.Strict)
	assert.Equal(t, "dist", parsed.Options.OutDir)
	assert.Equal(t, filepath.Join(root, "tsconfig.json"), parsed.Options.ConfigFilePath)
	assert.Equal(t, "preserve", parsed.Options.Raw["jsx"])

	assert.InDelta(t, 3.3, parsed.VueOptions.Target, 0.0001)
	assert.True(t, parsed.VueOptions.StrictTemplates)
	assert.Equal(t, []string{"./hooks/a.risor", "named"}, parsed.VueOptions.Hooks)

	assert.Equal(t, []string{
		filepath.Join(root, "src", "App.vue"),
		filepath.Join(root, "src", "Doc.md"),
		filepath.Join(root, "src", "main.ts"),
	}, parsed.FileNames)

	require.Len(t, parsed.ProjectReferences, 1)
	assert.Equal(t, filepath.Join(root, "tsconfig.node.json"), parsed.ProjectReferences[0].Path)
}

func TestParse_DefaultIncludeSkipsNodeModules(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json":             `{"compilerOptions": {"noEmit": true}}`,
		"a.ts":                      "",
		"node_modules/lib/index.ts": "",
		"components/Button.vue":     "",
	})

	parsed, err := Parse(filepath.Join(root, "tsconfig.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.ts"),
		filepath.Join(root, "components", "Button.vue"),
	}, parsed.FileNames)
}

func TestParse_FilesAndExclude(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json": `{
			"files": ["env.d.ts"],
			"include": ["src"],
			"exclude": ["src/legacy"]
		}`,
		"env.d.ts":        "",
		"src/a.ts":        "",
		"src/legacy/b.ts": "",
		"src/deep/c.vue":  "",
	})

	parsed, err := Parse(filepath.Join(root, "tsconfig.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "env.d.ts"),
		filepath.Join(root, "src", "a.ts"),
		filepath.Join(root, "src", "deep", "c.vue"),
	}, parsed.FileNames)
}

func TestParse_FilesOnlyDisablesDefaultInclude(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json": `{"files": []}`,
		"a.ts":          "",
	})

	parsed, err := Parse(filepath.Join(root, "tsconfig.json"))
	require.NoError(t, err)
	assert.Empty(t, parsed.FileNames)
}

func TestParse_ExtendsChildWins(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"base/tsconfig.base.json": `{
			"compilerOptions": {"strict": true, "noEmit": false, "outDir": "base-out"},
			"vueCompilerOptions": {"target": 2.7, "hooks": ["base-hook"]},
			"include": ["should-not-leak/**/*"]
		}`,
		"tsconfig.json": `{
			"extends": "./base/tsconfig.base",
			"compilerOptions": {"noEmit": true},
			"vueCompilerOptions": {"target": 3.4},
			"include": ["*.ts"]
		}`,
		"a.ts": "",
	})

	parsed, err := Parse(filepath.Join(root, "tsconfig.json"))
	require.NoError(t, err)

	assert.True(t, parsed.Options.Strict, "inherited")
	assert.True(t, parsed.Options.NoEmit, "overridden")
	assert.Equal(t, "base-out", parsed.Options.OutDir)
	assert.InDelta(t, 3.4, parsed.VueOptions.Target, 0.0001)
	assert.Equal(t, []string{"base-hook"}, parsed.VueOptions.Hooks)
	assert.Equal(t, []string{filepath.Join(root, "a.ts")}, parsed.FileNames)
}

func TestParse_ExtendsCycle(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.json": `{"extends": "./b.json"}`,
		"b.json": `{"extends": "./a.json"}`,
	})

	_, err := Parse(filepath.Join(root, "a.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extends chain deeper")
}

func TestParse_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Parse(filepath.Join(t.TempDir(), "tsconfig.json"))
	require.Error(t, err)
}

func TestVueOptions_EmptyPath(t *testing.T) {
	t.Parallel()
	opts, err := VueOptions("")
	require.NoError(t, err)
	assert.Equal(t, &VueCompilerOptions{}, opts)
}

func TestVueOptions_ReadsBlock(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json": `{"vueCompilerOptions": {"hooks": ["x"]}}`,
	})
	opts, err := VueOptions(filepath.Join(root, "tsconfig.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, opts.Hooks)
}

func TestComponentExtensions(t *testing.T) {
	t.Parallel()
	var nilOpts *VueCompilerOptions
	assert.Equal(t, []string{".vue"}, nilOpts.ComponentExtensions())

	opts := &VueCompilerOptions{Extensions: []string{"md", ".vue", ".html", ""}}
	assert.Equal(t, []string{".vue", ".md", ".html"}, opts.ComponentExtensions())
}

func TestFind_WalksUp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json": "{}",
		"src/deep/a.ts": "",
	})

	assert.Equal(t, filepath.Join(root, "tsconfig.json"), Find(filepath.Join(root, "src", "deep")))
}

func TestFind_PrefersTsconfigOverJsconfig(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json": "{}",
		"jsconfig.json": "{}",
	})
	assert.Equal(t, filepath.Join(root, "tsconfig.json"), Find(root))
}

func TestMergeSettings(t *testing.T) {
	t.Parallel()
	parent := map[string]any{
		"compileroptions": map[string]any{"strict": true, "outdir": "a"},
		"x":               1,
	}
	child := map[string]any{
		"compileroptions": map[string]any{"outdir": "b"},
		"y":               2,
	}
	got := mergeSettings(parent, child)
	assert.Equal(t, map[string]any{
		"compileroptions": map[string]any{"strict": true, "outdir": "b"},
		"x":               1,
		"y":               2,
	}, got)
}
