// Package hooks registers the built-in Risor hooks. Import it for its side
// effect and reference the hooks from vueCompilerOptions.hooks by name:
//
//	"vueCompilerOptions": { "hooks": ["builtin:require-roots", "builtin:summary"] }
package hooks

import (
	"context"
	"embed"
	"io/fs"
	"strings"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/runtime"
)

// Prefix is prepended to every built-in hook name.
const Prefix = "builtin:"

//go:embed *.risor
var FS embed.FS

var names []string

func init() {
	files, err := fs.Glob(FS, "*"+runtime.ScriptExtension)
	if err != nil {
		panic(err)
	}
	for _, file := range files {
		name := Prefix + strings.TrimSuffix(file, runtime.ScriptExtension)
		vuetsc.RegisterHook(name, embeddedHook(file))
		names = append(names, name)
	}
}

// Names returns the registered built-in hook names, sorted.
func Names() []string {
	return append([]string(nil), names...)
}

func embeddedHook(file string) vuetsc.HookFunc {
	return func(ctx context.Context, p *vuetsc.Program) error {
		rt := runtime.NewRuntime("", runtime.WithRuntimeFS(FS), runtime.WithLogger(vuetsc.Logger()))
		return rt.RunHook(ctx, file, p)
	}
}
