// Package vuetsc wires a single-file component (.vue) analysis engine into a
// host compiler's program lifecycle.
//
// # Lifecycle
//
// [CreateProgram] is called once per compilation pass. The first call builds
// a [ProgramContext]: a script cache, a language host adapter, a URI
// filesystem bridge and the analysis engine's language service. Later calls
// pass the previous program back in [CreateProgramOptions.OldProgram]; the
// context is reused and its project version bumped by one, which is how the
// engine learns that inputs may have changed.
//
//	session := &vuetsc.HookSession{}
//	p, err := vuetsc.Run(ctx, session, vuetsc.CreateProgramOptions{
//		RootNames: parsed.FileNames,
//		Options:   parsed.Options,
//		Host:      vuetsc.NewSystemHost(osfs.New("/"), cwd),
//		Engine:    sfc.NewFactory(),
//	})
//
// # Script cache
//
// File snapshots are cached per file. An entry is served again when it was
// built at the current project version, or when the file's modification time
// has not changed since. Otherwise the file is re-read through the host.
//
// # Hooks
//
// vueCompilerOptions.hooks lists extension hooks that run, one at a time and
// in order, against the live program before compilation proceeds. A hook is
// either a name registered with [RegisterHook] or a path to a Risor script.
// Importing package hooks registers the built-in ones.
// CreateProgram never blocks on a hook: it starts the next one and returns a
// [*HookPendingError]. The caller waits on the [HookSession] and calls again;
// [Run] implements that loop.
package vuetsc
