package runtime

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/risor-io/risor/object"
)

// Program is the part of a live program a hook script can see.
type Program interface {
	RootFileNames() []string
	ProjectVersion() int
	ConfigFilePath() string
	CurrentDirectory() string
	// ReadSnapshot returns the text the analysis engine currently sees for
	// fileName.
	ReadSnapshot(fileName string) (string, bool)
}

// HookGlobals builds the host functions bound to p.
//
//	root_files()          → [string]
//	project_version()     → int
//	config_file()         → string
//	current_directory()   → string
//	read_snapshot(path)   → string or nil
func HookGlobals(p Program) map[string]any {
	return map[string]any{
		"root_files":        makeRootFilesFn(p),
		"project_version":   makeProjectVersionFn(p),
		"config_file":       makeStringFn("config_file", p.ConfigFilePath),
		"current_directory": makeStringFn("current_directory", p.CurrentDirectory),
		"read_snapshot":     makeReadSnapshotFn(p),
	}
}

func makeRootFilesFn(p Program) *object.Builtin {
	return object.NewBuiltin("root_files", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("root_files", 0, len(args))
		}
		names := p.RootFileNames()
		items := make([]object.Object, 0, len(names))
		for _, n := range names {
			items = append(items, object.NewString(n))
		}
		return object.NewList(items)
	})
}

func makeProjectVersionFn(p Program) *object.Builtin {
	return object.NewBuiltin("project_version", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("project_version", 0, len(args))
		}
		return object.NewInt(int64(p.ProjectVersion()))
	})
}

func makeStringFn(name string, get func() string) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError(name, 0, len(args))
		}
		return object.NewString(get())
	})
}

func makeReadSnapshotFn(p Program) *object.Builtin {
	return object.NewBuiltin("read_snapshot", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("read_snapshot", 1, len(args))
		}
		path, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("read_snapshot: path must be a string, got %s", args[0].Type())
		}
		text, found := p.ReadSnapshot(path.Value())
		if !found {
			return object.Nil
		}
		return object.NewString(text)
	})
}

// logObject provides log.info/warn/error methods for scripts.
type logObject struct {
	logger *log.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "hook")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "hook")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "hook")
}
