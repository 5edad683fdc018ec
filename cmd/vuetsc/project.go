package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/config"
	"github.com/jward/vuetsc/internal/runtime"
	"github.com/jward/vuetsc/internal/sfc"
)

// resolveProject returns the absolute path of the project file named by arg.
// arg may be a file, a directory holding one of config.ConfigNames, or empty
// to search upward from the working directory.
func resolveProject(arg string) (string, error) {
	if arg == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determining working directory: %w", err)
		}
		p := config.Find(wd)
		if p == "" {
			return "", fmt.Errorf("no project file found in %s or any parent directory", wd)
		}
		return p, nil
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", arg, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project not found: %s", abs)
	}
	if !info.IsDir() {
		return abs, nil
	}
	for _, name := range config.ConfigNames {
		p := filepath.Join(abs, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no project file in %s", abs)
}

// programOptions builds the CreateProgram input for parsed. Command line
// overrides are applied to a copy of the parsed compiler options.
func programOptions(parsed *config.ParsedCommandLine, host vuetsc.CompilerHost, fs billy.Filesystem) vuetsc.CreateProgramOptions {
	opts := *parsed.Options
	if flagNoEmit {
		opts.NoEmit = true
	}
	if flagEmitDeclarationOnly {
		opts.EmitDeclarationOnly = true
	}
	return vuetsc.CreateProgramOptions{
		RootNames:         parsed.FileNames,
		Options:           &opts,
		Host:              host,
		ProjectReferences: parsed.ProjectReferences,
		Engine:            sfc.NewFactory(sfc.WithLogger(vuetsc.Logger())),
		FileSystem:        fs,
	}
}

// hookSource returns a reader for the source of script hooks, resolved the
// way the hook runner resolves them. Registered hooks have no source.
func hookSource(configPath string) func(ref string) (string, bool) {
	dir := filepath.Dir(configPath)
	return func(ref string) (string, bool) {
		if !runtime.IsScript(ref) {
			return "", false
		}
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}
