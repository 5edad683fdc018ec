package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/config"
)

var flagOut string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the virtual script files derived from a project",
	Long:  "Writes the virtual code the analysis engine checks, mirroring the project layout under --out, so it can be fed to the host compiler's --extendedDiagnostics or --generateTrace.",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&flagOut, "out", "", "output directory (required)")
	_ = dumpCmd.MarkFlagRequired("out")
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	configPath, err := resolveProject(flagProject)
	if err != nil {
		return outputError("dump", err)
	}
	parsed, err := config.Parse(configPath)
	if err != nil {
		return outputError("dump", err)
	}
	outDir, err := filepath.Abs(flagOut)
	if err != nil {
		return outputError("dump", fmt.Errorf("resolving path %q: %w", flagOut, err))
	}

	projectDir := filepath.Dir(configPath)
	fs := osfs.New("/")
	host := vuetsc.NewSystemHost(fs, projectDir, vuetsc.WithContext(ctx))
	opts := programOptions(parsed, host, fs)
	dumpOptions(opts.Options)

	p, err := vuetsc.Run(ctx, vuetsc.NewHookSession(ctx), opts)
	if err != nil {
		return outputError("dump", err)
	}

	out := osfs.New(outDir)
	var written []CLIDumpedFile
	for _, name := range p.RootFileNames() {
		files, err := p.VirtualFiles(name)
		if err != nil {
			vuetsc.Logger().Warn("skipping file", "file", name, "err", err)
			continue
		}
		for _, f := range files {
			rel := dumpPath(projectDir, f.Name)
			if err := util.WriteFile(out, rel, []byte(f.Text), 0o644); err != nil {
				return outputError("dump", fmt.Errorf("writing %s: %w", rel, err))
			}
			written = append(written, CLIDumpedFile{Source: name, Path: filepath.Join(outDir, rel)})
		}
	}
	return outputResult(CLIResult{Command: "dump", Results: written})
}

// dumpOptions clears the settings CreateProgram rejects.
func dumpOptions(opts *vuetsc.CompilerOptions) {
	opts.NoEmit = true
	opts.NoEmitOnError = false
	opts.ExtendedDiagnostics = false
	opts.GenerateTrace = ""
}

// dumpPath maps a virtual file name to its path under the output directory.
// Files outside the project keep their absolute layout below "_external".
func dumpPath(projectDir, name string) string {
	rel, err := filepath.Rel(projectDir, name)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rel
	}
	abs := strings.TrimPrefix(filepath.ToSlash(name), filepath.VolumeName(name))
	return filepath.Join("_external", filepath.FromSlash(strings.TrimPrefix(abs, "/")))
}
