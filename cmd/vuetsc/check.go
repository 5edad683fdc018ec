package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/config"
	"github.com/jward/vuetsc/internal/store"
)

var (
	flagDB      string
	flagChanged bool
)

// errProblems is returned when a check reports diagnostics. It is already
// rendered, so main() only sets the exit status.
var errProblems = errors.New("problems found")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report diagnostics for a project",
	Long:  "Builds a program for the project, runs its hooks, and prints the analysis engine's diagnostics. Exits with status 1 when any are reported.",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&flagDB, "db", "", "record build info in this SQLite database")
	checkCmd.Flags().BoolVar(&flagChanged, "changed", false, "only report files changed since the last recorded run (requires --db)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if flagChanged && flagDB == "" {
		return outputError("check", fmt.Errorf("--changed requires --db"))
	}
	ctx := cmd.Context()
	start := time.Now()

	configPath, err := resolveProject(flagProject)
	if err != nil {
		return outputError("check", err)
	}
	parsed, err := config.Parse(configPath)
	if err != nil {
		return outputError("check", err)
	}

	var st *store.Store
	if flagDB != "" {
		st, err = openStore(resolveDBPath(configPath))
		if err != nil {
			return outputError("check", err)
		}
		defer st.Close()
	}

	fs := osfs.New("/")
	host := vuetsc.NewSystemHost(fs, filepath.Dir(configPath), vuetsc.WithContext(ctx))
	p, err := vuetsc.Run(ctx, vuetsc.NewHookSession(ctx), programOptions(parsed, host, fs))
	if err != nil {
		return outputError("check", err)
	}

	check, err := checkProgram(ctx, p, configPath, parsed.VueOptions.Hooks, st)
	if err != nil {
		return outputError("check", err)
	}
	vuetsc.Logger().Debug("check finished", "files", check.Files, "problems", len(check.Diagnostics), "took", time.Since(start).Round(time.Millisecond))
	return reportCheck("check", check)
}

// checkProgram collects p's diagnostics. With a store, the run is recorded
// and --changed limits the result to files whose version moved.
func checkProgram(ctx context.Context, p *vuetsc.Program, configPath string, hooks []string, st *store.Store) (CLICheck, error) {
	diags, err := p.Diagnostics(ctx)
	if err != nil {
		return CLICheck{}, fmt.Errorf("collecting diagnostics: %w", err)
	}
	if st != nil {
		changed, err := recordBuildInfo(st, p, hookHash(configPath, hooks), diags)
		if err != nil {
			return CLICheck{}, err
		}
		if flagChanged {
			diags = onlyFiles(diags, changed)
		}
	}
	return CLICheck{
		ProjectVersion: p.ProjectVersion(),
		Files:          len(p.RootFileNames()),
		Diagnostics:    toCLIDiagnostics(diags),
	}, nil
}

// reportCheck prints check and turns reported diagnostics into exit status 1.
func reportCheck(command string, check CLICheck) error {
	if err := outputResult(CLIResult{Command: command, Results: check}); err != nil {
		return err
	}
	if len(check.Diagnostics) > 0 {
		errorHandled = true
		return errProblems
	}
	return nil
}

func onlyFiles(diags []vuetsc.Diagnostic, files []string) []vuetsc.Diagnostic {
	keep := make(map[string]bool, len(files))
	for _, f := range files {
		keep[f] = true
	}
	var out []vuetsc.Diagnostic
	for _, d := range diags {
		if keep[d.FileName] {
			out = append(out, d)
		}
	}
	return out
}
