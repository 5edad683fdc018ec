package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/config"
	"github.com/jward/vuetsc/internal/watch"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check a project whenever its files change",
	Long:  "Builds a program once, then reuses its context on every change: the project version is bumped and only changed files are re-read and re-analyzed.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", watch.DefaultDebounce, "quiet period before re-checking")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := vuetsc.Logger()

	configPath, err := resolveProject(flagProject)
	if err != nil {
		return outputError("watch", err)
	}
	parsed, err := config.Parse(configPath)
	if err != nil {
		return outputError("watch", err)
	}

	w, err := watch.New(watch.WithDebounce(flagDebounce), watch.WithLogger(logger))
	if err != nil {
		return outputError("watch", err)
	}
	if err := w.Add(configPath); err != nil {
		w.Close()
		return outputError("watch", err)
	}

	fs := osfs.New("/")
	host := vuetsc.NewSystemHost(fs, filepath.Dir(configPath),
		vuetsc.WithContext(ctx),
		vuetsc.WithSourceFileObserver(func(fileName string) {
			if err := w.Add(fileName); err != nil {
				logger.Warn("cannot watch file", "file", fileName, "err", err)
			}
		}),
	)
	session := vuetsc.NewHookSession(ctx)

	opts := programOptions(parsed, host, fs)
	p, err := vuetsc.Run(ctx, session, opts)
	if err != nil {
		w.Close()
		return outputError("watch", err)
	}
	if err := watchPass(ctx, p, configPath, parsed.VueOptions.Hooks); err != nil {
		w.Close()
		return outputError("watch", err)
	}

	err = w.Run(ctx, func(ctx context.Context, changed []string) error {
		logger.Info("change detected", "files", len(changed))
		// The root file set may have moved with the project file.
		if reparsed, err := config.Parse(configPath); err == nil {
			opts = programOptions(reparsed, host, fs)
		} else {
			logger.Warn("keeping previous root files", "err", err)
		}
		opts.OldProgram = p

		next, err := vuetsc.Run(ctx, session, opts)
		if err != nil {
			return err
		}
		p = next
		return watchPass(ctx, p, configPath, parsed.VueOptions.Hooks)
	})
	if err != nil {
		return outputError("watch", err)
	}
	return nil
}

// watchPass prints one check of p. Diagnostics do not stop the watch.
func watchPass(ctx context.Context, p *vuetsc.Program, configPath string, hooks []string) error {
	check, err := checkProgram(ctx, p, configPath, hooks, nil)
	if err != nil {
		return fmt.Errorf("project version %d: %w", p.ProjectVersion(), err)
	}
	return outputResult(CLIResult{Command: "watch", Results: check})
}
