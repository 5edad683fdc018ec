package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jward/vuetsc"
	_ "github.com/jward/vuetsc/hooks"
)

var (
	flagProject             string
	flagFormat              string
	flagVerbose             bool
	flagNoEmit              bool
	flagEmitDeclarationOnly bool
)

// errorHandled is set by outputError and reportDiagnostics so main() doesn't
// double-print.
var errorHandled bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "vuetsc",
	Short:         "Incremental checking for projects with single-file components",
	Long:          "vuetsc builds a long-lived program context over a tsconfig project, runs its vueCompilerOptions hooks, and reports diagnostics for .vue and script files.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			vuetsc.Logger().SetLevel(log.DebugLevel)
		}
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "project file or directory (default: search upward from the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log program lifecycle and hook progress")
	rootCmd.PersistentFlags().BoolVar(&flagNoEmit, "noEmit", false, "override compilerOptions.noEmit")
	rootCmd.PersistentFlags().BoolVar(&flagEmitDeclarationOnly, "emitDeclarationOnly", false, "override compilerOptions.emitDeclarationOnly")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(reportCmd)
}
