package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/vuetsc/internal/store"
)

var (
	flagPathPrefix  string
	flagProblems    bool
	flagSort        string
	flagOrder       string
	flagLimit       int
	flagOffset      int
	flagWithDetails bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List the results recorded by the last check --db run",
	Long:  "Reads the build-info database without re-running the check. Relative --db paths are taken from the project directory.",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagDB, "db", "", "build-info database written by check --db (required)")
	reportCmd.Flags().StringVar(&flagPathPrefix, "path-prefix", "", "only files under this directory")
	reportCmd.Flags().BoolVar(&flagProblems, "problems", false, "only files with diagnostics")
	reportCmd.Flags().StringVar(&flagSort, "sort", "path", "sort field: path|problems|checked")
	reportCmd.Flags().StringVar(&flagOrder, "order", "asc", "sort order: asc|desc")
	reportCmd.Flags().IntVar(&flagLimit, "limit", 50, "max results (max 500)")
	reportCmd.Flags().IntVar(&flagOffset, "offset", 0, "skip this many results")
	reportCmd.Flags().BoolVar(&flagWithDetails, "diagnostics", false, "include each file's recorded diagnostics")
	_ = reportCmd.MarkFlagRequired("db")
}

func runReport(cmd *cobra.Command, args []string) error {
	sort, err := parseSort(flagSort, flagOrder)
	if err != nil {
		return outputError("report", err)
	}
	configPath, err := resolveProject(flagProject)
	if err != nil {
		return outputError("report", err)
	}
	dbPath := resolveDBPath(configPath)
	if _, err := os.Stat(dbPath); err != nil {
		return outputError("report", fmt.Errorf("no build info at %s: run check --db first", dbPath))
	}
	st, err := openStore(dbPath)
	if err != nil {
		return outputError("report", err)
	}
	defer st.Close()

	filter := store.FileFilter{
		PathPrefix:   resolvePathPrefix(configPath, flagPathPrefix),
		WithProblems: flagProblems,
	}
	report, err := buildReport(st, filter, sort)
	if err != nil {
		return outputError("report", err)
	}
	return outputResult(CLIResult{Command: "report", Results: report})
}

// resolvePathPrefix makes a relative --path-prefix absolute against the
// project directory, matching how file paths are recorded.
func resolvePathPrefix(configPath, prefix string) string {
	if prefix == "" {
		return ""
	}
	if filepath.IsAbs(prefix) {
		return filepath.Clean(prefix)
	}
	return filepath.Join(filepath.Dir(configPath), prefix)
}

func buildReport(st *store.Store, filter store.FileFilter, sort store.Sort) (CLIReport, error) {
	res, err := st.QueryFiles(filter, sort, store.Pagination{Offset: flagOffset, Limit: flagLimit})
	if err != nil {
		return CLIReport{}, err
	}

	report := CLIReport{TotalCount: res.TotalCount, Files: make([]CLIFile, 0, len(res.Items))}
	for _, f := range res.Items {
		cf := CLIFile{
			Path:         f.Path,
			Version:      f.Version,
			ProblemCount: f.ProblemCount,
			CheckedAt:    f.CheckedAt,
		}
		if flagWithDetails {
			diags, err := st.DiagnosticsByFile(f.ID)
			if err != nil {
				return CLIReport{}, err
			}
			for _, d := range diags {
				cf.Diagnostics = append(cf.Diagnostics, CLIDiagnostic{
					File:     f.Path,
					Line:     d.Line,
					Col:      d.Column,
					Severity: "error",
					Code:     d.Code,
					Message:  d.Message,
				})
			}
		}
		report.Files = append(report.Files, cf)
	}
	return report, nil
}

var (
	validSortFields = map[string]store.SortField{
		"path":     store.SortByPath,
		"problems": store.SortByProblems,
		"checked":  store.SortByChecked,
	}
	validOrders = map[string]store.SortOrder{
		"asc":  store.Asc,
		"desc": store.Desc,
	}
)

// parseSort validates the --sort and --order flag values.
func parseSort(field, order string) (store.Sort, error) {
	f, ok := validSortFields[field]
	if !ok {
		return store.Sort{}, fmt.Errorf("invalid sort field %q: must be path, problems or checked", field)
	}
	o, ok := validOrders[order]
	if !ok {
		return store.Sort{}, fmt.Errorf("invalid order %q: must be asc or desc", order)
	}
	return store.Sort{Field: f, Order: o}, nil
}
