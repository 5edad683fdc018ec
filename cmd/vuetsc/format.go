package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// formatCheckText formats diagnostics one per line, followed by a summary.
func formatCheckText(w io.Writer, check CLICheck) {
	files := make(map[string]bool)
	for _, d := range check.Diagnostics {
		files[d.File] = true
		formatDiagnostic(w, d)
	}
	switch n := len(check.Diagnostics); {
	case n == 0:
		fmt.Fprintf(w, "Checked %d files, no problems found.\n", check.Files)
	case n == 1:
		fmt.Fprintln(w, "\nFound 1 problem.")
	default:
		fmt.Fprintf(w, "\nFound %d problems in %d files.\n", n, len(files))
	}
}

// formatDiagnostic writes d as "file:line:col - severity CODE: message".
func formatDiagnostic(w io.Writer, d CLIDiagnostic) {
	code := ""
	if d.Code != "" {
		code = " " + d.Code
	}
	fmt.Fprintf(w, "%s:%d:%d - %s%s: %s\n", d.File, d.Line, d.Col, d.Severity, code, d.Message)
}

// formatDumpText formats dumped virtual files as aligned columns.
func formatDumpText(w io.Writer, files []CLIDumpedFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tVIRTUAL FILE")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\n", f.Source, f.Path)
	}
	tw.Flush()
}

// formatReportText formats recorded files as aligned columns, followed by
// their diagnostics when present.
func formatReportText(w io.Writer, report CLIReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tPROBLEMS\tCHECKED")
	for _, f := range report.Files {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Path, f.ProblemCount, f.CheckedAt.Local().Format(time.DateTime))
	}
	tw.Flush()

	for _, f := range report.Files {
		for _, d := range f.Diagnostics {
			formatDiagnostic(w, d)
		}
	}
	if shown := len(report.Files); shown < report.TotalCount {
		fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, report.TotalCount)
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLICheck:
		formatCheckText(w, v)
	case CLIReport:
		formatReportText(w, v)
	case []CLIDumpedFile:
		formatDumpText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputResult writes result to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"text", "json"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
