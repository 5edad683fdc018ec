package main

import (
	"time"

	"github.com/jward/vuetsc"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIDiagnostic is a JSON-friendly diagnostic.
type CLIDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Severity string `json:"severity"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

// CLICheck is the result of check and of each watch pass.
type CLICheck struct {
	ProjectVersion int             `json:"project_version"`
	Files          int             `json:"files"`
	Diagnostics    []CLIDiagnostic `json:"diagnostics"`
}

// CLIFile is a JSON-friendly recorded file.
type CLIFile struct {
	Path         string          `json:"path"`
	Version      string          `json:"version"`
	ProblemCount int             `json:"problem_count"`
	CheckedAt    time.Time       `json:"checked_at"`
	Diagnostics  []CLIDiagnostic `json:"diagnostics,omitempty"`
}

// CLIReport is the result of report.
type CLIReport struct {
	TotalCount int       `json:"total_count"`
	Files      []CLIFile `json:"files"`
}

// CLIDumpedFile is one virtual file written by dump.
type CLIDumpedFile struct {
	Source string `json:"source"`
	Path   string `json:"path"`
}

func toCLIDiagnostics(diags []vuetsc.Diagnostic) []CLIDiagnostic {
	out := make([]CLIDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, CLIDiagnostic{
			File:     d.FileName,
			Line:     d.Line,
			Col:      d.Column,
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
		})
	}
	return out
}
