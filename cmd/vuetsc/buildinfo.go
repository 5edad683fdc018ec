package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jward/vuetsc"
	"github.com/jward/vuetsc/internal/store"
)

// resolveDBPath returns the --db path, relative paths taken from the project
// directory.
func resolveDBPath(configPath string) string {
	if filepath.IsAbs(flagDB) {
		return flagDB
	}
	return filepath.Join(filepath.Dir(configPath), flagDB)
}

// openStore opens and migrates the build-info database, creating its
// directory if needed.
func openStore(dbPath string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening build info: %w", err)
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrating build info: %w", err)
	}
	return st, nil
}

func hookHash(configPath string, hooks []string) string {
	return store.HooksHash(hooks, hookSource(configPath))
}

// recordBuildInfo stores the run and returns the root files whose script
// version differs from the previous run. A hooks change discards the whole
// record first, so every file counts as changed.
func recordBuildInfo(st *store.Store, p *vuetsc.Program, hooksHash string, diags []vuetsc.Diagnostic) ([]string, error) {
	hooksChanged, err := st.HooksChanged(hooksHash)
	if err != nil {
		return nil, fmt.Errorf("reading build info: %w", err)
	}
	if hooksChanged {
		vuetsc.Logger().Debug("hooks changed, discarding build info")
		if err := st.Reset(); err != nil {
			return nil, fmt.Errorf("resetting build info: %w", err)
		}
	}

	roots := p.RootFileNames()
	lh := p.Context().LanguageHost()
	versions := make(map[string]string, len(roots))
	for _, name := range roots {
		versions[name] = lh.ScriptVersion(name)
	}
	changed, err := st.ChangedFiles(roots, versions)
	if err != nil {
		return nil, fmt.Errorf("reading build info: %w", err)
	}

	byFile := make(map[string][]store.Diagnostic)
	for _, d := range diags {
		byFile[d.FileName] = append(byFile[d.FileName], store.Diagnostic{
			Line:    d.Line,
			Column:  d.Column,
			Code:    d.Code,
			Message: d.Message,
		})
	}
	results := make([]store.FileResult, 0, len(roots))
	for _, name := range roots {
		results = append(results, store.FileResult{
			Path:        name,
			Version:     versions[name],
			Diagnostics: byFile[name],
		})
	}
	if err := st.RecordRun(hooksHash, results); err != nil {
		return nil, fmt.Errorf("recording build info: %w", err)
	}
	return changed, nil
}
