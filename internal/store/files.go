package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	var checkedAt sql.NullTime
	err := s.db.QueryRow(
		"SELECT id, path, version, problem_count, checked_at FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Version, &f.ProblemCount, &checkedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	f.CheckedAt = checkedAt.Time
	return f, nil
}

// Files returns every recorded file ordered by path.
func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT id, path, version, problem_count, checked_at FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		var checkedAt sql.NullTime
		if err := rows.Scan(&f.ID, &f.Path, &f.Version, &f.ProblemCount, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.CheckedAt = checkedAt.Time
		files = append(files, f)
	}
	return files, rows.Err()
}

// --- Diagnostic operations ---

func (s *Store) DiagnosticsByFile(fileID int64) ([]*Diagnostic, error) {
	rows, err := s.db.Query(
		"SELECT id, file_id, line, col, code, message FROM diagnostics WHERE file_id = ? ORDER BY line, col, id", fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("diagnostics by file: %w", err)
	}
	defer rows.Close()
	var out []*Diagnostic
	for rows.Next() {
		d := &Diagnostic{}
		var code sql.NullString
		if err := rows.Scan(&d.ID, &d.FileID, &d.Line, &d.Column, &code, &d.Message); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.Code = code.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// --- Metadata ---

// GetMetadata returns the value stored under key, or "" if unset.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value, nil
}

// SetMetadata stores value under key, replacing any previous value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}
