package store

import (
	"fmt"
	"time"
)

// HooksHashKey is the metadata key of the hooks hash.
const HooksHashKey = "hooks_hash"

// HooksChanged reports whether hash differs from the hooks hash of the last
// recorded run. Returns true when nothing has been recorded yet.
func (s *Store) HooksChanged(hash string) (bool, error) {
	stored, err := s.GetMetadata(HooksHashKey)
	if err != nil {
		return true, err
	}
	return stored == "" || stored != hash, nil
}

// ChangedFiles returns the paths in versions whose version differs from the
// recorded one, including paths never recorded. Order follows paths.
func (s *Store) ChangedFiles(paths []string, versions map[string]string) ([]string, error) {
	var changed []string
	for _, p := range paths {
		f, err := s.FileByPath(p)
		if err != nil {
			return nil, err
		}
		if f == nil || f.Version != versions[p] {
			changed = append(changed, p)
		}
	}
	return changed, nil
}

// Reset deletes every recorded file and its diagnostics.
func (s *Store) Reset() error {
	if _, err := s.db.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// RecordRun stores the results of a check run in a single transaction.
// Files not in results are dropped, so the store mirrors the latest root
// file set. The hooks hash is stored alongside.
func (s *Store) RecordRun(hooksHash string, results []FileResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Path)

		var fileID int64
		err := tx.QueryRow(
			`INSERT INTO files (path, version, problem_count, checked_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET version = excluded.version,
			   problem_count = excluded.problem_count, checked_at = excluded.checked_at
			 RETURNING id`,
			r.Path, r.Version, len(r.Diagnostics), now,
		).Scan(&fileID)
		if err != nil {
			return fmt.Errorf("record run: upsert %s: %w", r.Path, err)
		}

		if _, err := tx.Exec("DELETE FROM diagnostics WHERE file_id = ?", fileID); err != nil {
			return fmt.Errorf("record run: clear diagnostics %s: %w", r.Path, err)
		}
		for _, d := range r.Diagnostics {
			if _, err := tx.Exec(
				"INSERT INTO diagnostics (file_id, line, col, code, message) VALUES (?, ?, ?, ?, ?)",
				fileID, d.Line, d.Column, d.Code, d.Message,
			); err != nil {
				return fmt.Errorf("record run: insert diagnostic %s: %w", r.Path, err)
			}
		}
	}

	query := "DELETE FROM files"
	if len(paths) > 0 {
		query += " WHERE path NOT IN (" + placeholderList(len(paths)) + ")"
	}
	if _, err := tx.Exec(query, stringsToArgs(paths)...); err != nil {
		return fmt.Errorf("record run: drop stale files: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		HooksHashKey, hooksHash,
	); err != nil {
		return fmt.Errorf("record run: hooks hash: %w", err)
	}
	return tx.Commit()
}
