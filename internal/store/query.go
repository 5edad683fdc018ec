package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Pagination controls offset+limit paging on list results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize returns a Pagination with defaults applied and bounds enforced.
func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// SortField specifies how to order results.
type SortField string

const (
	SortByPath     SortField = "path"
	SortByProblems SortField = "problems"
	SortByChecked  SortField = "checked"
)

// SortOrder specifies ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort controls result ordering.
type Sort struct {
	Field SortField
	Order SortOrder
}

// PagedResult wraps a page of results with total count for pagination.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int // total matching results (before pagination)
}

// FileFilter specifies which recorded files to include.
type FileFilter struct {
	PathPrefix   string // restrict to files under this directory
	WithProblems bool   // only files with at least one diagnostic
}

// fileSortColumn returns the SQL ORDER BY expression for file queries.
// Falls back to "path" for unknown fields.
func fileSortColumn(field SortField) string {
	switch field {
	case SortByProblems:
		return "problem_count"
	case SortByChecked:
		return "checked_at"
	default:
		return "path"
	}
}

// sortDirection returns "ASC" or "DESC".
func sortDirection(order SortOrder) string {
	if order == Desc {
		return "DESC"
	}
	return "ASC"
}

// QueryFiles lists recorded files matching filter. Ties are broken by path.
func (s *Store) QueryFiles(filter FileFilter, sort Sort, page Pagination) (*PagedResult[File], error) {
	page = page.normalize()

	var where []string
	var args []any
	if filter.PathPrefix != "" {
		where = append(where, "path LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(normalizePathPrefix(filter.PathPrefix))+"%")
	}
	if filter.WithProblems {
		where = append(where, "problem_count > 0")
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("query files: count: %w", err)
	}

	dataSQL := fmt.Sprintf(
		`SELECT id, path, version, problem_count, checked_at FROM files %s ORDER BY %s %s, path ASC LIMIT ? OFFSET ?`,
		whereClause, fileSortColumn(sort.Field), sortDirection(sort.Order),
	)
	rows, err := s.db.Query(dataSQL, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	items := []File{}
	for rows.Next() {
		var f File
		var checkedAt sql.NullTime
		if err := rows.Scan(&f.ID, &f.Path, &f.Version, &f.ProblemCount, &checkedAt); err != nil {
			return nil, fmt.Errorf("query files: scan: %w", err)
		}
		f.CheckedAt = checkedAt.Time
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query files: rows: %w", err)
	}
	return &PagedResult[File]{Items: items, TotalCount: totalCount}, nil
}

// normalizePathPrefix ensures a path prefix ends with "/" for correct LIKE
// matching: "/p/src" must not match "/p/src_old/".
func normalizePathPrefix(prefix string) string {
	if !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
