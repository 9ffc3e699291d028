package csvplugin

import (
	"context"
	"fmt"
	"strings"
)

// Default pagination values for execute_query requests.
const (
	// DefaultPage is the page served when the request names none.
	DefaultPage = 1
	// DefaultPageSize is the window size when the request names none.
	DefaultPageSize = 100
)

// Pagination describes the window of a query result.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	TotalRows int `json:"total_rows"`
}

// ResultPage is the envelope returned for execute_query. Columns come from
// the query's own result description, so computed and aliased columns are
// reported correctly. Rows hold tagged values: int64, float64, string, or
// nil per cell.
type ResultPage struct {
	Columns      []string   `json:"columns"`
	Rows         [][]any    `json:"rows"`
	AffectedRows int64      `json:"affected_rows"`
	Truncated    bool       `json:"truncated"`
	Pagination   Pagination `json:"pagination"`
}

// ExecuteQuery runs query verbatim against the session's store, materializes
// the full result set, and returns the window [(page-1)*pageSize,
// page*pageSize). Page and pageSize are clamped to at least 1. The engine's
// own SQL semantics govern correctness; this method only adds the pagination
// contract.
func (s *Session) ExecuteQuery(ctx context.Context, query string, page, pageSize int) (*ResultPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	if !returnsRows(query) {
		return s.executeStatement(ctx, query, page, pageSize)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var all [][]any
	for rows.Next() {
		cells := make([]any, len(columns))
		scan := make([]any, len(columns))
		for i := range cells {
			scan[i] = &cells[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		for i, cell := range cells {
			cells[i] = normalizeCell(cell)
		}
		all = append(all, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	total := len(all)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	window := all[start:end]
	if window == nil {
		window = [][]any{}
	}

	return &ResultPage{
		Columns:   columns,
		Rows:      window,
		Truncated: end < total,
		Pagination: Pagination{
			Page:      page,
			PageSize:  pageSize,
			TotalRows: total,
		},
	}, nil
}

// executeStatement handles statements that produce no result rows (DDL and
// engine-level writes). The row count the engine reports becomes
// affected_rows.
func (s *Session) executeStatement(ctx context.Context, query string, page, pageSize int) (*ResultPage, error) {
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}

	return &ResultPage{
		Columns:      []string{},
		Rows:         [][]any{},
		AffectedRows: affected,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
		},
	}, nil
}

// returnsRows reports whether the statement produces a result set, judged by
// its leading keyword.
func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return true
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "VALUES", "PRAGMA", "EXPLAIN":
		return true
	default:
		return false
	}
}

// normalizeCell converts a scanned database value into its tagged
// representation: int64, float64, string, or nil.
func normalizeCell(v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(value)
	case int64, float64, string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
