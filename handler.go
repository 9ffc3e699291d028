package csvplugin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tabularis-db/csvplugin/rpc"
)

// Handler routes host methods to the session store, query executor, and
// catalog reflector. It implements rpc.Handler via Handle.
type Handler struct {
	store           *Store
	defaultPageSize int
}

// NewHandler creates a handler over the given session store. A
// defaultPageSize below 1 falls back to DefaultPageSize.
func NewHandler(store *Store, defaultPageSize int) *Handler {
	if defaultPageSize < 1 {
		defaultPageSize = DefaultPageSize
	}
	return &Handler{store: store, defaultPageSize: defaultPageSize}
}

// testConnectionResult is the success payload of test_connection.
type testConnectionResult struct {
	Success bool `json:"success"`
}

// Handle executes one host method. Write-by-record methods are rejected
// before any session work, independent of their arguments.
func (h *Handler) Handle(method string, params rpc.Params) (any, error) {
	ctx := context.Background()

	switch method {
	case "insert_record", "update_record", "delete_record":
		return nil, ErrReadOnlySource
	}

	session, err := h.store.EnsureLoaded(ctx, params.Params.Database)
	if err != nil {
		return nil, err
	}

	switch method {
	case "test_connection":
		return testConnectionResult{Success: true}, nil

	case "get_databases":
		return []string{filepath.Base(session.Dir())}, nil

	case "get_schemas", "get_foreign_keys", "get_indexes",
		"get_views", "get_routines", "get_routine_parameters":
		// Concepts absent from flat files are reported as present-but-empty
		// so the host's generic introspection degrades gracefully.
		return []any{}, nil

	case "get_tables":
		return session.Tables(ctx)

	case "get_columns":
		return session.Columns(ctx, params.Table)

	case "get_schema_snapshot":
		return session.Snapshot(ctx)

	case "get_all_columns_batch":
		return session.ColumnsBatch(ctx, params.Tables)

	case "get_all_foreign_keys_batch":
		return session.ForeignKeysBatch(params.Tables), nil

	case "execute_query":
		page := params.Page
		if page == 0 {
			page = DefaultPage
		}
		pageSize := params.PageSize
		if pageSize == 0 {
			pageSize = h.defaultPageSize
		}
		return session.ExecuteQuery(ctx, params.Query, page, pageSize)

	default:
		return nil, fmt.Errorf("%w: %s", rpc.ErrMethodNotFound, method)
	}
}
