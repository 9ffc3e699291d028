package csvplugin

import (
	"context"
	"fmt"
)

// TableInfo describes one table for the host's introspection UI. Flat files
// have no schema or comment, so those stay null.
type TableInfo struct {
	Name    string  `json:"name"`
	Schema  *string `json:"schema"`
	Comment *string `json:"comment"`
}

// ColumnInfo describes one column. Flat files declare no constraints, so
// nullability is always true and key, auto-increment, and default are always
// absent; the data type is the inferred logical type.
type ColumnInfo struct {
	Name            string  `json:"name"`
	DataType        string  `json:"data_type"`
	IsNullable      bool    `json:"is_nullable"`
	ColumnDefault   *string `json:"column_default"`
	IsPrimaryKey    bool    `json:"is_primary_key"`
	IsAutoIncrement bool    `json:"is_auto_increment"`
	Comment         *string `json:"comment"`
}

// ForeignKeyInfo describes a foreign key relationship. Flat files never
// produce one; the type exists so batch responses keep the host's shape.
type ForeignKeyInfo struct {
	Name             string `json:"name"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// SchemaSnapshot is a full catalog dump: every table with its columns and
// (always empty) foreign keys, for whole-database visualization in one
// round trip.
type SchemaSnapshot struct {
	Tables      []TableInfo                 `json:"tables"`
	Columns     map[string][]ColumnInfo     `json:"columns"`
	ForeignKeys map[string][]ForeignKeyInfo `json:"foreign_keys"`
}

// Tables lists all loaded tables ordered by name.
func (s *Session) Tables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []TableInfo{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, TableInfo{Name: name})
	}
	return tables, rows.Err()
}

// Columns lists the columns of one table in declaration order. The reported
// data type prefers the session's inferred type map and falls back to the
// declared SQL type for tables the map does not cover.
func (s *Session) Columns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inferred := s.types[tableName]

	columns := []ColumnInfo{}
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     *string
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}

		dataType := declType
		if t, ok := inferred[name]; ok {
			dataType = t.String()
		}
		if dataType == "" {
			dataType = sqlTypeText
		}

		columns = append(columns, ColumnInfo{
			Name:         name,
			DataType:     dataType,
			IsNullable:   true,
			IsPrimaryKey: pk != 0,
		})
	}
	return columns, rows.Err()
}

// ColumnsBatch returns the column lists for a set of tables in one call.
func (s *Session) ColumnsBatch(ctx context.Context, tableNames []string) (map[string][]ColumnInfo, error) {
	result := make(map[string][]ColumnInfo, len(tableNames))
	for _, name := range tableNames {
		columns, err := s.Columns(ctx, name)
		if err != nil {
			return nil, err
		}
		result[name] = columns
	}
	return result, nil
}

// ForeignKeysBatch returns an empty foreign-key list per requested table.
// No relationships are ever derived from flat files.
func (s *Session) ForeignKeysBatch(tableNames []string) map[string][]ForeignKeyInfo {
	result := make(map[string][]ForeignKeyInfo, len(tableNames))
	for _, name := range tableNames {
		result[name] = []ForeignKeyInfo{}
	}
	return result
}

// Snapshot dumps the whole catalog.
func (s *Session) Snapshot(ctx context.Context) (*SchemaSnapshot, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &SchemaSnapshot{
		Tables:      tables,
		Columns:     make(map[string][]ColumnInfo, len(tables)),
		ForeignKeys: make(map[string][]ForeignKeyInfo, len(tables)),
	}
	for _, tbl := range tables {
		columns, err := s.Columns(ctx, tbl.Name)
		if err != nil {
			return nil, err
		}
		snapshot.Columns[tbl.Name] = columns
		snapshot.ForeignKeys[tbl.Name] = []ForeignKeyInfo{}
	}
	return snapshot, nil
}
