package csvplugin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// WarningKind classifies a load warning.
type WarningKind string

// Warning kinds recorded during a load pass.
const (
	// WarnRaggedRows reports data rows dropped for a mismatched field count.
	WarnRaggedRows WarningKind = "ragged_rows"
	// WarnEmptyFile reports a source file skipped for having no header row.
	WarnEmptyFile WarningKind = "empty_file"
	// WarnDuplicateTable reports a file whose stem collides with an
	// already-created table.
	WarnDuplicateTable WarningKind = "duplicate_table"
	// WarnDuplicateColumns reports repeated header names within one file.
	WarnDuplicateColumns WarningKind = "duplicate_columns"
	// WarnFileFailed reports a file that could not be parsed or inserted.
	WarnFileFailed WarningKind = "file_failed"
)

// LoadWarning records a recoverable problem observed while loading one file.
// Permissive behavior (silent row drops, duplicate stems) is kept, but made
// auditable through these records instead of only a log line.
type LoadWarning struct {
	Kind   WarningKind `json:"kind"`
	File   string      `json:"file"`
	Table  string      `json:"table,omitempty"`
	Rows   int         `json:"rows,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

// typeMap maps table name to column name to inferred type. It is computed
// once per load pass and never updated incrementally.
type typeMap map[string]map[string]columnType

// loader populates one SQLite database from a directory of source files.
type loader struct {
	db       *sql.DB
	logger   *logrus.Logger
	types    typeMap
	created  map[string]bool
	warnings []LoadWarning
}

func newLoader(db *sql.DB, logger *logrus.Logger) *loader {
	return &loader{
		db:      db,
		logger:  logger,
		types:   make(typeMap),
		created: make(map[string]bool),
	}
}

// loadDirectory loads every recognized file in dir, sorted by name so table
// creation order is deterministic. Per-file data problems are recorded as
// warnings and do not abort the pass; hard filesystem errors do.
func (l *loader) loadDirectory(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errOpenSource, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isSupportedFile(entry.Name()) {
			continue
		}
		if err := l.loadFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// loadFile loads a single source file into the database.
func (l *loader) loadFile(ctx context.Context, path string) error {
	f := newFile(path)

	tbl, err := f.toTable(resolveDelimiter(f))
	switch {
	case err == nil:
	case errors.Is(err, errEmptyFile):
		// A file without even a header row is skipped entirely, no error.
		l.warn(LoadWarning{Kind: WarnEmptyFile, File: filepath.Base(path)})
		return nil
	case errors.Is(err, errOpenSource):
		return err
	default:
		l.warn(LoadWarning{Kind: WarnFileFailed, File: filepath.Base(path), Detail: err.Error()})
		return nil
	}

	if dups := duplicateColumnNames(tbl.getHeader()); len(dups) > 0 {
		l.warn(LoadWarning{
			Kind:   WarnDuplicateColumns,
			File:   filepath.Base(path),
			Table:  tbl.getName(),
			Detail: strings.Join(dups, ", "),
		})
	}
	if tbl.droppedRows > 0 {
		l.warn(LoadWarning{
			Kind:  WarnRaggedRows,
			File:  filepath.Base(path),
			Table: tbl.getName(),
			Rows:  tbl.droppedRows,
		})
	}

	if l.created[tbl.getName()] {
		// CREATE TABLE IF NOT EXISTS makes the second create a no-op; the
		// insert below still runs against the first file's schema.
		l.warn(LoadWarning{
			Kind:   WarnDuplicateTable,
			File:   filepath.Base(path),
			Table:  tbl.getName(),
			Detail: "table already created by an earlier file",
		})
	}

	if err := l.createTable(ctx, tbl); err != nil {
		l.warn(LoadWarning{Kind: WarnFileFailed, File: filepath.Base(path), Table: tbl.getName(), Detail: err.Error()})
		return nil
	}

	if !l.created[tbl.getName()] {
		l.created[tbl.getName()] = true
		l.types[tbl.getName()] = columnTypesByName(tbl.getColumnInfo())
	}

	if err := l.insertRecords(ctx, tbl); err != nil {
		l.warn(LoadWarning{Kind: WarnFileFailed, File: filepath.Base(path), Table: tbl.getName(), Detail: err.Error()})
		return nil
	}

	l.logger.WithFields(logrus.Fields{
		"table": tbl.getName(),
		"file":  filepath.Base(path),
		"rows":  len(tbl.getRecords()),
	}).Info("loaded source file")
	return nil
}

// createTable creates the backing table for tbl. Creation is idempotent per
// table name within one load pass: duplicate stems are a no-op, not an error.
func (l *loader) createTable(ctx context.Context, tbl *table) error {
	_, err := l.db.ExecContext(ctx, buildCreateTableQuery(tbl))
	return err
}

// insertRecords inserts all retained rows inside a single transaction.
func (l *loader) insertRecords(ctx context.Context, tbl *table) error {
	if len(tbl.getRecords()) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery(tbl))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, record := range tbl.getRecords() {
		args := make([]any, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (l *loader) warn(w LoadWarning) {
	l.warnings = append(l.warnings, w)
	l.logger.WithFields(logrus.Fields{
		"kind":  string(w.Kind),
		"file":  w.File,
		"table": w.Table,
	}).Warn(w.Detail)
}

// buildCreateTableQuery constructs the CREATE TABLE statement for a table.
// Columns carry the inferred type so SQLite's affinity yields typed query
// results; identifiers are quoted against injection through file or header
// names.
func buildCreateTableQuery(tbl *table) string {
	columns := make([]string, 0, len(tbl.getColumnInfo()))
	for _, col := range tbl.getColumnInfo() {
		columns = append(columns, quoteIdent(col.Name)+" "+col.Type.String())
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(tbl.getName()),
		strings.Join(columns, ", "),
	)
}

// buildInsertQuery constructs the positional INSERT statement for a table.
func buildInsertQuery(tbl *table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tbl.getHeader())), ", ")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(tbl.getName()), placeholders)
}

// columnTypesByName indexes inferred column types by column name. With
// duplicate headers the last occurrence wins, matching how permissive
// schemas propagate.
func columnTypesByName(columns []columnInfo) map[string]columnType {
	types := make(map[string]columnType, len(columns))
	for _, col := range columns {
		types[col.Name] = col.Type
	}
	return types
}
