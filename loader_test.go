package csvplugin

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger returns a logger that discards output so test runs stay quiet.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n))
	return n
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	t.Run("loads recognized files and skips the rest", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTestFile(t, dir, "users.csv", "id,name\n1,Alice\n2,Bob\n")
		writeTestFile(t, dir, "points.tsv", "x\ty\n1\t2\n")
		writeTestFile(t, dir, "notes.txt", "not a source file")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0700))

		db := openTestDB(t)
		l := newLoader(db, testLogger())
		require.NoError(t, l.loadDirectory(context.Background(), dir))

		assert.Equal(t, 2, countRows(t, db, "users"))
		assert.Equal(t, 1, countRows(t, db, "points"))
		assert.Empty(t, l.warnings)

		// Inferred types are recorded per table.
		require.Contains(t, l.types, "users")
		assert.Equal(t, columnTypeInteger, l.types["users"]["id"])
		assert.Equal(t, columnTypeText, l.types["users"]["name"])
	})

	t.Run("empty file is skipped with a warning", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTestFile(t, dir, "empty.csv", "")
		writeTestFile(t, dir, "users.csv", "id\n1\n")

		db := openTestDB(t)
		l := newLoader(db, testLogger())
		require.NoError(t, l.loadDirectory(context.Background(), dir))

		require.Len(t, l.warnings, 1)
		assert.Equal(t, WarnEmptyFile, l.warnings[0].Kind)
		assert.Equal(t, "empty.csv", l.warnings[0].File)
		assert.Equal(t, 1, countRows(t, db, "users"))
	})

	t.Run("ragged rows are counted in a warning", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTestFile(t, dir, "ragged.csv", "a,b,c\n1,2\n1,2,3\n1\n")

		db := openTestDB(t)
		l := newLoader(db, testLogger())
		require.NoError(t, l.loadDirectory(context.Background(), dir))

		require.Len(t, l.warnings, 1)
		assert.Equal(t, WarnRaggedRows, l.warnings[0].Kind)
		assert.Equal(t, 2, l.warnings[0].Rows)
		assert.Equal(t, 1, countRows(t, db, "ragged"))
	})

	t.Run("duplicate column names are surfaced", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTestFile(t, dir, "dup.csv", "a,a\n1,2\n")

		db := openTestDB(t)
		l := newLoader(db, testLogger())
		require.NoError(t, l.loadDirectory(context.Background(), dir))

		require.Len(t, l.warnings, 1)
		assert.Equal(t, WarnDuplicateColumns, l.warnings[0].Kind)
		assert.Equal(t, "a", l.warnings[0].Detail)
	})

	t.Run("duplicate stems share one table", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		// Both files resolve to the table name "users". Loading is sorted by
		// file name, the second file warns and inserts into the first schema.
		writeTestFile(t, dir, "users.csv", "id,name\n1,Alice\n")
		writeTestFile(t, dir, "users.tsv", "id\tname\n2\tBob\n")

		db := openTestDB(t)
		l := newLoader(db, testLogger())
		require.NoError(t, l.loadDirectory(context.Background(), dir))

		require.Len(t, l.warnings, 1)
		assert.Equal(t, WarnDuplicateTable, l.warnings[0].Kind)
		assert.Equal(t, "users", l.warnings[0].Table)
		assert.Equal(t, 2, countRows(t, db, "users"))
	})

	t.Run("missing directory is a hard error", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		l := newLoader(db, testLogger())
		err := l.loadDirectory(context.Background(), filepath.Join(t.TempDir(), "absent"))
		assert.ErrorIs(t, err, errOpenSource)
	})
}

func TestBuildCreateTableQuery(t *testing.T) {
	t.Parallel()

	tbl := newTable("users", newHeader([]string{"id", "score", "name"}), []Record{
		newRecord([]string{"1", "1.5", "Alice"}),
	})

	got := buildCreateTableQuery(tbl)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "users" ("id" INTEGER, "score" REAL, "name" TEXT)`, got)
}

func TestBuildInsertQuery(t *testing.T) {
	t.Parallel()

	tbl := newTable("users", newHeader([]string{"id", "name"}), nil)

	got := buildInsertQuery(tbl)
	assert.Equal(t, `INSERT INTO "users" VALUES (?, ?)`, got)
}
