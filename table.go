package csvplugin

import (
	"path/filepath"
	"strings"
)

// table represents file contents as database table structure.
type table struct {
	// name is table name derived from file path.
	name string
	// header is table header.
	header header
	// records holds retained data rows.
	records []Record
	// columnInfo contains inferred type information for each column
	columnInfo []columnInfo
	// droppedRows counts ragged rows discarded during parsing.
	droppedRows int
}

// newTable create new table.
func newTable(name string, header header, records []Record) *table {
	// Infer column types from a bounded prefix of the data
	columnInfo := inferColumnsInfo(header, records)

	return &table{
		name:       name,
		header:     header,
		records:    records,
		columnInfo: columnInfo,
	}
}

// getName return table name.
func (t *table) getName() string {
	return t.name
}

// getHeader return table header.
func (t *table) getHeader() header {
	return t.header
}

// getRecords return table records.
func (t *table) getRecords() []Record {
	return t.records
}

// getColumnInfo returns the column information with inferred types.
func (t *table) getColumnInfo() []columnInfo {
	return t.columnInfo
}

// equal compare table.
func (t *table) equal(t2 *table) bool {
	if t.getName() != t2.getName() {
		return false
	}
	if !t.header.equal(t2.header) {
		return false
	}
	if len(t.getRecords()) != len(t2.getRecords()) {
		return false
	}
	for i, record := range t.getRecords() {
		if !record.equal(t2.getRecords()[i]) {
			return false
		}
	}
	return true
}

// tableFromFilePath creates table name from file path. The name is the file
// stem, verbatim: compression extensions are stripped first, then the format
// extension.
func tableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
