package csvplugin

import (
	"strconv"
	"strings"
)

// inferColumnType infers the SQL column type from a slice of string values.
//
// The check escalates in three tiers: every non-empty value must parse as a
// base-10 integer for INTEGER, else every value must parse as a float for
// REAL, else the column is TEXT. A single non-integer value anywhere in the
// sample demotes the whole column. Columns with no non-empty values are TEXT.
//
// Callers pass a bounded sample (the first typeSampleRows values), so a
// column that looks numeric early on but contains later text is still
// classified as numeric; SQLite column affinity stores the odd
// non-conforming value as text.
func inferColumnType(values []string) columnType {
	nonEmpty := 0
	allInteger := true
	allReal := true

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		nonEmpty++

		if allInteger && !isInteger(value) {
			allInteger = false
		}
		if !isFloat(value) {
			// Not even a real number, so the column is text.
			allReal = false
			break
		}
	}

	if nonEmpty == 0 {
		return columnTypeText
	}
	if allInteger {
		return columnTypeInteger
	}
	if allReal {
		return columnTypeReal
	}
	return columnTypeText
}

// isInteger checks if a value is a base-10 integer with optimized parsing
func isInteger(value string) bool {
	// Quick pre-check: must start with digit or sign
	if len(value) == 0 {
		return false
	}
	first := value[0]
	if first != '+' && first != '-' && (first < '0' || first > '9') {
		return false
	}

	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

// isFloat checks if a value is a float with optimized parsing
func isFloat(value string) bool {
	// Quick pre-check: must contain digits
	hasDigit := false
	for _, r := range value {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}

	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// inferColumnsInfo infers column information from header and data records.
// At most typeSampleRows records are sampled per column.
func inferColumnsInfo(header header, records []Record) []columnInfo {
	columnCount := len(header)
	if columnCount == 0 {
		return nil
	}

	columns := make([]columnInfo, columnCount)

	// Initialize column info with headers
	for i, name := range header {
		columns[i] = columnInfo{
			Name: name,
			Type: columnTypeText, // Default to TEXT
		}
	}

	// If no records, return with TEXT types
	if len(records) == 0 {
		return columns
	}

	sample := records
	if len(sample) > typeSampleRows {
		sample = sample[:typeSampleRows]
	}

	// Collect values for each column
	for i := 0; i < columnCount; i++ {
		values := make([]string, 0, len(sample))
		for _, record := range sample {
			if i < len(record) {
				values = append(values, record[i])
			}
		}

		// Infer type from values
		columns[i].Type = inferColumnType(values)
	}

	return columns
}
