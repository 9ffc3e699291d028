package csvplugin

import (
	"strconv"
	"testing"
)

func TestInferColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []string
		expected columnType
	}{
		{
			name:     "all integers",
			values:   []string{"123", "456", "789"},
			expected: columnTypeInteger,
		},
		{
			name:     "mixed integers and floats",
			values:   []string{"123", "45.6", "789"},
			expected: columnTypeReal,
		},
		{
			name:     "all floats",
			values:   []string{"12.3", "45.6", "78.9"},
			expected: columnTypeReal,
		},
		{
			name:     "single non-integer demotes the column",
			values:   []string{"1", "2", "3", "4.5", "6"},
			expected: columnTypeReal,
		},
		{
			name:     "mixed numbers and text",
			values:   []string{"123", "hello", "789"},
			expected: columnTypeText,
		},
		{
			name:     "all text",
			values:   []string{"hello", "world", "test"},
			expected: columnTypeText,
		},
		{
			name:     "empty values",
			values:   []string{"", "", ""},
			expected: columnTypeText,
		},
		{
			name:     "whitespace-only values",
			values:   []string{"  ", "\t", ""},
			expected: columnTypeText,
		},
		{
			name:     "no values",
			values:   []string{},
			expected: columnTypeText,
		},
		{
			name:     "integers with empty values",
			values:   []string{"123", "", "789"},
			expected: columnTypeInteger,
		},
		{
			name:     "negative integers",
			values:   []string{"-123", "456", "-789"},
			expected: columnTypeInteger,
		},
		{
			name:     "negative floats",
			values:   []string{"-12.3", "45.6", "-78.9"},
			expected: columnTypeReal,
		},
		{
			name:     "scientific notation",
			values:   []string{"1e10", "2.5e-3", "3.14e2"},
			expected: columnTypeReal,
		},
		{
			name:     "dates are text",
			values:   []string{"2023-01-15", "2023-02-20"},
			expected: columnTypeText,
		},
		{
			name:     "integer overflow falls back to real",
			values:   []string{"99999999999999999999", "1"},
			expected: columnTypeReal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := inferColumnType(tt.values)
			if result != tt.expected {
				t.Errorf("inferColumnType(%v) = %v, want %v", tt.values, result, tt.expected)
			}
		})
	}
}

func TestInferColumnTypeSampling(t *testing.T) {
	t.Parallel()

	// Only the first typeSampleRows records are sampled, so text after the
	// sample window must not demote an integer-looking column.
	records := make([]Record, 0, typeSampleRows+1)
	for i := 0; i < typeSampleRows; i++ {
		records = append(records, newRecord([]string{strconv.Itoa(i)}))
	}
	records = append(records, newRecord([]string{"not a number"}))

	columns := inferColumnsInfo(newHeader([]string{"n"}), records)
	if len(columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(columns))
	}
	if columns[0].Type != columnTypeInteger {
		t.Errorf("expected INTEGER from sampled prefix, got %s", columns[0].Type)
	}
}

func TestInferColumnsInfo(t *testing.T) {
	t.Parallel()

	t.Run("mixed column types", func(t *testing.T) {
		header := newHeader([]string{"id", "name", "price"})
		records := []Record{
			newRecord([]string{"1", "Alice", "9.99"}),
			newRecord([]string{"2", "Bob", "15"}),
			newRecord([]string{"3", "Charlie", "0.5"}),
		}

		result := inferColumnsInfo(header, records)

		expected := []columnInfo{
			{Name: "id", Type: columnTypeInteger},
			{Name: "name", Type: columnTypeText},
			{Name: "price", Type: columnTypeReal},
		}

		if len(result) != len(expected) {
			t.Fatalf("Expected %d columns, got %d", len(expected), len(result))
		}

		for i, exp := range expected {
			if result[i].Name != exp.Name {
				t.Errorf("Column %d: expected name %s, got %s", i, exp.Name, result[i].Name)
			}
			if result[i].Type != exp.Type {
				t.Errorf("Column %d: expected type %s, got %s", i, exp.Type, result[i].Type)
			}
		}
	})

	t.Run("empty records", func(t *testing.T) {
		header := newHeader([]string{"col1", "col2"})

		result := inferColumnsInfo(header, nil)

		if len(result) != 2 {
			t.Fatalf("Expected 2 columns, got %d", len(result))
		}
		for i, col := range result {
			if col.Type != columnTypeText {
				t.Errorf("Column %d: expected TEXT type for empty records, got %s", i, col.Type)
			}
		}
	})

	t.Run("empty header", func(t *testing.T) {
		if result := inferColumnsInfo(newHeader(nil), nil); result != nil {
			t.Errorf("expected nil for empty header, got %v", result)
		}
	})
}
