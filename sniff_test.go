package csvplugin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sample   string
		expected rune
	}{
		{
			name:     "comma separated",
			sample:   "a,b,c\n1,2,3\n4,5,6\n",
			expected: ',',
		},
		{
			name:     "semicolon separated",
			sample:   "a;b;c\n1;2;3\n",
			expected: ';',
		},
		{
			name:     "tab separated",
			sample:   "a\tb\tc\n1\t2\t3\n",
			expected: '\t',
		},
		{
			name:     "pipe separated",
			sample:   "a|b|c\n1|2|3\n",
			expected: '|',
		},
		{
			name:     "empty sample defaults to comma",
			sample:   "",
			expected: ',',
		},
		{
			name:     "single column defaults to comma",
			sample:   "header\nvalue\n",
			expected: ',',
		},
		{
			name:     "semicolons inside comma fields",
			sample:   "a,b\nx;y;z,2\nq;r;s,4\n",
			expected: ';',
		},
		{
			name: "inconsistent candidate loses to consistent one",
			// Commas vary per line, pipes are stable.
			sample:   "a|b,c\n1|2\n3|4,,\n",
			expected: '|',
		},
		{
			name:     "no trailing newline",
			sample:   "a;b;c\n1;2;3",
			expected: ';',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectDelimiter(tt.sample); got != tt.expected {
				t.Errorf("detectDelimiter(%q) = %q, want %q", tt.sample, got, tt.expected)
			}
		})
	}
}

func TestDetectDelimiterTruncatedSample(t *testing.T) {
	t.Parallel()

	// A sample that fills the sniff window is likely cut mid-row; the
	// partial last line must not break consistency detection.
	var b strings.Builder
	for b.Len() < sniffSampleSize {
		b.WriteString("one;two;three\n")
	}
	sample := b.String()[:sniffSampleSize]

	if got := detectDelimiter(sample); got != ';' {
		t.Errorf("detectDelimiter(truncated) = %q, want ';'", got)
	}
}

func TestResolveDelimiter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("tsv bypasses detection", func(t *testing.T) {
		// Commas dominate the content but the extension wins.
		path := write("data.tsv", "a,b,c\td\n1,2,3\t4\n")
		if got := resolveDelimiter(newFile(path)); got != '\t' {
			t.Errorf("resolveDelimiter(.tsv) = %q, want tab", got)
		}
	})

	t.Run("csv with semicolons", func(t *testing.T) {
		path := write("data.csv", "a;b\n1;2\n")
		if got := resolveDelimiter(newFile(path)); got != ';' {
			t.Errorf("resolveDelimiter = %q, want ';'", got)
		}
	})

	t.Run("byte order mark is tolerated", func(t *testing.T) {
		path := write("bom.csv", "\xef\xbb\xbfa;b\n1;2\n")
		if got := resolveDelimiter(newFile(path)); got != ';' {
			t.Errorf("resolveDelimiter = %q, want ';'", got)
		}
	})

	t.Run("missing file defaults to comma", func(t *testing.T) {
		path := filepath.Join(dir, "missing.csv")
		if got := resolveDelimiter(newFile(path)); got != ',' {
			t.Errorf("resolveDelimiter(missing) = %q, want ','", got)
		}
	})
}
