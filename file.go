package csvplugin

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileType represents supported source file types.
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions.
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
	// extGZ is the gzip compression extension
	extGZ = ".gz"
	// extBZ2 is the bzip2 compression extension
	extBZ2 = ".bz2"
	// extXZ is the xz compression extension
	extXZ = ".xz"
	// extZSTD is the zstd compression extension
	extZSTD = ".zst"
)

// file represents a source file that can be converted to a table.
type file struct {
	path     string
	fileType FileType
}

// newFile creates a new file
func newFile(path string) *file {
	return &file{
		path:     path,
		fileType: detectFileType(path),
	}
}

// isSupportedFile checks if the file has a recognized extension.
// Matching is case-insensitive.
func isSupportedFile(fileName string) bool {
	return detectFileType(fileName) != FileTypeUnsupported
}

// detectFileType detects file type from extension, considering compressed files
func detectFileType(path string) FileType {
	name := strings.ToLower(filepath.Base(path))

	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}

	switch filepath.Ext(name) {
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	case extXLSX:
		return FileTypeXLSX
	default:
		return FileTypeUnsupported
	}
}

// getPath returns file path
func (f *file) getPath() string {
	return f.path
}

// getFileType returns file type
func (f *file) getFileType() FileType {
	return f.fileType
}

// isTSV returns true if the file is TSV format
func (f *file) isTSV() bool {
	return f.fileType == FileTypeTSV
}

// isXLSX returns true if the file is XLSX format
func (f *file) isXLSX() bool {
	return f.fileType == FileTypeXLSX
}

// isCompressed returns true if file is compressed
func (f *file) isCompressed() bool {
	return f.isGZ() || f.isBZ2() || f.isXZ() || f.isZSTD()
}

// isGZ returns true if file is gzip compressed
func (f *file) isGZ() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extGZ)
}

// isBZ2 returns true if file is bzip2 compressed
func (f *file) isBZ2() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extBZ2)
}

// isXZ returns true if file is xz compressed
func (f *file) isXZ() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extXZ)
}

// isZSTD returns true if file is zstd compressed
func (f *file) isZSTD() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extZSTD)
}

// openReader opens the file and returns a reader that handles decompression.
// Open failures are wrapped with errOpenSource so the loader can tell hard
// filesystem errors from per-file data problems.
func (f *file) openReader() (io.Reader, func() error, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", errOpenSource, f.path, err)
	}

	var reader io.Reader = file
	closer := file.Close

	switch {
	case f.isGZ():
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, err
		}
		reader = gzReader
		closer = func() error {
			_ = gzReader.Close()
			return file.Close()
		}
	case f.isBZ2():
		reader = bzip2.NewReader(file)
	case f.isXZ():
		xzReader, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, err
		}
		reader = xzReader
	case f.isZSTD():
		decoder, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, err
		}
		reader = decoder.IOReadCloser()
		closer = func() error {
			decoder.Close()
			return file.Close()
		}
	}

	return reader, closer, nil
}

// decodeText wraps a reader with permissive UTF-8 decoding: a leading byte
// order mark is removed and invalid byte sequences are replaced with
// U+FFFD instead of failing.
func decodeText(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// toTable converts file contents to a table structure using the given
// field delimiter. The delimiter is ignored for XLSX files.
func (f *file) toTable(delimiter rune) (*table, error) {
	if f.isXLSX() {
		return f.parseXLSX()
	}
	return f.parseDelimited(delimiter)
}

// parseDelimited parses CSV or TSV content with the given delimiter.
//
// The first record is the header row, trimmed field-by-field. Data rows are
// trimmed the same way; rows whose field count differs from the header's are
// dropped, not padded. Files without even a header row return errEmptyFile.
func (f *file) parseDelimited(delimiter rune) (*table, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer closer()

	csvReader := csv.NewReader(decodeText(reader))
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", errEmptyFile, f.path)
	}

	header := newHeader(trimFields(records[0]))

	tbl := newTableBuilder(f.path, header)
	for _, row := range records[1:] {
		tbl.addRow(row)
	}
	return tbl.build(), nil
}

// parseXLSX parses the first sheet of an XLSX workbook.
//
// XLSX is not a delimited format and excelize trims trailing empty cells,
// so short rows are padded to the header width instead of dropped.
func (f *file) parseXLSX() (*table, error) {
	var xlsxFile *excelize.File
	var err error

	if f.isCompressed() {
		reader, closer, openErr := f.openReader()
		if openErr != nil {
			return nil, openErr
		}
		defer closer()

		data, readErr := io.ReadAll(reader)
		if readErr != nil {
			return nil, readErr
		}
		xlsxFile, err = excelize.OpenReader(bytes.NewReader(data))
	} else {
		xlsxFile, err = excelize.OpenFile(f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", f.path, err)
	}
	defer func() {
		_ = xlsxFile.Close()
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%w: %s", errEmptyFile, f.path)
	}

	rows, err := xlsxFile.GetRows(sheetNames[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetNames[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", errEmptyFile, f.path)
	}

	header := newHeader(trimFields(rows[0]))

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		for j := range header {
			if j < len(row) {
				record[j] = strings.TrimSpace(row[j])
			}
		}
		records = append(records, record)
	}

	return newTable(tableFromFilePath(f.path), header, records), nil
}

// tableBuilder accumulates data rows for one table, dropping ragged ones.
type tableBuilder struct {
	path    string
	header  header
	records []Record
	dropped int
}

func newTableBuilder(path string, header header) *tableBuilder {
	return &tableBuilder{path: path, header: header}
}

// addRow retains the row only if its field count matches the header's.
func (b *tableBuilder) addRow(fields []string) {
	if len(fields) != len(b.header) {
		b.dropped++
		return
	}
	b.records = append(b.records, newRecord(trimFields(fields)))
}

func (b *tableBuilder) build() *table {
	tbl := newTable(tableFromFilePath(b.path), b.header, b.records)
	tbl.droppedRows = b.dropped
	return tbl
}

// trimFields trims whitespace from every field of a row.
func trimFields(fields []string) []string {
	trimmed := make([]string, len(fields))
	for i, field := range fields {
		trimmed[i] = strings.TrimSpace(field)
	}
	return trimmed
}

// duplicateColumnNames reports which trimmed column names occur more than
// once. Duplicates are not an error, they propagate into the schema as-is,
// but callers surface them as load warnings.
func duplicateColumnNames(columns header) []string {
	seen := make(map[string]int, len(columns))
	var dups []string
	for _, col := range columns {
		seen[col]++
		if seen[col] == 2 {
			dups = append(dups, col)
		}
	}
	return dups
}
