package csvplugin

import "errors"

// Sentinel errors shared across the package.
var (
	// ErrInvalidSource indicates the source directory is missing or holds no
	// recognized files. The wrapping error names the offending path.
	ErrInvalidSource = errors.New("csvplugin: invalid source directory")

	// ErrReadOnlySource is returned for record-level write requests.
	// Source files are the authoritative data and are never modified.
	ErrReadOnlySource = errors.New("csvplugin: source files are read-only")

	// errEmptyFile marks a source file without even a header row. Such files
	// are skipped during loading, not reported as failures.
	errEmptyFile = errors.New("csvplugin: empty file")

	// errOpenSource marks a hard filesystem failure while opening a source
	// file. Unlike per-file parse errors, it aborts the whole load pass.
	errOpenSource = errors.New("csvplugin: cannot open source file")
)
