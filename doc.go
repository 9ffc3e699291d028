// Package csvplugin exposes a directory of delimited text files as a
// queryable SQL database for the Tabularis host application.
//
// Every .csv / .tsv file in a source directory (optionally gzip-, bzip2-,
// xz-, or zstd-compressed, plus .xlsx workbooks) becomes one table in an
// in-memory SQLite3 database. Column types are inferred from a sampled
// prefix of each column's values, and the host talks to the plugin over a
// line-delimited JSON-RPC protocol on stdin/stdout (see the rpc package
// and cmd/csvplugin).
//
// The package is organized around a handful of small components:
//
//   - delimiter sniffing (sniff.go)
//   - column type inference (column_inference.go)
//   - file parsing into table structures (file.go, table.go)
//   - loading tables into SQLite3 (loader.go)
//   - session lifecycle per source directory (session.go)
//   - paginated query execution (query.go)
//   - schema introspection (catalog.go)
//   - RPC method dispatch (handler.go)
//
// Source files are read-only data: the plugin never writes back to them,
// and record-level write requests from the host always fail with
// ErrReadOnlySource.
package csvplugin
