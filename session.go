package csvplugin

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Session is the loaded state for one source directory: the backing SQLite
// database, the inferred type map, and the warnings gathered during the
// load pass. A Session is immutable after loading; a directory change
// replaces it wholesale.
type Session struct {
	dir      string
	db       *sql.DB
	types    typeMap
	warnings []LoadWarning
}

// Dir returns the source directory this session was loaded from.
func (s *Session) Dir() string {
	return s.dir
}

// Warnings returns the load warnings recorded for this session.
func (s *Session) Warnings() []LoadWarning {
	return s.warnings
}

// Close releases the backing database.
func (s *Session) Close() error {
	return s.db.Close()
}

// Store owns the current Session. It reloads from scratch when the requested
// directory changes and serves from cache otherwise; cached sessions never
// re-read files, even if they changed on disk.
//
// Store is owned by the request-handling loop and is not safe for concurrent
// use; requests are processed one at a time.
type Store struct {
	logger  *logrus.Logger
	current *Session
}

// NewStore creates a session store that logs diagnostics through logger.
func NewStore(logger *logrus.Logger) *Store {
	return &Store{logger: logger}
}

// Current returns the cached session, or nil when nothing is loaded.
func (s *Store) Current() *Session {
	return s.current
}

// EnsureLoaded returns the session for dir, loading it first when dir
// differs from the cached session's directory or nothing is cached yet.
// Validation and load failures leave the cached session untouched.
func (s *Store) EnsureLoaded(ctx context.Context, dir string) (*Session, error) {
	if s.current != nil && s.current.dir == dir {
		return s.current, nil
	}

	if err := validateSourceDir(dir); err != nil {
		return nil, err
	}

	session, err := loadSession(ctx, dir, s.logger)
	if err != nil {
		return nil, err
	}

	// Swap only after a successful load; the old store is dropped in full.
	if s.current != nil {
		_ = s.current.Close()
	}
	s.current = session
	return session, nil
}

// Close releases the cached session, if any.
func (s *Store) Close() error {
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	return err
}

// validateSourceDir checks that dir exists and contains at least one
// recognized source file.
func validateSourceDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %q", ErrInvalidSource, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSource, dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && isSupportedFile(entry.Name()) {
			return nil
		}
	}
	return fmt.Errorf("%w: no recognized source files in: %q", ErrInvalidSource, dir)
}

// loadSession loads every recognized file in dir into a fresh in-memory
// database and returns the resulting session.
func loadSession(ctx context.Context, dir string, logger *logrus.Logger) (*Session, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	// database/sql would otherwise hand each pooled connection its own empty
	// :memory: database.
	db.SetMaxOpenConns(1)

	l := newLoader(db, logger)
	if err := l.loadDirectory(ctx, dir); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Session{
		dir:      dir,
		db:       db,
		types:    l.types,
		warnings: l.warnings,
	}, nil
}
