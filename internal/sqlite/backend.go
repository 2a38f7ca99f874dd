// Package sqlite implements the snapshot store on SQLite.
//
// The store keeps two tables in one local database file: an append-only log
// of relink operations and a table of versioned path snapshots keyed by a
// unique version string. Every operation acquires its own connection and
// transaction (open, execute, commit or rollback, close); no connection is
// held between calls.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// DatabaseFileName is the store file created inside the data directory.
const DatabaseFileName = "relink.db"

// busyTimeoutMs bounds how long a writer waits on a locked database before
// the operation fails.
const busyTimeoutMs = 5000

// Store is the SQLite-backed snapshot store.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.StoreConfig
	dbPath   string
	logger   *zap.Logger
}

var _ types.SnapshotStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a new SQLite store. The store is not attached; call
// Attach with a StoreConfig to initialize.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach validates config, creates DataDir if it does not exist, and makes
// sure the schema is present. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.StoreConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating data dir: %w", types.ErrPersistence, err)
	}

	s.dbPath = filepath.Join(dataDir, DatabaseFileName)
	s.config = config

	if err := s.initSchema(context.Background()); err != nil {
		return err
	}

	s.attached = true
	s.logger.Debug("snapshot store attached", zap.String("path", s.dbPath))
	return nil
}

// Detach marks the store detached. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attached = false
	return nil
}

// Path returns the database file path, or "" before Attach.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dbPath
}

func (s *Store) initSchema(ctx context.Context) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schemaDDL {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
		}
		return nil
	})
}

// withTx runs fn inside a transaction on a freshly opened connection. The
// connection is closed before withTx returns, whatever the outcome.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	return s.execTx(ctx, fn)
}

// execTx is withTx without the attach check. The caller must hold s.mu.
func (s *Store) execTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	db, err := sql.Open("sqlite", dsn(s.dbPath))
	if err != nil {
		return fmt.Errorf("%w: opening database: %w", types.ErrPersistence, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing database: %w", types.ErrPersistence, cerr)
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", types.ErrPersistence, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", types.ErrPersistence, err)
	}
	return nil
}

// dsn builds a file URI for path. The path is made absolute and escaped so
// that '#', '?' and '%' in directory names reach SQLite unchanged.
func dsn(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMs),
	}
	return u.String()
}

// classify maps driver errors onto the store's error values. Errors that
// already carry a store sentinel pass through unchanged.
func classify(err error) error {
	switch {
	case errors.Is(err, types.ErrVersionExists),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidVersion),
		errors.Is(err, types.ErrPersistence):
		return err
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", types.ErrVersionExists, err)
	default:
		return fmt.Errorf("%w: %w", types.ErrPersistence, err)
	}
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
