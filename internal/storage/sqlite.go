package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/service"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

var _ service.Storage = (*SQLiteStorage)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowScanner is implemented by *sql.Rows and *sql.Row.
type RowScanner interface {
	Scan(dest ...any) error
}

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithClock overrides the time source used for timestamps and "today"/"this month" windows.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStorage) {
		s.now = now
	}
}

// WithLocation sets the time zone that defines calendar day and month boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *SQLiteStorage) {
		s.location = loc
	}
}

// SQLiteStorage is the single gateway to the embedded database. It owns the
// only connection handle of the process; every store shares it.
type SQLiteStorage struct {
	db       *sql.DB
	now      func() time.Time
	location *time.Location
	dbPath   string
	mu       sync.Mutex
	ready    atomic.Bool
}

// NewSQLiteStorage creates a storage gateway for dbPath. The database file is
// opened lazily on first use. Call Init before using any store.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	s := &SQLiteStorage{
		dbPath:   dbPath,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// conn returns the shared handle, opening it on first call.
func (s *SQLiteStorage) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	if s.dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", s.dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, common.NewStorageError("open database", err)
	}

	// One handle for the process; an in-memory database would otherwise be
	// private to each pooled connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, common.NewStorageError("ping database", err)
	}

	s.db = db
	return db, nil
}

// Close closes the database connection if it was opened.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready.Store(false)
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database location this gateway was created with.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Init applies pending migrations, seeds the default categories and marks the
// storage ready. It is safe to call more than once.
func (s *SQLiteStorage) Init(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	if _, err := s.SeedCategories(ctx); err != nil {
		return err
	}
	s.ready.Store(true)
	return nil
}

// Ready reports whether Init has completed.
func (s *SQLiteStorage) Ready() bool {
	return s.ready.Load()
}

func (s *SQLiteStorage) ensureReady(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !s.ready.Load() {
		return fmt.Errorf("%w: call Init before using stores", common.ErrNotInitialized)
	}
	return nil
}

// Exec runs a raw statement without parameters or results.
func (s *SQLiteStorage) Exec(ctx context.Context, stmt string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return classifyError("exec", err)
	}
	return nil
}

// Run executes a parameterized insert, update or delete and returns the number
// of affected rows.
func (s *SQLiteStorage) Run(ctx context.Context, stmt string, args ...any) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	return run(ctx, db, stmt, args...)
}

// Query runs a parameterized query and converts every row with scan.
func Query[T any](ctx context.Context, s *SQLiteStorage, scan func(RowScanner) (T, error), stmt string, args ...any) ([]T, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	return queryRows(ctx, db, scan, stmt, args...)
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including on panic.
func (s *SQLiteStorage) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return common.NewStorageError("commit transaction", err)
	}
	return nil
}

func run(ctx context.Context, q querier, stmt string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, classifyError("run", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.NewStorageError("rows affected", err)
	}
	return n, nil
}

func queryRows[T any](ctx context.Context, q querier, scan func(RowScanner) (T, error), stmt string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, classifyError("query", err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, common.NewStorageError("scan row", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate rows", err)
	}
	return out, nil
}

// classifyError maps engine errors onto the error taxonomy. Uniqueness and
// primary key violations become ErrDuplicate; anything else is a StorageError.
func classifyError(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", common.ErrDuplicate, err)
		}
	}
	return common.NewStorageError(op, err)
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func (s *SQLiteStorage) fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(s.location)
}
