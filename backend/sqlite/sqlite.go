// Package sqlite provides a durable binary index backend on SQLite.
//
// Codes live in a single table ordered by an autoincrement sequence, so
// enumeration order is insertion order and survives reopening the database.
// The pure-Go modernc.org/sqlite driver is used; no cgo is required.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver

	"github.com/hupe1980/binvec"
	"github.com/hupe1980/binvec/distance"
)

// Compile-time checks to ensure Store satisfies the capability interfaces.
var (
	_ binvec.Backend       = (*Store)(nil)
	_ binvec.CustomIDStore = (*Store)(nil)
	_ binvec.Eraser        = (*Store)(nil)
	_ binvec.Fetcher       = (*Store)(nil)
	_ binvec.RangeSearcher = (*Store)(nil)
	_ binvec.Mergeable     = (*Store)(nil)
)

// DriverName is the database/sql driver used by Open.
const DriverName = "sqlite"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options contains configuration options for the SQLite backend.
type Options struct {
	// Table is the name of the table holding the codes.
	Table string
}

// DefaultOptions contains the default configuration options for the SQLite backend.
var DefaultOptions = Options{
	Table: "codes",
}

// Store keeps (id, code) pairs in a SQLite table.
type Store struct {
	db       *sql.DB
	owned    bool
	codeSize int
	table    string
	n        int
}

// Open opens (or creates) a SQLite database at dsn and returns a backend
// for codes of codeSize bytes. Use ":memory:" for a transient database.
func Open(dsn string, codeSize int, optFns ...func(o *Options)) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	// One connection: SQLite serializes writers, and ":memory:" databases
	// are private to their connection.
	db.SetMaxOpenConns(1)

	s, err := New(db, codeSize, optFns...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New creates a backend on an existing database handle. The table is created
// if it does not exist. Close does not close db.
func New(db *sql.DB, codeSize int, optFns ...func(o *Options)) (*Store, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if !tableName.MatchString(opts.Table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q: %w", opts.Table, binvec.ErrInvalidArgument)
	}
	if codeSize <= 0 {
		return nil, fmt.Errorf("sqlite: invalid code size %d: %w", codeSize, binvec.ErrInvalidArgument)
	}

	s := &Store{db: db, codeSize: codeSize, table: opts.Table}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		id   INTEGER NOT NULL,
		code BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("sqlite: create table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS `+s.table+`_id ON `+s.table+` (id)`); err != nil {
		return nil, fmt.Errorf("sqlite: create index: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.table).Scan(&s.n); err != nil {
		return nil, fmt.Errorf("sqlite: count: %w", err)
	}
	return s, nil
}

// Close releases the database if it was opened by Open.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (*Store) Name() string { return "sqlite" }

// CodeSize implements binvec.Backend.
func (s *Store) CodeSize() int { return s.codeSize }

// Len implements binvec.Backend.
func (s *Store) Len() int { return s.n }

// Store implements binvec.Backend. All codes are inserted in one transaction.
func (s *Store) Store(ids []int64, codes []byte) error {
	return s.insert(ids, codes)
}

// StoreCustom implements binvec.CustomIDStore.
func (s *Store) StoreCustom(ids []int64, codes []byte) error {
	return s.insert(ids, codes)
}

func (s *Store) insert(ids []int64, codes []byte) (err error) {
	if len(codes) != len(ids)*s.codeSize {
		return fmt.Errorf("sqlite: %d bytes for %d codes of %d bytes: %w", len(codes), len(ids), s.codeSize, binvec.ErrInvalidArgument)
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+s.table+` (id, code) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err = stmt.ExecContext(ctx, id, codes[i*s.codeSize:(i+1)*s.codeSize]); err != nil {
			return fmt.Errorf("sqlite: insert id %d: %w", id, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	s.n += len(ids)
	return nil
}

// Clear implements binvec.Backend.
func (s *Store) Clear() error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM `+s.table); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}
	s.n = 0
	return nil
}

// Scan implements binvec.Backend. fn must not issue queries on the same
// database.
func (s *Store) Scan(fn func(id int64, code []byte) bool) error {
	rows, err := s.db.QueryContext(context.Background(), `SELECT id, code FROM `+s.table+` ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("sqlite: scan: %w", err)
	}
	defer rows.Close()

	var (
		id   int64
		code []byte
	)
	for rows.Next() {
		if err := rows.Scan(&id, &code); err != nil {
			return fmt.Errorf("sqlite: scan row: %w", err)
		}
		if len(code) != s.codeSize {
			return fmt.Errorf("sqlite: id %d has a %d-byte code, want %d", id, len(code), s.codeSize)
		}
		if !fn(id, code) {
			break
		}
	}
	return rows.Err()
}

// Erase implements binvec.Eraser.
func (s *Store) Erase(ids []int64) (removed int, err error) {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM `+s.table+` WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		res, execErr := stmt.ExecContext(ctx, id)
		if execErr != nil {
			return 0, fmt.Errorf("sqlite: delete id %d: %w", id, execErr)
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return 0, fmt.Errorf("sqlite: delete id %d: %w", id, raErr)
		}
		removed += int(affected)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	s.n -= removed
	return removed, nil
}

// Fetch implements binvec.Fetcher. With duplicate ids the first stored code
// is returned.
func (s *Store) Fetch(id int64, dst []byte) error {
	var code []byte
	err := s.db.QueryRowContext(context.Background(),
		`SELECT code FROM `+s.table+` WHERE id = ? ORDER BY seq LIMIT 1`, id).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: id %d: %w", id, binvec.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("sqlite: fetch id %d: %w", id, err)
	}
	copy(dst, code)
	return nil
}

// RangeSearch implements binvec.RangeSearcher with the generic scan.
func (s *Store) RangeSearch(oracle distance.CodeFunc, queries []byte, n int, radius int32, sel binvec.IDSelector, res *binvec.RangeSearchResult) error {
	return binvec.ScanRange(s, oracle, queries, n, radius, sel, res)
}

// CheckMergeable implements binvec.Mergeable.
func (s *Store) CheckMergeable(other binvec.Backend) error {
	if other.CodeSize() != s.codeSize {
		return fmt.Errorf("sqlite: code size %d != %d", other.CodeSize(), s.codeSize)
	}
	return nil
}
