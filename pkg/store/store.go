// Package store implements the persistence contract of §4.3: a relational
// store with transaction batching, keyed by absolute file path, holding the
// data model of §3 (files, metadata keys/values, grabbers, associations,
// download contexts). The concrete backend is modernc.org/sqlite accessed
// through database/sql, following the reference pack's own embedded-SQLite
// idiom (snapetech-plexTuner/internal/plex/epg.go: sql.Open("sqlite", path),
// hand-written DDL, SELECT last_insert_rowid() after insert) rather than the
// reference's own GOB-file persistence, which has no relational query
// surface to build the Query API (§6) on top of.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/vaulth/vhindex/pkg/vhtypes"
)

// File is one row of the files table.
type File struct {
	ID          int64
	Path        string
	MTime       int64
	Type        vhtypes.FileType
	Checked     bool
	OutOfPath   bool
	Interrupted vhtypes.Interrupted
}

// MetaRow is one file_meta association joined with its key/value text.
type MetaRow struct {
	FileID   int64
	Key      string
	Value    string
	Group    vhtypes.Group
	Lang     vhtypes.Language
	External bool
	Priority int8
}

// DLContextRow is one pending download item persisted for a file.
type DLContextRow struct {
	URL  string
	Kind string
	Name string
}

// Store is a single-writer handle onto the relational data model. Begin,
// Commit and StepTransaction take an internal lock; the row operations do
// not, and read the open transaction without it, running inside that
// transaction when one is open. Per §4.3 the DB-Manager is the only stage
// that should hold one: every other stage reaches persistence only via
// queued messages.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	stmts  map[string]*sql.Stmt
	tx     *sql.Tx
	sinceCommit int
}

// Open creates the schema if missing, otherwise validates/upgrades it, and
// returns a ready Store backed by the single file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single open connection gives us the serialised-writer behaviour
	// §4.3.1 calls for without relying on SQLite's own busy-timeout retries.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, stmts: make(map[string]*sql.Stmt)}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	var version int
	row := s.db.QueryRow(`SELECT value FROM info WHERE key = 'vh_db_version'`)
	err := row.Scan(&version)
	switch {
	case err == sql.ErrNoRows, err != nil && isNoSuchTable(err):
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
		_, err := s.db.Exec(`INSERT OR REPLACE INTO info(key, value) VALUES ('vh_db_version', ?)`, SchemaVersion)
		return err
	case err != nil:
		return fmt.Errorf("store: read schema version: %w", err)
	}
	if version > SchemaVersion {
		return ErrSchemaTooNew
	}
	for v := version; v < SchemaVersion; v++ {
		ddl, ok := migrations[v]
		if !ok {
			return ErrNoMigrationPath
		}
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if ddl != "" {
			if _, err := tx.Exec(ddl); err != nil {
				tx.Rollback()
				return fmt.Errorf("store: migrate %d->%d: %w", v, v+1, err)
			}
		}
		if _, err := tx.Exec(`UPDATE info SET value = ? WHERE key = 'vh_db_version'`, v+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func isNoSuchTable(err error) bool {
	return err != nil && (containsAny(err.Error(), "no such table"))
}

func containsAny(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// stmt lazily prepares and caches a statement by name, replacing the
// reference architecture's enum-indexed SQL statement cache with a plain map
// (§9 design notes).
func (s *Store) stmt(name, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stmts[name]; ok {
		return st, nil
	}
	var st *sql.Stmt
	var err error
	if s.tx != nil {
		st, err = s.tx.Prepare(query)
	} else {
		st, err = s.db.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	s.stmts[name] = st
	return st, nil
}

// execer returns whatever currently holds the active transaction, or the raw
// *sql.DB if none is open, so callers can issue statements uniformly.
func (s *Store) execer() interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
} {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Begin opens a transaction; it is a no-op (succeeding) if one is already
// open, since StepTransaction commits and reopens transparently.
func (s *Store) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	s.tx = tx
	s.clearTxStmts()
	return nil
}

// clearTxStmts drops cached statements prepared against a prior transaction;
// callers must hold s.mu.
func (s *Store) clearTxStmts() {
	for k, st := range s.stmts {
		st.Close()
		delete(s.stmts, k)
	}
}

// Commit commits the open transaction, if any.
func (s *Store) Commit() error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.sinceCommit = 0
	s.clearTxStmts()
	s.mu.Unlock()
	if tx == nil {
		return nil
	}
	return tx.Commit()
}

// StepTransaction commits and reopens the transaction every interval
// successful row-modifying operations (§4.3's commit_int / step_transaction
// batching). Call it after each operation that changed a row; interval <= 0
// disables batching (commit only happens on explicit Commit).
func (s *Store) StepTransaction(interval int) error {
	if interval <= 0 {
		return nil
	}
	s.mu.Lock()
	s.sinceCommit++
	due := s.sinceCommit >= interval
	s.mu.Unlock()
	if !due {
		return s.Begin()
	}
	if err := s.Commit(); err != nil {
		return err
	}
	return s.Begin()
}

// Close commits any open transaction and closes the database.
func (s *Store) Close() error {
	if err := s.Commit(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
