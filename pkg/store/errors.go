package store

import "errors"

var (
	// ErrSchemaTooNew is returned by Open when the database's schema version
	// is newer than this build understands.
	ErrSchemaTooNew = errors.New("store: schema version is newer than supported by this build")
	// ErrNoMigrationPath is returned by Open when no migration sequence is
	// registered from the database's current version to the target version.
	ErrNoMigrationPath = errors.New("store: no migration path from persisted schema version")
	// ErrFileNotFound is returned by operations addressing a file path absent
	// from the store.
	ErrFileNotFound = errors.New("store: file not found")
	// ErrTxAlreadyOpen is not returned by Begin, which treats a call while a
	// transaction is already open as a successful no-op.
	ErrTxAlreadyOpen = errors.New("store: transaction already open")
	// ErrNoTx is not returned by Commit or StepTransaction, which treat a
	// call with no open transaction as a successful no-op.
	ErrNoTx = errors.New("store: no transaction open")
)
