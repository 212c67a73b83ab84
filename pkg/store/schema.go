package store

// SchemaVersion is the schema version this build writes and expects to find
// (the "vh_db_version" row of the info table, §3/§6).
const SchemaVersion = 2

const schemaV1 = `
CREATE TABLE IF NOT EXISTS info (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL UNIQUE,
	mtime      INTEGER NOT NULL,
	type       INTEGER NOT NULL DEFAULT 0,
	checked    INTEGER NOT NULL DEFAULT 1,
	outofpath  INTEGER NOT NULL DEFAULT 0,
	interrupted INTEGER NOT NULL DEFAULT -1
);
CREATE INDEX IF NOT EXISTS idx_files_checked ON files(checked);
CREATE INDEX IF NOT EXISTS idx_files_outofpath ON files(outofpath);
CREATE INDEX IF NOT EXISTS idx_files_interrupted ON files(interrupted);

CREATE TABLE IF NOT EXISTS meta_keys (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE
);

CREATE TABLE IF NOT EXISTS meta_values (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	value TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS grabbers (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS file_meta (
	file_id     INTEGER NOT NULL REFERENCES files(id),
	key_id      INTEGER NOT NULL REFERENCES meta_keys(id),
	value_id    INTEGER NOT NULL REFERENCES meta_values(id),
	meta_group  INTEGER NOT NULL DEFAULT 0,
	lang        INTEGER NOT NULL DEFAULT 0,
	external    INTEGER NOT NULL DEFAULT 0,
	priority    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (file_id, key_id, value_id)
);
CREATE INDEX IF NOT EXISTS idx_file_meta_file ON file_meta(file_id);

CREATE TABLE IF NOT EXISTS file_grabbers (
	file_id    INTEGER NOT NULL REFERENCES files(id),
	grabber_id INTEGER NOT NULL REFERENCES grabbers(id),
	PRIMARY KEY (file_id, grabber_id)
);

CREATE TABLE IF NOT EXISTS dlcontext (
	file_id INTEGER NOT NULL REFERENCES files(id),
	url     TEXT NOT NULL,
	kind    TEXT NOT NULL DEFAULT 'default',
	name    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dlcontext_file ON dlcontext(file_id);
`

// schemaV2 adds nothing structural over v1 in this build; it exists so a
// real migration step has somewhere to live (v1 databases produced by an
// earlier build upgrade in place) without requiring a second physical
// schema. Kept separate from schemaV1 per §4.3's "each (from,to) version
// pair is a small named sequence of DDL/DML steps executed inside a
// transaction".
const schemaV2 = ``

// migrations maps a (from) version to the DDL/DML executed to reach (from+1).
// Open walks this table from the persisted version up to SchemaVersion.
var migrations = map[int]string{
	1: schemaV2,
}
