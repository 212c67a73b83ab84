package store

import (
	"database/sql"
	"errors"

	"github.com/vaulth/vhindex/pkg/vhtypes"
)

// FileMTime returns the persisted mtime for path. ok is false if the path is
// not yet present in the store.
func (s *Store) FileMTime(path string) (mtime int64, ok bool, err error) {
	row := s.execer().QueryRow(`SELECT mtime FROM files WHERE path = ?`, path)
	err = row.Scan(&mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	return mtime, err == nil, err
}

// FileInterrupted returns the persisted interrupted tri-state for path.
func (s *Store) FileInterrupted(path string) (vhtypes.Interrupted, error) {
	var v int
	row := s.execer().QueryRow(`SELECT interrupted FROM files WHERE path = ?`, path)
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vhtypes.InterruptedDone, ErrFileNotFound
		}
		return 0, err
	}
	return vhtypes.Interrupted(v), nil
}

// FileInsert inserts a brand-new file row with interrupted=InFlight and
// checked=1, per §4.6's NewFile(file) handling for an unseen path.
func (s *Store) FileInsert(path string, mtime int64, outOfPath bool) (int64, error) {
	res, err := s.execer().Exec(
		`INSERT INTO files(path, mtime, checked, outofpath, interrupted) VALUES (?, ?, 1, ?, ?)`,
		path, mtime, boolInt(outOfPath), int(vhtypes.InterruptedInFlight),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FileUpdate rewrites mtime/outofpath for an existing file and re-arms
// interrupted=InFlight and checked=1, per §4.6's NewFile(file) handling for a
// path whose mtime changed.
func (s *Store) FileUpdate(path string, mtime int64, outOfPath bool) error {
	_, err := s.execer().Exec(
		`UPDATE files SET mtime = ?, checked = 1, outofpath = ?, interrupted = ? WHERE path = ?`,
		mtime, boolInt(outOfPath), int(vhtypes.InterruptedInFlight), path,
	)
	return err
}

// FileSetType records the parser's file-type assignment; the type is final
// thereafter (invariant 6) until a subsequent FileUpdate/FileSetType call.
func (s *Store) FileSetType(path string, t vhtypes.FileType) error {
	_, err := s.execer().Exec(`UPDATE files SET type = ? WHERE path = ?`, int(t), path)
	return err
}

// FileInterruptedClear sets interrupted=Done for path, the last step of
// End(file) (§4.6).
func (s *Store) FileInterruptedClear(path string) error {
	_, err := s.execer().Exec(`UPDATE files SET interrupted = 0 WHERE path = ?`, path)
	return err
}

// FileInterruptedFixMinusOneToOne rewrites every InFlight(-1) row to
// Started(1); run at the end of a loop (or at shutdown) so a crash mid-pass
// is recognised as "needs re-entry" on the next run (§4.6, P2).
func (s *Store) FileInterruptedFixMinusOneToOne() (int64, error) {
	res, err := s.execer().Exec(`UPDATE files SET interrupted = 1 WHERE interrupted = -1`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FileCheckedClearAll resets checked=0 on every row, run at the start of
// each scan loop (§4.5/§4.6).
func (s *Store) FileCheckedClearAll() error {
	_, err := s.execer().Exec(`UPDATE files SET checked = 0`)
	return err
}

// FileDelete removes a file row outright (used once its metadata has already
// been deleted by FileDataDelete).
func (s *Store) FileDelete(path string) error {
	row := s.execer().QueryRow(`SELECT id FROM files WHERE path = ?`, path)
	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if _, err := s.execer().Exec(`DELETE FROM file_grabbers WHERE file_id = ?`, id); err != nil {
		return err
	}
	if _, err := s.execer().Exec(`DELETE FROM dlcontext WHERE file_id = ?`, id); err != nil {
		return err
	}
	_, err := s.execer().Exec(`DELETE FROM files WHERE id = ?`, id)
	return err
}

// FileDataDelete deletes every non-external metadata association for path,
// per invariant 3 (external rows survive) and S3's deletion scenario.
func (s *Store) FileDataDelete(path string) error {
	id, err := s.fileID(path)
	if err != nil {
		return err
	}
	_, err = s.execer().Exec(`DELETE FROM file_meta WHERE file_id = ? AND external = 0`, id)
	return err
}

func (s *Store) fileID(path string) (int64, error) {
	var id int64
	row := s.execer().QueryRow(`SELECT id FROM files WHERE path = ?`, path)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrFileNotFound
		}
		return 0, err
	}
	return id, nil
}

// File returns the full row for path.
func (s *Store) File(path string) (*File, error) {
	row := s.execer().QueryRow(`SELECT id, path, mtime, type, checked, outofpath, interrupted FROM files WHERE path = ?`, path)
	f := &File{}
	var checked, oop, typ, interrupted int
	if err := row.Scan(&f.ID, &f.Path, &f.MTime, &typ, &checked, &oop, &interrupted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	f.Type = vhtypes.FileType(typ)
	f.Checked = checked != 0
	f.OutOfPath = oop != 0
	f.Interrupted = vhtypes.Interrupted(interrupted)
	return f, nil
}

// MetadataAssociate inserts key/value (creating either if absent) and writes
// or updates the file_meta association. Re-associating an existing internal
// row updates group/lang/priority in place; an existing external row is left
// untouched (invariant 3) unless external itself is being set true by this
// very call (i.e. the Query API's explicit insert, §6).
func (s *Store) MetadataAssociate(path, key, value string, group vhtypes.Group, lang vhtypes.Language, external bool, priority int8) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	keyID, err := s.upsertLookup(`meta_keys`, `name`, key)
	if err != nil {
		return err
	}
	valueID, err := s.upsertLookup(`meta_values`, `value`, value)
	if err != nil {
		return err
	}

	var existingExternal int
	row := s.execer().QueryRow(`SELECT external FROM file_meta WHERE file_id=? AND key_id=? AND value_id=?`, fileID, keyID, valueID)
	err = row.Scan(&existingExternal)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.execer().Exec(
			`INSERT INTO file_meta(file_id, key_id, value_id, meta_group, lang, external, priority) VALUES (?,?,?,?,?,?,?)`,
			fileID, keyID, valueID, int(group), int(lang), boolInt(external), priority,
		)
		return err
	case err != nil:
		return err
	case existingExternal != 0 && !external:
		// invariant 3: external rows are untouched by pipeline re-writes.
		return nil
	default:
		_, err = s.execer().Exec(
			`UPDATE file_meta SET meta_group=?, lang=?, external=?, priority=? WHERE file_id=? AND key_id=? AND value_id=?`,
			int(group), int(lang), boolInt(external), priority, fileID, keyID, valueID,
		)
		return err
	}
}

// upsertLookup inserts name into the given single-column-unique lookup table
// if absent and returns its id either way, absorbing the unique-violation
// race the way §7's StorageError policy describes ("insert or lookup" idiom).
func (s *Store) upsertLookup(table, column, value string) (int64, error) {
	row := s.execer().QueryRow(`SELECT id FROM `+table+` WHERE `+column+` = ?`, value)
	var id int64
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := s.execer().Exec(`INSERT INTO `+table+`(`+column+`) VALUES (?)`, value)
	if err != nil {
		// lost the insert race to a concurrent caller within the same
		// transaction scope is not possible (single-writer), but a UNIQUE
		// violation here still means someone beat us between the SELECT and
		// the INSERT outside a transaction; fall back to a second lookup.
		row := s.execer().QueryRow(`SELECT id FROM `+table+` WHERE `+column+` = ?`, value)
		if serr := row.Scan(&id); serr == nil {
			return id, nil
		}
		return 0, err
	}
	return res.LastInsertId()
}

// MetadataDelete removes one file_meta association.
func (s *Store) MetadataDelete(path, key, value string) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	_, err = s.execer().Exec(`
		DELETE FROM file_meta WHERE file_id = ?
		AND key_id = (SELECT id FROM meta_keys WHERE name = ?)
		AND value_id = (SELECT id FROM meta_values WHERE value = ?)`,
		fileID, key, value)
	return err
}

// MetadataPriorityFile sets priority on every metadata association for path.
// Kept distinct from MetadataPriorityFileMeta/MetadataPriorityFileMetaValue
// per the Open Question resolution in §9: the three scopes bind to three
// separate prepared statements rather than one statement reused with a
// sometimes-absent bind parameter.
func (s *Store) MetadataPriorityFile(path string, priority int8) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	_, err = s.execer().Exec(`UPDATE file_meta SET priority = ? WHERE file_id = ?`, priority, fileID)
	return err
}

// MetadataPriorityFileMeta sets priority on every association for (path, key).
func (s *Store) MetadataPriorityFileMeta(path, key string, priority int8) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	_, err = s.execer().Exec(`
		UPDATE file_meta SET priority = ? WHERE file_id = ?
		AND key_id = (SELECT id FROM meta_keys WHERE name = ?)`,
		priority, fileID, key)
	return err
}

// MetadataPriorityFileMetaValue sets priority on the single (path, key,
// value) association.
func (s *Store) MetadataPriorityFileMetaValue(path, key, value string, priority int8) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	_, err = s.execer().Exec(`
		UPDATE file_meta SET priority = ? WHERE file_id = ?
		AND key_id = (SELECT id FROM meta_keys WHERE name = ?)
		AND value_id = (SELECT id FROM meta_values WHERE value = ?)`,
		priority, fileID, key, value)
	return err
}

// GrabberAssociate records that grabberName has run for path.
func (s *Store) GrabberAssociate(path, grabberName string) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	grabberID, err := s.upsertLookup(`grabbers`, `name`, grabberName)
	if err != nil {
		return err
	}
	_, err = s.execer().Exec(`INSERT OR IGNORE INTO file_grabbers(file_id, grabber_id) VALUES (?, ?)`, fileID, grabberID)
	return err
}

// FileGrabbers returns the names of every grabber that has run for path.
func (s *Store) FileGrabbers(path string) ([]string, error) {
	fileID, err := s.fileID(path)
	if err != nil {
		return nil, err
	}
	rows, err := s.execer().Query(`
		SELECT g.name FROM file_grabbers fg JOIN grabbers g ON g.id = fg.grabber_id
		WHERE fg.file_id = ?`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DLContextSave replaces the persisted pending-download list for path.
func (s *Store) DLContextSave(path string, items []DLContextRow) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	if _, err := s.execer().Exec(`DELETE FROM dlcontext WHERE file_id = ?`, fileID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := s.execer().Exec(`INSERT INTO dlcontext(file_id, url, kind, name) VALUES (?,?,?,?)`, fileID, it.URL, it.Kind, it.Name); err != nil {
			return err
		}
	}
	return nil
}

// FileDLContext returns the persisted pending downloads for path, restored
// on interrupted recovery (S7).
func (s *Store) FileDLContext(path string) ([]DLContextRow, error) {
	fileID, err := s.fileID(path)
	if err != nil {
		return nil, err
	}
	rows, err := s.execer().Query(`SELECT url, kind, name FROM dlcontext WHERE file_id = ?`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DLContextRow
	for rows.Next() {
		var r DLContextRow
		if err := rows.Scan(&r.URL, &r.Kind, &r.Name); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DLContextDeleteAll clears a file's download context once every item has
// been fetched.
func (s *Store) DLContextDeleteAll(path string) error {
	fileID, err := s.fileID(path)
	if err != nil {
		return err
	}
	_, err = s.execer().Exec(`DELETE FROM dlcontext WHERE file_id = ?`, fileID)
	return err
}

// NextCheckedZeroNotOutOfPath iterates files with checked=0 and
// outofpath=0 -- candidates for the end-of-loop "disappeared file" sweep
// (§4.6, P1/P6).
func (s *Store) NextCheckedZeroNotOutOfPath() ([]string, error) {
	return s.pathsWhere(`checked = 0 AND outofpath = 0`)
}

// NextOutOfPath iterates files marked out-of-path (never subject to the
// disappeared-file sweep, per the Out-of-path glossary entry).
func (s *Store) NextOutOfPath() ([]string, error) {
	return s.pathsWhere(`outofpath = 1`)
}

func (s *Store) pathsWhere(where string) ([]string, error) {
	rows, err := s.execer().Query(`SELECT path FROM files WHERE ` + where)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Cleanup deletes orphan meta_keys, meta_values and grabbers rows no longer
// referenced by any file_meta/file_grabbers row (invariant 1), returning the
// number of rows removed.
func (s *Store) Cleanup() (int64, error) {
	var total int64
	stmts := []string{
		`DELETE FROM meta_values WHERE id NOT IN (SELECT DISTINCT value_id FROM file_meta)`,
		`DELETE FROM meta_keys WHERE id NOT IN (SELECT DISTINCT key_id FROM file_meta)`,
		`DELETE FROM grabbers WHERE id NOT IN (SELECT DISTINCT grabber_id FROM file_grabbers)`,
	}
	for _, q := range stmts {
		res, err := s.execer().Exec(q)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
