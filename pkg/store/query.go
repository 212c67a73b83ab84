package store

import (
	"strings"

	"github.com/vaulth/vhindex/pkg/vhtypes"
)

// MetaRowFull is one row of the metalist/file Query API shape (§6):
// metalist(search, filetype?, restrictions[]).
type MetaRowFull struct {
	MetaID   int64
	FileID   int64
	Path     string
	Name     string
	Value    string
	Lang     vhtypes.Language
	Group    vhtypes.Group
	External bool
}

// Restriction narrows a metalist/filelist/file query to a specific
// metadata key and/or group, mirroring the restrictions[] argument of §6's
// Query API. A zero-value Restriction matches every row.
type Restriction struct {
	Key      string
	HasGroup bool
	Group    vhtypes.Group
}

// FileListRow is one row of the filelist Query API shape.
type FileListRow struct {
	ID   int64
	Path string
	Type vhtypes.FileType
}

// FileList returns every file matching filetype (if hasType) and every
// restriction: a restriction keeps the files that carry a metadata
// association with its key and, when HasGroup is set, its group.
func (s *Store) FileList(hasType bool, filetype vhtypes.FileType, restrictions []Restriction) ([]FileListRow, error) {
	q := `SELECT DISTINCT f.id, f.path, f.type FROM files f`
	var args []interface{}
	var where []string

	for i, r := range restrictions {
		alias := aliasFor(i)
		q += ` JOIN file_meta ` + alias + ` ON ` + alias + `.file_id = f.id`
		if r.Key != "" {
			q += ` JOIN meta_keys ` + alias + `k ON ` + alias + `k.id = ` + alias + `.key_id AND ` + alias + `k.name = ?`
			args = append(args, r.Key)
		}
		if r.HasGroup {
			where = append(where, alias+`.meta_group = ?`)
			args = append(args, int(r.Group))
		}
	}
	if hasType {
		where = append(where, `f.type = ?`)
		args = append(args, int(filetype))
	}
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY f.path`

	rows, err := s.execer().Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileListRow
	for rows.Next() {
		var r FileListRow
		var typ int
		if err := rows.Scan(&r.ID, &r.Path, &typ); err != nil {
			return nil, err
		}
		r.Type = vhtypes.FileType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// MetaList returns every metadata association whose value contains search
// (case-insensitive substring match, empty search matches everything),
// narrowed by filetype (if hasType) and restrictions, per §6's metalist.
func (s *Store) MetaList(search string, hasType bool, filetype vhtypes.FileType, restrictions []Restriction) ([]MetaRowFull, error) {
	q := `
		SELECT fm.rowid, f.id, f.path, mk.name, mv.value, fm.lang, fm.meta_group, fm.external
		FROM file_meta fm
		JOIN files f ON f.id = fm.file_id
		JOIN meta_keys mk ON mk.id = fm.key_id
		JOIN meta_values mv ON mv.id = fm.value_id`
	var args []interface{}
	var where []string

	if search != "" {
		where = append(where, `mv.value LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(search)+"%")
	}
	if hasType {
		where = append(where, `f.type = ?`)
		args = append(args, int(filetype))
	}
	for _, r := range restrictions {
		if r.Key != "" {
			where = append(where, `mk.name = ?`)
			args = append(args, r.Key)
		}
		if r.HasGroup {
			where = append(where, `fm.meta_group = ?`)
			args = append(args, int(r.Group))
		}
	}
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY f.path, mk.name`

	return s.scanMetaRows(q, args...)
}

// FileMeta returns every metadata association for id_or_path (resolved by path
// here; callers resolving by numeric file id should look it up first via
// FileList), narrowed by restrictions, per §6's file().
func (s *Store) FileMeta(path string, restrictions []Restriction) ([]MetaRowFull, error) {
	q := `
		SELECT fm.rowid, f.id, f.path, mk.name, mv.value, fm.lang, fm.meta_group, fm.external
		FROM file_meta fm
		JOIN files f ON f.id = fm.file_id
		JOIN meta_keys mk ON mk.id = fm.key_id
		JOIN meta_values mv ON mv.id = fm.value_id
		WHERE f.path = ?`
	args := []interface{}{path}
	for _, r := range restrictions {
		if r.Key != "" {
			q += ` AND mk.name = ?`
			args = append(args, r.Key)
		}
		if r.HasGroup {
			q += ` AND fm.meta_group = ?`
			args = append(args, int(r.Group))
		}
	}
	q += ` ORDER BY mk.name`
	return s.scanMetaRows(q, args...)
}

func (s *Store) scanMetaRows(q string, args ...interface{}) ([]MetaRowFull, error) {
	rows, err := s.execer().Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MetaRowFull
	for rows.Next() {
		var r MetaRowFull
		var lang, group, external int
		if err := rows.Scan(&r.MetaID, &r.FileID, &r.Path, &r.Name, &r.Value, &lang, &group, &external); err != nil {
			return nil, err
		}
		r.Lang = vhtypes.Language(lang)
		r.Group = vhtypes.Group(group)
		r.External = external != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func aliasFor(i int) string {
	return "r" + string(rune('a'+i))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
