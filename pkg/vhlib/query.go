package vhlib

import "github.com/vaulth/vhindex/pkg/store"

// Restriction narrows a query to a metadata key and/or group; the zero
// value matches everything. It mirrors store.Restriction one-to-one so
// embedders never need to import pkg/store directly.
type Restriction struct {
	Key      string
	HasGroup bool
	Group    Group
}

func (r Restriction) toStore() store.Restriction {
	return store.Restriction{Key: r.Key, HasGroup: r.HasGroup, Group: r.Group}
}

func restrictionsToStore(rs []Restriction) []store.Restriction {
	out := make([]store.Restriction, len(rs))
	for i, r := range rs {
		out[i] = r.toStore()
	}
	return out
}

// MetaRow is one row returned by MetaList/FileMeta (§6's metalist/file
// shape).
type MetaRow struct {
	MetaID   int64
	FileID   int64
	Path     string
	Name     string
	Value    string
	Lang     Language
	Group    Group
	External bool
}

func fromStoreMetaRow(r store.MetaRowFull) MetaRow {
	return MetaRow{MetaID: r.MetaID, FileID: r.FileID, Path: r.Path, Name: r.Name, Value: r.Value, Lang: r.Lang, Group: r.Group, External: r.External}
}

// FileRow is one row returned by FileList (§6's filelist shape).
type FileRow struct {
	ID   int64
	Path string
	Type FileType
}

// Query is the read/write surface of §6's Query API, bound to one running
// Handle's store. Embedders reach it via Handle.Query(). Every method goes
// straight to the Store without passing through the DB-Manager, so a write
// made while the DB-Manager holds a transaction open runs inside that
// transaction.
type Query struct {
	st *store.Store
}

func newQuery(st *store.Store) *Query {
	return &Query{st: st}
}

// Query returns the embedder-facing read/write query surface. It is valid
// only while the Handle is running (between Run and Uninit).
func (h *Handle) Query() *Query {
	return newQuery(h.st)
}

// FileList implements §6's filelist(filetype?, restrictions[]).
func (q *Query) FileList(filetype *FileType, restrictions []Restriction) ([]FileRow, error) {
	hasType := filetype != nil
	var ft FileType
	if hasType {
		ft = *filetype
	}
	rows, err := q.st.FileList(hasType, ft, restrictionsToStore(restrictions))
	if err != nil {
		return nil, err
	}
	out := make([]FileRow, len(rows))
	for i, r := range rows {
		out[i] = FileRow{ID: r.ID, Path: r.Path, Type: r.Type}
	}
	return out, nil
}

// MetaList implements §6's metalist(search, filetype?, restrictions[]).
func (q *Query) MetaList(search string, filetype *FileType, restrictions []Restriction) ([]MetaRow, error) {
	hasType := filetype != nil
	var ft FileType
	if hasType {
		ft = *filetype
	}
	rows, err := q.st.MetaList(search, hasType, ft, restrictionsToStore(restrictions))
	if err != nil {
		return nil, err
	}
	out := make([]MetaRow, len(rows))
	for i, r := range rows {
		out[i] = fromStoreMetaRow(r)
	}
	return out, nil
}

// File implements §6's file(id_or_path, restrictions[]) for the path form;
// callers holding only a numeric id should resolve it via FileList first.
func (q *Query) File(path string, restrictions []Restriction) ([]MetaRow, error) {
	rows, err := q.st.FileMeta(path, restrictionsToStore(restrictions))
	if err != nil {
		return nil, err
	}
	out := make([]MetaRow, len(rows))
	for i, r := range rows {
		out[i] = fromStoreMetaRow(r)
	}
	return out, nil
}

// MetadataInsert implements §6's metadata_insert(path, key, value, lang,
// group): the row is marked external so the pipeline never touches it
// again (invariant 3).
func (q *Query) MetadataInsert(path, key, value string, lang Language, group Group) error {
	return q.st.MetadataAssociate(path, key, value, group, lang, true, 0)
}

// MetadataUpdate implements §6's metadata_update(path, key, old, new,
// lang): it deletes the (key, old) association and inserts (key, new) as
// external, since file_meta's identity is the (file, key, value) triple.
func (q *Query) MetadataUpdate(path, key, oldValue, newValue string, lang Language) error {
	if err := q.st.MetadataDelete(path, key, oldValue); err != nil {
		return err
	}
	return q.st.MetadataAssociate(path, key, newValue, GroupMiscellaneous, lang, true, 0)
}

// MetadataDelete implements §6's metadata_delete(path, key, value).
func (q *Query) MetadataDelete(path, key, value string) error {
	return q.st.MetadataDelete(path, key, value)
}

// MetadataPriority implements §6's metadata_priority(path, key?, value?,
// priority), resolving to one of the three store-level scopes depending on
// which optional arguments are present (§9's Open Question resolution).
func (q *Query) MetadataPriority(path string, key, value *string, priority int8) error {
	switch {
	case key == nil:
		return q.st.MetadataPriorityFile(path, priority)
	case value == nil:
		return q.st.MetadataPriorityFileMeta(path, *key, priority)
	default:
		return q.st.MetadataPriorityFileMetaValue(path, *key, *value, priority)
	}
}
