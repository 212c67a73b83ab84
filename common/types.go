package common

import "github.com/vaulth/vhindex/pkg/vhlib"

// RestrictionParam is the wire form of a vhlib.Restriction: a metadata key,
// optionally narrowed to one of the fixed §3 groups.
type RestrictionParam struct {
	Key      string     `json:"key"`
	HasGroup bool        `json:"has_group,omitempty"`
	Group    vhlib.Group `json:"group,omitempty"`
}

func (r RestrictionParam) toRestriction() vhlib.Restriction {
	return vhlib.Restriction{Key: r.Key, HasGroup: r.HasGroup, Group: r.Group}
}

// toRestrictions converts a wire restriction list to vhlib's form.
func toRestrictions(rs []RestrictionParam) []vhlib.Restriction {
	if len(rs) == 0 {
		return nil
	}
	out := make([]vhlib.Restriction, len(rs))
	for i, r := range rs {
		out[i] = r.toRestriction()
	}
	return out
}

// ToRestrictions is the exported form of toRestrictions, for handlers in
// other packages.
func ToRestrictions(rs []RestrictionParam) []vhlib.Restriction { return toRestrictions(rs) }

// MetaListParams is the request body for UPDATE_METALIST (§6 metalist).
type MetaListParams struct {
	Search       string             `json:"search"`
	HasType      bool               `json:"has_type,omitempty"`
	Filetype     vhlib.FileType     `json:"filetype,omitempty"`
	Restrictions []RestrictionParam `json:"restrictions,omitempty"`
}

// MetaRow is the wire form of vhlib.MetaRow.
type MetaRow struct {
	MetaID   int64        `json:"meta_id"`
	FileID   int64        `json:"file_id"`
	Path     string       `json:"path"`
	Name     string       `json:"name"`
	Value    string       `json:"value"`
	Lang     vhlib.Language `json:"lang"`
	Group    vhlib.Group    `json:"group"`
	External bool           `json:"external"`
}

func fromMetaRow(r vhlib.MetaRow) MetaRow {
	return MetaRow{
		MetaID: r.MetaID, FileID: r.FileID, Path: r.Path, Name: r.Name,
		Value: r.Value, Lang: r.Lang, Group: r.Group, External: r.External,
	}
}

// FromMetaRows converts a slice of vhlib.MetaRow to the wire form.
func FromMetaRows(rows []vhlib.MetaRow) []MetaRow {
	out := make([]MetaRow, len(rows))
	for i, r := range rows {
		out[i] = fromMetaRow(r)
	}
	return out
}

// MetaListResponse is the response body for UPDATE_METALIST.
type MetaListResponse struct {
	Rows []MetaRow `json:"rows"`
}

// FileListParams is the request body for UPDATE_FILELIST (§6 filelist).
type FileListParams struct {
	HasType      bool               `json:"has_type,omitempty"`
	Filetype     vhlib.FileType     `json:"filetype,omitempty"`
	Restrictions []RestrictionParam `json:"restrictions,omitempty"`
}

// FileRow is the wire form of vhlib.FileRow.
type FileRow struct {
	ID   int64          `json:"id"`
	Path string         `json:"path"`
	Type vhlib.FileType `json:"type"`
}

// FileListResponse is the response body for UPDATE_FILELIST.
type FileListResponse struct {
	Files []FileRow `json:"files"`
}

// FileParams is the request body for UPDATE_FILE (§6 file).
type FileParams struct {
	Path         string             `json:"path"`
	Restrictions []RestrictionParam `json:"restrictions,omitempty"`
}

// FileResponse is the response body for UPDATE_FILE.
type FileResponse struct {
	Rows []MetaRow `json:"rows"`
}

// MetadataInsertParams is the request body for UPDATE_METADATA_INSERT.
type MetadataInsertParams struct {
	Path  string         `json:"path"`
	Key   string         `json:"key"`
	Value string         `json:"value"`
	Lang  vhlib.Language `json:"lang,omitempty"`
	Group vhlib.Group    `json:"group,omitempty"`
}

// MetadataUpdateParams is the request body for UPDATE_METADATA_UPDATE.
type MetadataUpdateParams struct {
	Path     string         `json:"path"`
	Key      string         `json:"key"`
	OldValue string         `json:"old_value"`
	NewValue string         `json:"new_value"`
	Lang     vhlib.Language `json:"lang,omitempty"`
}

// MetadataDeleteParams is the request body for UPDATE_METADATA_DELETE.
type MetadataDeleteParams struct {
	Path  string `json:"path"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MetadataPriorityParams is the request body for UPDATE_METADATA_PRIORITY.
// Key/Value are pointers because §6 leaves both optional: absent means
// "every key"/"every value for that key" respectively — see
// vhlib.Query.MetadataPriority's dispatch by nil-ness.
type MetadataPriorityParams struct {
	Path     string  `json:"path"`
	Key      *string `json:"key,omitempty"`
	Value    *string `json:"value,omitempty"`
	Priority int8    `json:"priority"`
}

// EngageParams is the request body for UPDATE_ENGAGE (§4.11 on-demand entry
// point).
type EngageParams struct {
	Path string `json:"path"`
}

// GrabberInfo is the wire form of vhlib.GrabberInfo.
type GrabberInfo struct {
	Name     string `json:"name"`
	Priority int8   `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

// GrabberListResponse is the response body for UPDATE_GRABBER_LIST.
type GrabberListResponse struct {
	Grabbers []GrabberInfo `json:"grabbers"`
}

// GrabberStateParams is the request body for UPDATE_GRABBER_STATE.
type GrabberStateParams struct {
	GrabberID string `json:"grabber_id"`
	Enabled   bool   `json:"enabled"`
}

// GrabberPriorityParams is the request body for UPDATE_GRABBER_PRIORITY.
type GrabberPriorityParams struct {
	GrabberID string `json:"grabber_id"`
	Priority  int8   `json:"priority"`
}

// VersionResponse is the response body for UPDATE_VERSION.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildType string `json:"build_type"`
}

// EmptyResult is the response body for RPC methods that return no data.
type EmptyResult struct{}

// InputExtension identifies a scriptgrabber extension by its engine-assigned
// module ID, for the get/delete/activate/deactivate extension operations.
type InputExtension struct {
	ExtensionId string `json:"extension_id"`
}

// ExtensionInfo is the wire form of a loaded extl.Module.
type ExtensionInfo struct {
	ExtensionId string   `json:"extension_id"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Matches     []string `json:"matches,omitempty"`
}

// ExtensionInfoShort is the summary form used by the list-extensions
// operation.
type ExtensionInfoShort struct {
	ExtensionId string `json:"extension_id"`
	Name        string `json:"name"`
	Activated   bool   `json:"activated"`
}

// ExtensionName carries just the display name of an extension, e.g. as the
// result of a delete.
type ExtensionName struct {
	Name string `json:"name"`
}

// ListExtensionsParams is the request body for UPDATE_LIST_EXT.
type ListExtensionsParams struct {
	All bool `json:"all,omitempty"`
}

// LoadExtensionParams is the request body for UPDATE_ADD_EXT: installs a
// scriptgrabber extension from a filesystem path.
type LoadExtensionParams struct {
	Path string `json:"path"`
}
