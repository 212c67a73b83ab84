// Package common provides shared types and constants used across the vhindex
// client-server communication layer.
package common

const (
	// DefaultTCPPort is the default port for TCP fallback connections.
	// Both daemon (server) and CLI (client) must use the same port.
	DefaultTCPPort = 3849

	// TCPHost is the hostname for TCP connections. This is intentionally
	// hardcoded to localhost for security - the daemon has no authentication
	// and must not be exposed to external interfaces.
	TCPHost = "localhost"

	// MaxMessageSize caps socket payloads to protect against oversized requests.
	MaxMessageSize = 16 * 1024 * 1024
)

// UpdateType represents the type of update message sent between the CLI
// client and the daemon server over the daemon's RPC connection.
type UpdateType string

const (
	// UPDATE_METALIST requests a metadata-row search across indexed files
	// (§6 metalist).
	UPDATE_METALIST UpdateType = "metalist"
	// UPDATE_FILELIST requests a plain file listing (§6 filelist).
	UPDATE_FILELIST UpdateType = "filelist"
	// UPDATE_FILE requests every metadata row for one file (§6 file).
	UPDATE_FILE UpdateType = "file"
	// UPDATE_METADATA_INSERT inserts an externally-supplied metadata row.
	UPDATE_METADATA_INSERT UpdateType = "metadata_insert"
	// UPDATE_METADATA_UPDATE replaces the value of an existing metadata row.
	UPDATE_METADATA_UPDATE UpdateType = "metadata_update"
	// UPDATE_METADATA_DELETE removes a metadata row.
	UPDATE_METADATA_DELETE UpdateType = "metadata_delete"
	// UPDATE_METADATA_PRIORITY changes the priority of one or more metadata
	// rows (§6 metadata_priority).
	UPDATE_METADATA_PRIORITY UpdateType = "metadata_priority"
	// UPDATE_ENGAGE asks the pipeline to process a path immediately, ahead
	// of the scanner's own schedule (§4.11).
	UPDATE_ENGAGE UpdateType = "engage"
	// UPDATE_DUMP triggers an immediate stats dump (§4.12.2).
	UPDATE_DUMP UpdateType = "dump"

	// UPDATE_GRABBER_LIST lists every registered grabber and its state.
	UPDATE_GRABBER_LIST UpdateType = "grabber_list"
	// UPDATE_GRABBER_STATE enables or disables a registered grabber.
	UPDATE_GRABBER_STATE UpdateType = "grabber_state"
	// UPDATE_GRABBER_PRIORITY changes a grabber's metadata priority.
	UPDATE_GRABBER_PRIORITY UpdateType = "grabber_priority"
	// UPDATE_ADD_EXT loads a new scriptgrabber extension into the engine.
	UPDATE_ADD_EXT UpdateType = "add_extension"
	// UPDATE_LIST_EXT requests a list of installed scriptgrabber extensions.
	UPDATE_LIST_EXT UpdateType = "list_extensions"
	// UPDATE_GET_EXT retrieves detailed information about a specific extension.
	UPDATE_GET_EXT UpdateType = "get_extension"
	// UPDATE_DELETE_EXT removes an extension from the system.
	UPDATE_DELETE_EXT UpdateType = "delete_extension"
	// UPDATE_ACTIVATE_EXT activates a previously deactivated extension.
	UPDATE_ACTIVATE_EXT UpdateType = "activate_extension"
	// UPDATE_DEACTIVATE_EXT deactivates an active extension without removing it.
	UPDATE_DEACTIVATE_EXT UpdateType = "deactivate_extension"
	// UPDATE_UNLOAD_EXT unloads an extension from memory.
	UPDATE_UNLOAD_EXT UpdateType = "unload_extension"
	// UPDATE_VERSION requests the daemon's version information.
	UPDATE_VERSION UpdateType = "version"
)

// GlobalEventWire represents a scanner/pipeline lifecycle event pushed to
// an attached client (§5 event surface), mirrored from vhlib's GlobalEvent.
type GlobalEventWire string

const (
	// EventScanStart indicates a scan loop has begun.
	EventScanStart GlobalEventWire = "scan_start"
	// EventScanEnd indicates a scan loop has finished.
	EventScanEnd GlobalEventWire = "scan_end"
	// EventFileEnded indicates one file has finished its pipeline pass.
	EventFileEnded GlobalEventWire = "file_ended"
	// EventMeta indicates a metadata row was inserted or updated.
	EventMeta GlobalEventWire = "meta"
	// EventError indicates a recoverable pipeline error occurred.
	EventError GlobalEventWire = "error"
)
