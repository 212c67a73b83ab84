// Package common provides shared types and constants used across the
// vhindex client-server communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for custom socket path.
	SocketPathEnv = "VHINDEX_SOCKET_PATH"

	// TCPPortEnv is the environment variable for custom TCP port.
	TCPPortEnv = "VHINDEX_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "VHINDEX_FORCE_TCP"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "VHINDEX_DEBUG"

	// PipeNameEnv is the environment variable for a custom Windows named
	// pipe name (see const_windows.go's PipePath).
	PipeNameEnv = "VHINDEX_PIPE_NAME"
)
