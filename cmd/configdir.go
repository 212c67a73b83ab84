package cmd

import (
	"os"
	"path/filepath"
)

// ConfigDir is the base directory the CLI keeps its daemon state in (PID
// file, database, cookie jar). It mirrors internal/extl's ENGINE_STORE
// pattern: resolved once from the OS config directory, overridable for
// tests and custom deployments via SetConfigDir.
var ConfigDir = defaultConfigDir()

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".vhindex"
	}
	return filepath.Join(dir, "vhindex")
}

// SetConfigDir overrides ConfigDir, creating it if necessary.
func SetConfigDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	ConfigDir = dir
	return nil
}

// DBPath returns the default database file path under ConfigDir.
func DBPath() string {
	return filepath.Join(ConfigDir, "vhindex.db")
}
