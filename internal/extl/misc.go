package extl

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

// defaultConfigDir resolves the base directory vhindex keeps its state in,
// falling back to the working directory if the OS has no notion of one.
func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".vhindex"
	}
	return filepath.Join(dir, "vhindex")
}

// Storage path variables define the locations for engine configuration and module files.
// These can be overridden using SetEngineStore for custom configurations.
var (
	// ENGINE_STORE is the base directory for engine configuration files.
	ENGINE_STORE = defaultConfigDir()
	// MODULE_STORE is the directory where extension modules are stored.
	MODULE_STORE = ENGINE_STORE + "/extstore/"

	// DEBUG_ENGINE_STORE is the base directory for debugger engine configuration.
	DEBUG_ENGINE_STORE = ENGINE_STORE + "/debugger/"
	// DEBUG_MODULE_STORE is the directory where debugger extension modules are stored.
	DEBUG_MODULE_STORE = DEBUG_ENGINE_STORE + "/extstore/"
)

const FUNCTION_REGEXP = `function\s(\w+)\(.*\)\s{(?:\n?.*)+}`

const (
	DEF_MODULE_ENTRY = "main.js"
	DEF_MODULE_HASH  = 16

	// InitCallback, GrabCallback, UninitCallback and LoopCallback are the
	// function names a scriptgrabber module is expected to export (§4.9).
	InitCallback   = "init"
	GrabCallback   = "grab"
	UninitCallback = "uninit"
	LoopCallback   = "loop"
)

// Error variables define sentinel errors for extension-related failures.
var (
	// ErrInvalidExtension is returned when an extension lacks a valid manifest.json.
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrExtractNotDefined is returned when a module does not define a
	// required callback.
	ErrExtractNotDefined = errors.New("required function not defined")
	// ErrGrabNotDefined is returned when a module does not export grab().
	ErrGrabNotDefined = errors.New("grab function not defined")
	// ErrInvalidReturnType is returned when a callback returns a value the
	// host cannot decode into the expected shape.
	ErrInvalidReturnType = errors.New("invalid return type")
	// ErrEntrypointNotFound is returned when the module's entrypoint file does not exist.
	ErrEntrypointNotFound = errors.New("entrypoint not found")

	// ErrModuleNotFound is returned when a requested module does not exist in the engine.
	ErrModuleNotFound = errors.New("module not found")
)

func generateHash(n int) string {
	t := make([]byte, n/2)
	_, _ = rand.Read(t)
	return hex.EncodeToString(t)
}

// SetEngineStore configures custom storage directories for the extension engine.
// It creates the necessary directory structure and updates the global storage path variables.
// This is useful for testing or when using non-default configuration locations.
func SetEngineStore(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	ENGINE_STORE = dir
	MODULE_STORE = filepath.Join(ENGINE_STORE, "extstore")
	DEBUG_ENGINE_STORE = filepath.Join(ENGINE_STORE, "debugger")
	DEBUG_MODULE_STORE = filepath.Join(DEBUG_ENGINE_STORE, "extstore")
	if err := os.MkdirAll(MODULE_STORE, 0755); err != nil {
		return err
	}
	return os.MkdirAll(DEBUG_MODULE_STORE, 0755)
}
