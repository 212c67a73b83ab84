package extl

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"errors"

	"github.com/dop251/goja"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

// Module is a scriptgrabber extension: a JS file exporting a grab function
// and, optionally, init, uninit and loop functions plus caps/priority/enabled
// fields, executed in its own goja runtime (§4.9).
type Module struct {
	// unique identifier for the module, generated automatically.
	ModuleId string `json:"-"`
	// Name of the module.
	Name string `json:"name"`
	// Version of the module.
	Version string `json:"version"`
	// Description of the module.
	Description string `json:"description"`
	// Matches is array of regex patterns that this
	// module can handle.
	Matches []string `json:"matches"`
	// main file for the module (default: main.js)
	Entrypoint string `json:"entrypoint,omitempty"`
	// Assets should be filled with all the files that
	// must be loaded with the extension.
	// For example: any extra js files that are imported in main.js
	Assets []string `json:"assets,omitempty"`
	// module path (*/extstore/{module_hash}/)
	modulePath string
	// module exclusive js runtime
	runtime *Runtime
	l       *log.Logger

	initFn   goja.Callable
	grabFn   goja.Callable
	uninitFn goja.Callable
	loopFn   goja.Callable
}

// OpenModule tries to create a module object by reading its manifest.
func OpenModule(l *log.Logger, path string) (*Module, error) {
	manifestPath := filepath.Join(path, "manifest.json")
	file, err := os.Open(manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrInvalidExtension
		}
		return nil, err
	}
	defer file.Close()
	var m = Module{
		l:          l,
		modulePath: strings.TrimSuffix(path, "/"),
	}
	err = json.NewDecoder(file).Decode(&m)
	if err != nil {
		return nil, err
	}
	if m.Entrypoint == "" {
		m.Entrypoint = DEF_MODULE_ENTRY
	}
	return &m, nil
}

// Load loads the module to the engine and activates it.
// Each module is loaded in a new js runtime, hence isolated
// from each other.
func (m *Module) Load() error {
	var err error
	// create a new js runtime and bind it to the module
	// pass modulePath as working directory
	m.runtime, err = NewRuntime(m.l, m.modulePath)
	if err != nil {
		return err
	}
	// main.js file for the module
	entryPath := filepath.Join(m.modulePath, m.Entrypoint)
	file, err := os.Open(entryPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrEntrypointNotFound
		}
		return err
	}
	defer file.Close()
	b, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	// run the main.js code in the newly made runtime
	// to load symbols
	_, err = m.runtime.RunString(string(b))
	if err != nil {
		return err
	}
	m.grabFn, err = m.callable(GrabCallback)
	if err != nil {
		return ErrGrabNotDefined
	}
	// init/uninit/loop are optional
	m.initFn, _ = m.callable(InitCallback)
	m.uninitFn, _ = m.callable(UninitCallback)
	m.loopFn, _ = m.callable(LoopCallback)
	if m.initFn != nil {
		if _, err := m.initFn(goja.Undefined()); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) callable(name string) (goja.Callable, error) {
	fn, ok := goja.AssertFunction(m.runtime.Get(name))
	if !ok {
		return nil, ErrExtractNotDefined
	}
	return fn, nil
}

// scriptMetaPair is the JSON shape a script exchanges metadata pairs in;
// it mirrors vhlib.MetaPair but keeps the script contract independent of
// the host module's field layout.
type scriptMetaPair struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Group    int    `json:"group"`
	Language int    `json:"language"`
	Priority int8   `json:"priority"`
}

type scriptDownloadItem struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type scriptGrabResult struct {
	Meta      []scriptMetaPair     `json:"meta"`
	Downloads []scriptDownloadItem `json:"downloads"`
}

// Grab invokes the module's grab(path, known) function, passing already
// known metadata as a JSON array of {key,value,group,language,priority}
// objects, and parses its {meta, downloads} return value.
func (m *Module) Grab(path string, known []vhlib.MetaPair) (vhlib.GrabResult, error) {
	knownWire := make([]scriptMetaPair, len(known))
	for i, k := range known {
		knownWire[i] = scriptMetaPair{Key: k.Key, Value: k.Value, Group: int(k.Group), Language: int(k.Language), Priority: k.Priority}
	}
	v, err := m.grabFn(goja.Undefined(), m.runtime.ToValue(path), m.runtime.ToValue(knownWire))
	if err != nil {
		return vhlib.GrabResult{}, err
	}
	b, err := json.Marshal(v.Export())
	if err != nil {
		return vhlib.GrabResult{}, ErrInvalidReturnType
	}
	var out scriptGrabResult
	if err := json.Unmarshal(b, &out); err != nil {
		return vhlib.GrabResult{}, ErrInvalidReturnType
	}
	res := vhlib.GrabResult{
		Meta:      make([]vhlib.MetaPair, len(out.Meta)),
		Downloads: make([]vhlib.DownloadItem, len(out.Downloads)),
	}
	for i, mp := range out.Meta {
		res.Meta[i] = vhlib.MetaPair{Key: mp.Key, Value: mp.Value, Group: vhlib.Group(mp.Group), Language: vhlib.Language(mp.Language), Priority: mp.Priority}
	}
	for i, d := range out.Downloads {
		res.Downloads[i] = vhlib.DownloadItem{URL: d.URL, Kind: d.Kind, Name: d.Name}
	}
	return res, nil
}

// Uninit runs the module's uninit() hook, if defined.
func (m *Module) Uninit() error {
	if m.uninitFn == nil {
		return nil
	}
	_, err := m.uninitFn(goja.Undefined())
	return err
}

// Loop runs the module's loop() hook once, if defined (§4.9's scripted
// long-poll grabbers). Nothing in this module calls it on a schedule.
func (m *Module) Loop() error {
	if m.loopFn == nil {
		return nil
	}
	_, err := m.loopFn(goja.Undefined())
	return err
}

// Caps reads the module's declared caps array, defaulting to empty.
func (m *Module) Caps() []string {
	v := m.runtime.Get("caps")
	if v == nil {
		return nil
	}
	var caps []string
	if err := m.runtime.ExportTo(v, &caps); err != nil {
		return nil
	}
	return caps
}

// Priority reads the module's declared priority field, defaulting to 0.
func (m *Module) Priority() int8 {
	v := m.runtime.Get("priority")
	if v == nil {
		return 0
	}
	return int8(v.ToInteger())
}

// ScriptEnabled reads the module's declared enabled field, defaulting to true.
func (m *Module) ScriptEnabled() bool {
	v := m.runtime.Get("enabled")
	if v == nil {
		return true
	}
	return v.ToBoolean()
}
