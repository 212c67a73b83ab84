package vhlib

import "time"

// configKind tags a ConfigOption so Handle.SetConfig can switch on it without
// reflection, replacing the reference architecture's variadic config_set
// macro with a Go sum type (see SPEC_FULL.md design notes).
type configKind int

const (
	cfgDownloaderDest configKind = iota
	cfgGrabberPriority
	cfgGrabberState
	cfgParserKeyword
	cfgScannerPath
	cfgScannerSuffix
	cfgScannerSchedule
	cfgGrabberCredential
	cfgRPCListen
	cfgScanLoops
)

// ConfigOption is one configuration directive accepted by Handle.SetConfig,
// built by the constructors below. It is immutable once constructed.
type ConfigOption struct {
	kind configKind

	path       string
	kind2      string
	recursive  bool
	grabberID  string
	priority   int8
	metaName   string
	keyword    string
	suffix     string
	cron       string
	secret     string
	network    string
	address    string
	loops      int
}

// DownloaderDest sets the destination root used for download items tagged
// with kind (e.g. "cover", "thumbnail", "fan-art", or "default").
func DownloaderDest(path, kind string) ConfigOption {
	return ConfigOption{kind: cfgDownloaderDest, path: path, kind2: kind}
}

// GrabberPriority changes the metadata priority a grabber writes with. An
// empty grabberID applies to every registered grabber. metaName is carried
// to Handle.SetConfig but not applied there: the grabber's single priority
// changes whatever metaName says, and there are no per-key entries.
func GrabberPriority(grabberID string, priority int8, metaName string) ConfigOption {
	return ConfigOption{kind: cfgGrabberPriority, grabberID: grabberID, priority: priority, metaName: metaName}
}

// GrabberState enables or disables a registered grabber by name.
func GrabberState(grabberID string, enabled bool) ConfigOption {
	p := int8(0)
	if enabled {
		p = 1
	}
	return ConfigOption{kind: cfgGrabberState, grabberID: grabberID, priority: p}
}

// ParserKeyword appends keyword to the decrapifier blacklist (§4.8). keyword
// may be a plain word or a pattern containing the NUM/SE/EP tokens.
func ParserKeyword(keyword string) ConfigOption {
	return ConfigOption{kind: cfgParserKeyword, keyword: keyword}
}

// ScannerPath adds a scan root. recursive enables the depth-limited walk
// beneath it (§4.5).
func ScannerPath(path string, recursive bool) ConfigOption {
	return ConfigOption{kind: cfgScannerPath, path: path, recursive: recursive}
}

// ScannerSuffix adds a case-insensitive accepted file extension.
func ScannerSuffix(suffix string) ConfigOption {
	return ConfigOption{kind: cfgScannerSuffix, suffix: suffix}
}

// ScannerSchedule attaches a cron expression to an already-added root,
// triggering an out-of-cycle rescan of that root alone (§4.5.2, §3.1).
func ScannerSchedule(path, cronExpr string) ConfigOption {
	return ConfigOption{kind: cfgScannerSchedule, path: path, cron: cronExpr}
}

// GrabberCredential stores secret in the keychain-backed vault for grabberID
// to use at init time (§3.1).
func GrabberCredential(grabberID, secret string) ConfigOption {
	return ConfigOption{kind: cfgGrabberCredential, grabberID: grabberID, secret: secret}
}

// RPCListen enables the remote query/event surface (§4.12.2) on the given
// network ("unix", "tcp", "namedpipe", "websocket") and address.
func RPCListen(network, address string) ConfigOption {
	return ConfigOption{kind: cfgRPCListen, network: network, address: address}
}

// ScanLoops overrides the number of scan passes Run performs before
// returning. A negative value (the default) scans forever; a CLI that
// wants a single one-shot pass over the configured roots sets this to 1.
func ScanLoops(n int) ConfigOption {
	return ConfigOption{kind: cfgScanLoops, loops: n}
}

// scanRoot is one configured Scanner root (§4.5).
type scanRoot struct {
	path      string
	recursive bool
	cron      string
}

// config accumulates every ConfigOption applied before Run.
type config struct {
	dests     map[string]string
	roots     []scanRoot
	suffixes  map[string]struct{}
	keywords  []string
	credsFn   func(grabberID, secret string)
	rpcNetwork, rpcAddress string

	commitInterval  int
	grabberWorkers  int
	parserWorkers   int
	scanLoops       int
	scanSleep       time.Duration
	scanPreDelay    time.Duration
	grabberTimedWait time.Duration
}

func newConfig() *config {
	return &config{
		dests:          make(map[string]string),
		suffixes:       make(map[string]struct{}),
		commitInterval: 200,
		grabberWorkers: 4,
		parserWorkers:  2,
		scanLoops:      -1,
		scanSleep:      5 * time.Minute,
		grabberTimedWait: 200 * time.Millisecond,
	}
}

func (c *config) apply(opt ConfigOption, onGrabberPriority func(string, int8, string), onGrabberState func(string, bool), onCred func(string, string)) {
	switch opt.kind {
	case cfgDownloaderDest:
		c.dests[opt.kind2] = opt.path
	case cfgScannerPath:
		for i := range c.roots {
			if c.roots[i].path == opt.path {
				c.roots[i].recursive = opt.recursive
				return
			}
		}
		c.roots = append(c.roots, scanRoot{path: opt.path, recursive: opt.recursive})
	case cfgScannerSuffix:
		c.suffixes[normalizeSuffix(opt.suffix)] = struct{}{}
	case cfgScannerSchedule:
		for i := range c.roots {
			if c.roots[i].path == opt.path {
				c.roots[i].cron = opt.cron
			}
		}
	case cfgParserKeyword:
		c.keywords = append(c.keywords, opt.keyword)
	case cfgGrabberPriority:
		if onGrabberPriority != nil {
			onGrabberPriority(opt.grabberID, opt.priority, opt.metaName)
		}
	case cfgGrabberState:
		if onGrabberState != nil {
			onGrabberState(opt.grabberID, opt.priority != 0)
		}
	case cfgGrabberCredential:
		if onCred != nil {
			onCred(opt.grabberID, opt.secret)
		}
	case cfgRPCListen:
		c.rpcNetwork = opt.network
		c.rpcAddress = opt.address
	case cfgScanLoops:
		c.scanLoops = opt.loops
	}
}

func (c *config) destFor(kind string) string {
	if d, ok := c.dests[kind]; ok {
		return d
	}
	return c.dests["default"]
}
