package cmd

import (
	"encoding/hex"
	"log"
	"os"
	"path/filepath"

	"github.com/vaulth/vhindex/internal/api"
	"github.com/vaulth/vhindex/internal/extl"
	"github.com/vaulth/vhindex/internal/server"
	"github.com/vaulth/vhindex/pkg/credman"
	"github.com/vaulth/vhindex/pkg/credman/keyring"
	"github.com/vaulth/vhindex/pkg/logger"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

type loggerKeyringAdapter struct {
	log logger.Logger
}

func (l *loggerKeyringAdapter) Warning(format string, args ...interface{}) {
	l.log.Warning(format, args...)
}

// DaemonComponents holds every component the daemon command builds: the
// index pipeline Handle, its grabber vault and scriptgrabber engine, and
// the RPC surface bound on top of it. Grouping them lets console mode and
// the Windows service wrapper share one init/close path.
type DaemonComponents struct {
	CookieManager *credman.CookieManager
	Vault         *credman.GrabberVault
	ExtEngine     *extl.Engine
	Handle        *vhlib.Handle
	Api           *api.Api
	Server        *server.Server
	logger        logger.Logger
	stdLogger     *log.Logger
}

// Close releases all daemon component resources in reverse order of
// initialization.
func (c *DaemonComponents) Close() {
	if c.stdLogger != nil {
		c.stdLogger.Println("Shutting down daemon...")
	}

	// Close API (closes the extension engine, then Uninits the Handle --
	// the dbManager/scanner/pool goroutines are stopped there).
	if c.Api != nil {
		if err := c.Api.Close(); err != nil && c.stdLogger != nil {
			c.stdLogger.Println("Error closing API:", err)
		}
	} else if c.Handle != nil {
		_ = c.Handle.Uninit()
	}

	if c.Vault != nil {
		_ = c.Vault.Close()
	}
	if c.CookieManager != nil {
		_ = c.CookieManager.Close()
	}

	if c.stdLogger != nil {
		c.stdLogger.Println("Daemon stopped")
	}
}

// initDaemonComponents builds the Handle, registers every native and
// scripted grabber, and wires the NUL-terminated RPC surface (§4.12.2) on
// top of it. This is the shared initialization used by both console mode
// and the Windows service wrapper.
var initDaemonComponents = func(l logger.Logger, dbPath string, opts []vhlib.ConfigOption) (*DaemonComponents, error) {
	stdLog := log.Default()

	key, err := resolveSecretKey(l)
	if err != nil {
		return nil, err
	}

	cm, err := credman.NewCookieManager(filepath.Join(ConfigDir, "cookies.warp"), key)
	if err != nil {
		l.Error("cookie manager initialization failed: %v", err)
		return nil, err
	}

	elEng, err := extl.NewEngine(stdLog, cm, false)
	if err != nil {
		l.Error("extension engine initialization failed: %v", err)
		cm.Close()
		return nil, err
	}

	vault, err := credman.NewGrabberVault(filepath.Join(ConfigDir, "grabbers.warp"), key)
	if err != nil {
		l.Error("grabber vault initialization failed: %v", err)
		elEng.Close()
		cm.Close()
		return nil, err
	}

	h := vhlib.NewHandle(l, dbPath)
	h.SetCredentialVault(vault)
	if err := h.SetConfig(opts...); err != nil {
		l.Error("handle configuration failed: %v", err)
		elEng.Close()
		cm.Close()
		return nil, err
	}

	for _, g := range elEng.Grabbers() {
		if err := h.RegisterGrabber(g); err != nil {
			l.Error("register scripted grabber %s: %v", g.Name(), err)
		}
	}

	s, err := api.NewApi(stdLog, h, elEng, currentBuildArgs.Version, currentBuildArgs.Commit, currentBuildArgs.BuildType)
	if err != nil {
		l.Error("API initialization failed: %v", err)
		elEng.Close()
		cm.Close()
		return nil, err
	}

	serv := server.NewServer(stdLog, daemonPort)
	s.RegisterHandlers(serv)

	return &DaemonComponents{
		CookieManager: cm,
		Vault:         vault,
		ExtEngine:     elEng,
		Handle:        h,
		Api:           s,
		Server:        serv,
		logger:        l,
		stdLogger:     stdLog,
	}, nil
}

// resolveSecretKey returns the 32-byte key used to encrypt both the cookie
// store and the grabber credential vault: an explicit WARPDL_COOKIE_KEY
// overrides everything, otherwise the OS keyring (falling back to a file
// store under ConfigDir) supplies it.
func resolveSecretKey(log logger.Logger) ([]byte, error) {
	if keyHex := os.Getenv(cookieKeyEnv); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			log.Error("invalid cookie key hex: %v", err)
			return nil, err
		}
		return key, nil
	}

	kr := newKeyring(ConfigDir, &loggerKeyringAdapter{log: log})
	key, err := kr.GetKey()
	if err == nil {
		return key, nil
	}
	key, err = kr.SetKey()
	if err != nil {
		log.Error("keyring initialization failed: %v", err)
		return nil, err
	}
	return key, nil
}

type keyringProvider interface {
	GetKey() ([]byte, error)
	SetKey() ([]byte, error)
}

var newKeyring = func(configDir string, l keyring.Logger) keyringProvider {
	return keyring.NewKeyringWithFallback(configDir, l)
}

const cookieKeyEnv = "WARPDL_COOKIE_KEY"
