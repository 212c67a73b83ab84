package cmd

import (
	"log"

	"github.com/urfave/cli"
	"github.com/vaulth/vhindex/cmd/common"
	"github.com/vaulth/vhindex/pkg/logger"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

var daemonFlags = []cli.Flag{
	cli.StringSliceFlag{
		Name:  "path",
		Usage: "media library root to scan (repeatable)",
	},
	cli.StringSliceFlag{
		Name:  "suffix",
		Usage: "accepted file extension, e.g. mp3 (repeatable)",
	},
	cli.IntFlag{
		Name:  "port",
		Usage: "daemon RPC listen port",
		Value: DEF_PORT,
	},
}

// daemon runs the indexer daemon in the foreground: it builds every
// component via initDaemonComponents, starts the RPC server in the
// background, and blocks until a shutdown signal arrives.
func daemon(ctx *cli.Context) error {
	// On Windows, a service-managed daemon is handled entirely by
	// checkWindowsService; a normal interactive invocation falls through.
	if isService, err := checkWindowsService(ctx); isService {
		return err
	}

	l := log.Default()

	if err := CleanupStalePidFile(); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "pidfile", err)
		return nil
	}
	if err := WritePidFile(); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "write_pid", err)
		return nil
	}
	defer RemovePidFile()

	shutdownCtx, cancel := setupShutdownHandler()
	defer cancel()

	opts := daemonConfigOptions(ctx)

	components, err := initDaemonComponents(logger.NewStandardLogger(l), DBPath(), opts)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "init_components", err)
		return nil
	}
	defer components.Close()

	go func() {
		if err := components.Handle.Run(); err != nil {
			l.Printf("index pipeline stopped: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- components.Server.Start()
	}()

	select {
	case <-shutdownCtx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			common.PrintRuntimeErr(ctx, "daemon", "server", err)
		}
		return nil
	}
}

// daemonConfigOptions translates the daemon command's flags into the
// ConfigOption set applied before Handle.Run. It must run before
// initDaemonComponents so a --port override reaches the listener.
func daemonConfigOptions(ctx *cli.Context) []vhlib.ConfigOption {
	var opts []vhlib.ConfigOption
	for _, p := range ctx.StringSlice("path") {
		opts = append(opts, vhlib.ScannerPath(p, true))
	}
	for _, s := range ctx.StringSlice("suffix") {
		opts = append(opts, vhlib.ScannerSuffix(s))
	}
	if port := ctx.Int("port"); port > 0 {
		daemonPort = port
	}
	return opts
}
