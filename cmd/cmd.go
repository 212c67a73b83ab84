// Package cmd implements the command-line interface for vhindex.
// It provides commands for running the indexing daemon, triggering
// one-shot scans, querying the indexed library, and managing grabbers.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/vaulth/vhindex/cmd/common"
)

// DEF_PORT is the daemon's default RPC listen port.
const DEF_PORT = 9897

// daemonPort is the port actually bound, overridable per-invocation by the
// daemon command's --port flag.
var daemonPort = DEF_PORT

const DESCRIPTION = `
vhindex watches a media library, extracts embedded tags and filename
metadata, and fetches cover art and supplementary metadata from online
grabbers. It runs as a background daemon and exposes its index over a
NUL-terminated JSON RPC protocol, with one-shot commands for scanning and
querying without a running daemon.
`

// BuildArgs contains build-time information passed to the CLI application.
// These values are typically injected during the build process via ldflags
// and are used to display version and build information to users.
type BuildArgs struct {
	// Version is the semantic version of the application.
	Version string
	// BuildType indicates the build variant (e.g., "release", "debug", "snapshot").
	BuildType string
	// Date is the build timestamp in a human-readable format.
	Date string
	// Commit is the git commit hash from which the build was created.
	Commit string
}

// currentBuildArgs stores the build arguments for use by daemon and other commands.
var currentBuildArgs BuildArgs

// globalFlags are flags that apply to every command.
var globalFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "debug, d",
		Usage: "enable debug logging for troubleshooting",
	},
}

// GetApp returns the configured CLI application for documentation generation
// and other programmatic uses.
func GetApp(bArgs BuildArgs) *cli.App {
	commands := []cli.Command{
		{
			Name:   "daemon",
			Action: daemon,
			Usage:  "run the indexing daemon in the foreground",
			Flags:  daemonFlags,
		},
		{
			Name:   "stop-daemon",
			Action: stopDaemon,
			Usage:  "stop the running daemon gracefully",
		},
		{
			Name:   "scan",
			Action: scan,
			Usage:  "run a single scan pass over one or more paths and exit",
			Flags:  scanFlags,
		},
		{
			Name:        "query",
			Usage:       "inspect an existing index database",
			Subcommands: queryCommands,
		},
		{
			Name:        "grabber",
			Usage:       "manage registered grabbers",
			Subcommands: grabberCommands,
		},
		{
			Name:    "help",
			Aliases: []string{"h"},
			Usage:   "prints the help message",
			Action:  common.Help,
		},
		{
			Name:      "version",
			Aliases:   []string{"v"},
			Usage:     "prints installed version of vhindex",
			UsageText: " ",
			Action:    common.GetVersion,
		},
	}

	platformCommands := getPlatformCommands()
	if len(platformCommands) > 0 {
		commands = append(commands, platformCommands...)
	}

	return &cli.App{
		Name:         "vhindex",
		HelpName:     "vhindex",
		Usage:        "A media library metadata indexing daemon.",
		Version:      fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:    "vhindex <command> [arguments...]",
		Description:  DESCRIPTION,
		OnUsageError: common.UsageErrorCallback,
		Commands:     commands,
		Flags:        globalFlags,
		HideHelp:     true,
		HideVersion:  true,
	}
}

// Execute initializes and runs the CLI application with the provided arguments.
func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs

	app := GetApp(bArgs)

	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)

	return app.Run(args)
}
