package main

import (
	"fmt"
	"os"

	"github.com/vaulth/vhindex/cmd"
)

// Set via -ldflags at build time.
var (
	version   = "unclassified"
	commit    = "unclassified"
	date      = "unclassified"
	buildType = "unclassified"
)

var osExit = os.Exit

func main() {
	osExit(runMain(os.Args, run))
}

func run(args []string) error {
	return cmd.Execute(args, cmd.BuildArgs{
		Version:   version,
		BuildType: buildType,
		Date:      date,
		Commit:    commit,
	})
}

func runMain(args []string, runFunc func([]string) error) int {
	if err := runFunc(args); err != nil {
		fmt.Printf("vhindex: %s\n", err)
		return 1
	}
	return 0
}
