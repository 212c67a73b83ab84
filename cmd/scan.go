package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vaulth/vhindex/cmd/common"
	"github.com/vaulth/vhindex/pkg/logger"
	"github.com/vaulth/vhindex/pkg/vhlib"
)

var (
	scanRecursive bool

	scanFlags = []cli.Flag{
		cli.StringSliceFlag{
			Name:  "path",
			Usage: "media library root to scan (repeatable)",
		},
		cli.StringSliceFlag{
			Name:  "suffix",
			Usage: "accepted file extension, e.g. mp3 (repeatable)",
		},
		cli.BoolTFlag{
			Name:        "recursive, r",
			Usage:       "descend into subdirectories of each --path (default: true)",
			Destination: &scanRecursive,
		},
	}
)

// scan runs a single scan pass over the given paths and exits: it builds a
// Handle with ScanLoops(1), runs it to completion counting files via the
// same progress bars the daemon's console output would use, then Uninits.
func scan(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	paths := ctx.StringSlice("path")
	if len(paths) == 0 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no --path provided"))
	}
	suffixes := ctx.StringSlice("suffix")
	if len(suffixes) == 0 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no --suffix provided"))
	}

	var opts []vhlib.ConfigOption
	for _, p := range paths {
		opts = append(opts, vhlib.ScannerPath(p, scanRecursive))
	}
	for _, s := range suffixes {
		opts = append(opts, vhlib.ScannerSuffix(s))
	}
	opts = append(opts, vhlib.ScanLoops(1))

	l := logger.NewStandardLogger(log.Default())
	h := vhlib.NewHandle(l, DBPath())
	if err := h.SetConfig(opts...); err != nil {
		common.PrintRuntimeErr(ctx, "scan", "set_config", err)
		return nil
	}

	p := mpb.New()
	scanBar, indexBar := common.InitScanBars(p, "")
	// The pipeline exposes no per-file "discovered" event, only EvtEnded
	// once a file has cleared parsing and grabbing, so both bars track it.
	h.SetHandlers(vhlib.Handlers{
		OnDemandHandler: func(path string, event vhlib.OnDemandEvent, grabberID string) {
			if event == vhlib.EvtEnded {
				scanBar.Increment()
				indexBar.Increment()
			}
		},
	})

	if err := h.Run(); err != nil {
		common.PrintRuntimeErr(ctx, "scan", "run", err)
		_ = h.Uninit()
		return nil
	}
	// Both bars are open-ended (total 0), so complete them before waiting
	// on the progress container.
	scanBar.SetTotal(-1, true)
	indexBar.SetTotal(-1, true)
	p.Wait()

	if err := h.Uninit(); err != nil {
		common.PrintRuntimeErr(ctx, "scan", "uninit", err)
		return nil
	}

	fmt.Printf("%s: scan complete\n", ctx.App.HelpName)
	return nil
}
