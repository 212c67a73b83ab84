package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli"
	"github.com/vaulth/vhindex/cmd/common"
	vhcommon "github.com/vaulth/vhindex/common"
)

var grabberCommands = []cli.Command{
	{
		Name:   "list",
		Usage:  "list every grabber registered with the running daemon",
		Action: grabberList,
	},
	{
		Name:      "enable",
		Usage:     "enable a registered grabber",
		ArgsUsage: "<grabber-id>",
		Action:    grabberEnable,
	},
	{
		Name:      "disable",
		Usage:     "disable a registered grabber",
		ArgsUsage: "<grabber-id>",
		Action:    grabberDisable,
	},
	{
		Name:      "priority",
		Usage:     "change a grabber's metadata priority",
		ArgsUsage: "<grabber-id> <priority>",
		Action:    grabberPriority,
	},
}

func grabberList(ctx *cli.Context) error {
	var resp vhcommon.GrabberListResponse
	if err := rpcCall(string(vhcommon.UPDATE_GRABBER_LIST), nil, &resp); err != nil {
		common.PrintRuntimeErr(ctx, "grabber list", "rpc", err)
		return nil
	}
	if len(resp.Grabbers) == 0 {
		fmt.Println("vhindex: no grabbers registered")
		return nil
	}
	for _, g := range resp.Grabbers {
		state := "disabled"
		if g.Enabled {
			state = "enabled"
		}
		fmt.Printf("%-24s priority=%-4d %s\n", g.Name, g.Priority, state)
	}
	return nil
}

func setGrabberState(ctx *cli.Context, enabled bool) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no grabber id provided"))
	}
	params := vhcommon.GrabberStateParams{GrabberID: id, Enabled: enabled}
	if err := rpcCall(string(vhcommon.UPDATE_GRABBER_STATE), params, nil); err != nil {
		common.PrintRuntimeErr(ctx, "grabber state", "rpc", err)
		return nil
	}
	fmt.Printf("vhindex: %s is now %s\n", id, map[bool]string{true: "enabled", false: "disabled"}[enabled])
	return nil
}

func grabberEnable(ctx *cli.Context) error  { return setGrabberState(ctx, true) }
func grabberDisable(ctx *cli.Context) error { return setGrabberState(ctx, false) }

func grabberPriority(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("usage: grabber priority <grabber-id> <priority>"))
	}
	id := args.Get(0)
	posStr := args.Get(1)
	priority, err := strconv.ParseInt(posStr, 10, 8)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid priority %q: %w", posStr, err))
	}
	params := vhcommon.GrabberPriorityParams{GrabberID: id, Priority: int8(priority)}
	if err := rpcCall(string(vhcommon.UPDATE_GRABBER_PRIORITY), params, nil); err != nil {
		common.PrintRuntimeErr(ctx, "grabber priority", "rpc", err)
		return nil
	}
	fmt.Printf("vhindex: %s priority set to %d\n", id, priority)
	return nil
}
