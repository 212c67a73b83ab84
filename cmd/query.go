package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/vaulth/vhindex/cmd/common"
	"github.com/vaulth/vhindex/pkg/store"
	"github.com/vaulth/vhindex/pkg/vhtypes"
)

var (
	queryType   string
	queryKey    string
	queryGroup  string
	querySearch string

	queryFilterFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "type",
			Usage:       "restrict to a file type: audio, video, image, playlist",
			Destination: &queryType,
		},
		cli.StringFlag{
			Name:        "key",
			Usage:       "restrict to files or metadata carrying this key",
			Destination: &queryKey,
		},
		cli.StringFlag{
			Name:        "group",
			Usage:       "restrict metadata to this group, e.g. musical, technical",
			Destination: &queryGroup,
		},
	}

	metaListFlags = append(queryFilterFlags, cli.StringFlag{
		Name:        "search",
		Usage:       "case-insensitive substring match against metadata values",
		Destination: &querySearch,
	})

	queryCommands = []cli.Command{
		{
			Name:   "filelist",
			Usage:  "list every indexed file, optionally filtered by type or metadata key",
			Flags:  queryFilterFlags,
			Action: queryFileList,
		},
		{
			Name:   "metalist",
			Usage:  "list metadata associations, optionally filtered and searched",
			Flags:  metaListFlags,
			Action: queryMetaList,
		},
		{
			Name:      "file",
			Usage:     "show every metadata association for a single file",
			ArgsUsage: "<path>",
			Flags:     queryFilterFlags,
			Action:    queryFile,
		},
	}
)

// parseFileType maps a query --type flag value onto its vhtypes.FileType,
// mirroring the small fixed enumeration in pkg/vhtypes.
func parseFileType(s string) (t vhtypes.FileType, ok bool) {
	switch s {
	case "audio":
		return vhtypes.TypeAudio, true
	case "video":
		return vhtypes.TypeVideo, true
	case "image":
		return vhtypes.TypeImage, true
	case "playlist":
		return vhtypes.TypePlaylist, true
	case "null":
		return vhtypes.TypeNull, true
	default:
		return 0, false
	}
}

var groupsByName = map[string]vhtypes.Group{
	"miscellaneous":  vhtypes.GroupMiscellaneous,
	"classification": vhtypes.GroupClassification,
	"commercial":     vhtypes.GroupCommercial,
	"contact":        vhtypes.GroupContact,
	"entities":       vhtypes.GroupEntities,
	"identifier":     vhtypes.GroupIdentifier,
	"legal":          vhtypes.GroupLegal,
	"musical":        vhtypes.GroupMusical,
	"organisational": vhtypes.GroupOrganisational,
	"personal":       vhtypes.GroupPersonal,
	"spacial":        vhtypes.GroupSpacial,
	"technical":      vhtypes.GroupTechnical,
	"temporal":       vhtypes.GroupTemporal,
	"titles":         vhtypes.GroupTitles,
}

// truncPad shortens s to n-3 chars plus an ellipsis if it overruns the
// column width, otherwise centers it in the column via common.Beaut; Beaut
// itself assumes len(s) <= n.
func truncPad(s string, n int) string {
	if len(s) > n {
		if n > 3 {
			return s[:n-3] + "..."
		}
		return s[:n]
	}
	return common.Beaut(s, n)
}

// restrictionFromFlags builds the single Restriction the query subcommands'
// shared --key/--group flags describe.
func restrictionFromFlags() ([]store.Restriction, error) {
	if queryKey == "" && queryGroup == "" {
		return nil, nil
	}
	r := store.Restriction{Key: queryKey}
	if queryGroup != "" {
		g, ok := groupsByName[queryGroup]
		if !ok {
			return nil, fmt.Errorf("unknown --group %q", queryGroup)
		}
		r.HasGroup = true
		r.Group = g
	}
	return []store.Restriction{r}, nil
}

func openQueryStore(ctx *cli.Context) (*store.Store, error) {
	return store.Open(DBPath())
}

func queryFileList(ctx *cli.Context) error {
	var hasType bool
	var ftype vhtypes.FileType
	if queryType != "" {
		t, ok := parseFileType(queryType)
		if !ok {
			return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("unknown --type %q", queryType))
		}
		hasType, ftype = true, t
	}
	restrictions, err := restrictionFromFlags()
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}

	s, err := openQueryStore(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "query filelist", "open_store", err)
		return nil
	}
	defer s.Close()

	rows, err := s.FileList(hasType, ftype, restrictions)
	if err != nil {
		common.PrintRuntimeErr(ctx, "query filelist", "filelist", err)
		return nil
	}
	if len(rows) == 0 {
		fmt.Println("vhindex: no files found")
		return nil
	}

	txt := "------------------------------------------------------------"
	txt += "\n| ID  | Type     | Path"
	txt += "\n------------------------------------------------------------"
	for _, r := range rows {
		txt += fmt.Sprintf("\n| %s | %s | %s", truncPad(fmt.Sprint(r.ID), 3), truncPad(r.Type.String(), 8), r.Path)
	}
	txt += "\n------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}

func queryMetaList(ctx *cli.Context) error {
	var hasType bool
	var ftype vhtypes.FileType
	if queryType != "" {
		t, ok := parseFileType(queryType)
		if !ok {
			return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("unknown --type %q", queryType))
		}
		hasType, ftype = true, t
	}
	restrictions, err := restrictionFromFlags()
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}

	s, err := openQueryStore(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "query metalist", "open_store", err)
		return nil
	}
	defer s.Close()

	rows, err := s.MetaList(querySearch, hasType, ftype, restrictions)
	if err != nil {
		common.PrintRuntimeErr(ctx, "query metalist", "metalist", err)
		return nil
	}
	if len(rows) == 0 {
		fmt.Println("vhindex: no metadata found")
		return nil
	}

	txt := "--------------------------------------------------------------------"
	txt += "\n| Path                          | Key            | Value"
	txt += "\n--------------------------------------------------------------------"
	for _, r := range rows {
		txt += fmt.Sprintf("\n| %s | %s | %s", truncPad(r.Path, 29), truncPad(r.Name, 14), r.Value)
	}
	txt += "\n--------------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}

func queryFile(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no path provided"))
	}
	restrictions, err := restrictionFromFlags()
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}

	s, err := openQueryStore(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "query file", "open_store", err)
		return nil
	}
	defer s.Close()

	rows, err := s.FileMeta(path, restrictions)
	if err != nil {
		common.PrintRuntimeErr(ctx, "query file", "file_meta", err)
		return nil
	}
	if len(rows) == 0 {
		fmt.Printf("vhindex: no metadata found for %s\n", path)
		return nil
	}

	fmt.Printf("%s\n", path)
	for _, r := range rows {
		fmt.Printf("  %s: %s\n", r.Name, r.Value)
	}
	return nil
}
