package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/migadu/exmdb/config"
	"github.com/migadu/exmdb/exmdb"
	"golang.org/x/sync/errgroup"
)

// maxParallelStores bounds the connections opened by a multi-store listing.
const maxParallelStores = 4

func handleFolderCommand(ctx context.Context) {
	if len(os.Args) < 3 {
		printFolderUsage()
		os.Exit(1)
	}

	subcommand := os.Args[2]
	switch subcommand {
	case "create":
		handleFolderCreate(ctx)
	case "delete":
		handleFolderDelete(ctx)
	case "list":
		handleFolderList(ctx)
	case "props":
		handleFolderProps(ctx)
	case "help", "--help", "-h":
		printFolderUsage()
	default:
		fmt.Printf("Unknown folder subcommand: %s\n\n", subcommand)
		printFolderUsage()
		os.Exit(1)
	}
}

func handleFolderCreate(ctx context.Context) {
	fs := flag.NewFlagSet("folder create", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory of the domain (required)")
	domainID := fs.Uint("domain-id", 0, "Numeric domain id, used for the change key (required)")
	name := fs.String("name", "", "Display name of the new folder (required)")
	container := fs.String("container", "IPF.Note", "Container class, e.g. IPF.Note, IPF.Contact, IPF.Appointment")
	comment := fs.String("comment", "", "Folder comment")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "domain-id", "name")
	defer client.Close()

	resp, err := client.CreateFolder(ctx, *homedir, uint32(*domainID), *name, *container, *comment)
	if err != nil {
		fatalf("Failed to create folder: %v", err)
	}
	if resp.FolderID == 0 {
		fatalf("Folder '%s' was not created (a folder with that name may already exist)", *name)
	}
	fmt.Printf("Successfully created folder '%s' with id 0x%x\n", *name, resp.FolderID)
}

func handleFolderDelete(ctx context.Context) {
	fs := flag.NewFlagSet("folder delete", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory of the domain (required)")
	folderID := fs.String("folder-id", "", "Folder id, decimal or 0x-prefixed hex (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "folder-id")
	defer client.Close()

	fid, err := parseUint64(*folderID)
	if err != nil {
		fatalf("Invalid folder id %q: %v", *folderID, err)
	}
	resp, err := client.DeleteFolder(ctx, *homedir, fid)
	if err != nil {
		fatalf("Failed to delete folder: %v", err)
	}
	if !resp.Success {
		fatalf("Server did not delete folder 0x%x", fid)
	}
	fmt.Printf("Successfully deleted folder 0x%x\n", fid)
}

type storeFolders struct {
	homedir string
	folders []exmdb.Folder
}

func handleFolderList(ctx context.Context) {
	fs := flag.NewFlagSet("folder list", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedirs := fs.String("homedir", "", "Store directory, or a comma separated list of them (required)")
	fs.Usage = func() {
		fmt.Printf(`List the public folders of one or more stores

Usage:
  exmdb-admin folder list --config PATH --homedir DIR[,DIR...]

Each store is listed over its own connection; at most %d run at once.
`, maxParallelStores)
	}

	fs.Parse(subcommandArgs())
	if *homedirs == "" {
		fmt.Println("Error: --homedir is required")
		fs.PrintDefaults()
		os.Exit(1)
	}
	cfg, err := loadConfig(fs, cf)
	if err != nil {
		fatalf("%v", err)
	}

	results, err := listFolders(ctx, cfg, strings.Split(*homedirs, ","))
	if err != nil {
		fatalf("Failed to list folders: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOMEDIR\tID\tNAME\tCLASS\tCREATED\tCOMMENT")
	for _, r := range results {
		for _, f := range r.folders {
			fmt.Fprintf(w, "%s\t0x%x\t%s\t%s\t%s\t%s\n",
				r.homedir, f.FolderID, f.DisplayName, f.Container, formatNTTime(f.CreationTime), f.Comment)
		}
	}
	w.Flush()
}

// listFolders lists every store over an independent client.
func listFolders(ctx context.Context, cfg config.Config, homedirs []string) ([]storeFolders, error) {
	results := make([]storeFolders, len(homedirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelStores)
	for i, homedir := range homedirs {
		homedir = strings.TrimSpace(homedir)
		g.Go(func() error {
			client, err := connect(gctx, cfg)
			if err != nil {
				return err
			}
			defer client.Close()
			resp, err := client.GetFolderList(gctx, homedir, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", homedir, err)
			}
			results[i] = storeFolders{homedir: homedir, folders: resp.Folders}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func handleFolderProps(ctx context.Context) {
	fs := flag.NewFlagSet("folder props", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory of the domain (required)")
	folderID := fs.String("folder-id", "", "Folder id, decimal or 0x-prefixed hex (required)")
	tags := fs.String("tags", "", "Comma separated hex property tags (required)")
	cpid := fs.Uint("cpid", 65001, "Codepage for 8-bit string values")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "folder-id", "tags")
	defer client.Close()

	fid, err := parseUint64(*folderID)
	if err != nil {
		fatalf("Invalid folder id %q: %v", *folderID, err)
	}
	proptags, err := parseProptags(*tags)
	if err != nil {
		fatalf("%v", err)
	}
	resp, err := client.GetFolderProperties(ctx, *homedir, uint32(*cpid), fid, proptags)
	if err != nil {
		fatalf("Failed to get folder properties: %v", err)
	}
	printPropvals(resp.Propvals)
}

func printFolderUsage() {
	fmt.Printf(`Folder Management

Usage:
  exmdb-admin folder <subcommand> [options]

Subcommands:
  create   Create a public folder below the IPM subtree
  delete   Delete a folder
  list     List the folders of one or more stores
  props    Read folder properties

Examples:
  exmdb-admin folder create --config exmdb.toml --homedir /d/1 --domain-id 1 --name Sales --comment "Sales team"
  exmdb-admin folder delete --config exmdb.toml --homedir /d/1 --folder-id 0x1a
  exmdb-admin folder list --config exmdb.toml --homedir /d/1,/d/2
  exmdb-admin folder props --config exmdb.toml --homedir /d/1 --folder-id 0x1a --tags 3001001f,36020003
`)
}
