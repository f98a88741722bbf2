package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/migadu/exmdb/exmdb"
)

func handleOwnerCommand(ctx context.Context) {
	if len(os.Args) < 3 {
		printOwnerUsage()
		os.Exit(1)
	}

	subcommand := os.Args[2]
	switch subcommand {
	case "list":
		handleOwnerList(ctx)
	case "add":
		handleOwnerAdd(ctx)
	case "remove":
		handleOwnerRemove(ctx)
	case "set-rights":
		handleOwnerSetRights(ctx)
	case "help", "--help", "-h":
		printOwnerUsage()
	default:
		fmt.Printf("Unknown owner subcommand: %s\n\n", subcommand)
		printOwnerUsage()
		os.Exit(1)
	}
}

func handleOwnerList(ctx context.Context) {
	fs := flag.NewFlagSet("owner list", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory of the domain (required)")
	folderID := fs.String("folder-id", "", "Folder id, decimal or 0x-prefixed hex (required)")
	all := fs.Bool("all", false, "Show every permission row, not only owners")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "folder-id")
	defer client.Close()

	fid, err := parseUint64(*folderID)
	if err != nil {
		fatalf("Invalid folder id %q: %v", *folderID, err)
	}
	resp, err := client.GetFolderOwnerList(ctx, *homedir, fid)
	if err != nil {
		fatalf("Failed to list folder owners: %v", err)
	}

	rows := resp.Owners
	if !*all {
		rows = resp.OwnersOnly()
	}
	printOwners(rows)
}

func printOwners(owners []exmdb.Owner) {
	if len(owners) == 0 {
		fmt.Println("No owners found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER ID\tNAME\tRIGHTS\tOWNER")
	for _, o := range owners {
		fmt.Fprintf(w, "%d\t%s\t0x%08x\t%t\n", o.MemberID, o.MemberName, o.MemberRights, o.IsOwner())
	}
	w.Flush()
}

func handleOwnerAdd(ctx context.Context) {
	fs := flag.NewFlagSet("owner add", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory of the domain (required)")
	folderID := fs.String("folder-id", "", "Folder id, decimal or 0x-prefixed hex (required)")
	username := fs.String("username", "", "Username (e-mail address) of the new owner (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "folder-id", "username")
	defer client.Close()

	fid, err := parseUint64(*folderID)
	if err != nil {
		fatalf("Invalid folder id %q: %v", *folderID, err)
	}
	if _, err := client.AddFolderOwner(ctx, *homedir, fid, *username); err != nil {
		fatalf("Failed to add folder owner: %v", err)
	}
	fmt.Printf("Successfully added %s as owner of folder 0x%x\n", *username, fid)
}

func handleOwnerRemove(ctx context.Context) {
	fs := flag.NewFlagSet("owner remove", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory of the domain (required)")
	folderID := fs.String("folder-id", "", "Folder id, decimal or 0x-prefixed hex (required)")
	memberID := fs.String("member-id", "", "Member id as shown by 'owner list' (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "folder-id", "member-id")
	defer client.Close()

	fid, err := parseUint64(*folderID)
	if err != nil {
		fatalf("Invalid folder id %q: %v", *folderID, err)
	}
	mid, err := parseUint64(*memberID)
	if err != nil {
		fatalf("Invalid member id %q: %v", *memberID, err)
	}
	if _, err := client.DeleteFolderOwner(ctx, *homedir, fid, mid); err != nil {
		fatalf("Failed to remove folder owner: %v", err)
	}
	fmt.Printf("Successfully removed member %d from folder 0x%x\n", mid, fid)
}

func handleOwnerSetRights(ctx context.Context) {
	fs := flag.NewFlagSet("owner set-rights", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory of the domain (required)")
	folderID := fs.String("folder-id", "", "Folder id, decimal or 0x-prefixed hex (required)")
	username := fs.String("username", "", "Username (e-mail address) of the member (required)")
	rights := fs.String("rights", "", "Permission bits, decimal or 0x-prefixed hex (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "folder-id", "username", "rights")
	defer client.Close()

	fid, err := parseUint64(*folderID)
	if err != nil {
		fatalf("Invalid folder id %q: %v", *folderID, err)
	}
	r, err := parseUint64(*rights)
	if err != nil || r > 0xFFFFFFFF {
		fatalf("Invalid rights %q", *rights)
	}
	if _, err := client.SetFolderMemberRights(ctx, *homedir, fid, *username, uint32(r)); err != nil {
		fatalf("Failed to set member rights: %v", err)
	}
	fmt.Printf("Successfully granted 0x%08x on folder 0x%x to %s\n", uint32(r), fid, *username)
}

func printOwnerUsage() {
	fmt.Printf(`Folder Owner Management

Usage:
  exmdb-admin owner <subcommand> [options]

Subcommands:
  list         List folder owners (--all for every permission row)
  add          Grant a user owner rights on a folder
  remove       Remove a permission row by member id
  set-rights   Grant a user an explicit set of rights

Examples:
  exmdb-admin owner list --config exmdb.toml --homedir /d/1 --folder-id 0x1a
  exmdb-admin owner add --config exmdb.toml --homedir /d/1 --folder-id 0x1a --username boss@example.com
  exmdb-admin owner remove --config exmdb.toml --homedir /d/1 --folder-id 0x1a --member-id 7
  exmdb-admin owner set-rights --config exmdb.toml --homedir /d/1 --folder-id 0x1a --username temp@example.com --rights 0x401
`)
}
