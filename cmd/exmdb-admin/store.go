package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/migadu/exmdb/mapi"
)

func handleStoreCommand(ctx context.Context) {
	if len(os.Args) < 3 {
		printStoreUsage()
		os.Exit(1)
	}

	subcommand := os.Args[2]
	switch subcommand {
	case "props":
		handleStoreProps(ctx)
	case "set":
		handleStoreSet(ctx)
	case "remove":
		handleStoreRemove(ctx)
	case "ping":
		handleStorePing(ctx)
	case "unload":
		handleStoreUnload(ctx)
	case "help", "--help", "-h":
		printStoreUsage()
	default:
		fmt.Printf("Unknown store subcommand: %s\n\n", subcommand)
		printStoreUsage()
		os.Exit(1)
	}
}

func handleStoreProps(ctx context.Context) {
	fs := flag.NewFlagSet("store props", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory (required)")
	tags := fs.String("tags", "", "Comma separated hex property tags; empty reads every property")
	cpid := fs.Uint("cpid", uint(mapi.CpidUTF8), "Codepage for 8-bit string values")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir")
	defer client.Close()

	proptags, err := parseProptags(*tags)
	if err != nil {
		fatalf("%v", err)
	}

	var vals mapi.Propvals
	if len(proptags) == 0 {
		resp, err := client.GetAllStoreProperties(ctx, *homedir, uint32(*cpid))
		if err != nil {
			fatalf("Failed to get store properties: %v", err)
		}
		vals = resp.Propvals
	} else {
		resp, err := client.GetStoreProperties(ctx, *homedir, uint32(*cpid), proptags)
		if err != nil {
			fatalf("Failed to get store properties: %v", err)
		}
		vals = resp.Propvals
	}
	printPropvals(vals)
}

func printPropvals(vals mapi.Propvals) {
	if len(vals) == 0 {
		fmt.Println("No properties found.")
		return
	}
	sorted := make(mapi.Propvals, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag() < sorted[j].Tag() })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tTYPE\tVALUE")
	for _, p := range sorted {
		fmt.Fprintf(w, "0x%08x\t%s\t%s\n", p.Tag(), p.Type(), formatPropval(p))
	}
	w.Flush()
}

func handleStoreSet(ctx context.Context) {
	fs := flag.NewFlagSet("store set", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory (required)")
	cpid := fs.Uint("cpid", uint(mapi.CpidUTF8), "Codepage for 8-bit string values")
	var props propList
	fs.Var(&props, "prop", "TAG=VALUE to set; repeat for several properties (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "prop")
	defer client.Close()

	resp, err := client.SetStoreProperties(ctx, *homedir, uint32(*cpid), props)
	if err != nil {
		fatalf("Failed to set store properties: %v", err)
	}
	if len(resp.Problems) == 0 {
		fmt.Printf("Successfully set %d properties\n", len(props))
		return
	}
	fmt.Printf("Server rejected %d of %d properties:\n", len(resp.Problems), len(props))
	for _, p := range resp.Problems {
		fmt.Printf("  #%d tag 0x%08x: error 0x%08x\n", p.Index, p.PropTag, p.Err)
	}
	os.Exit(1)
}

func handleStoreRemove(ctx context.Context) {
	fs := flag.NewFlagSet("store remove", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory (required)")
	tags := fs.String("tags", "", "Comma separated hex property tags (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir", "tags")
	defer client.Close()

	proptags, err := parseProptags(*tags)
	if err != nil {
		fatalf("%v", err)
	}
	if _, err := client.RemoveStoreProperties(ctx, *homedir, proptags); err != nil {
		fatalf("Failed to remove store properties: %v", err)
	}
	fmt.Printf("Successfully removed %d properties\n", len(proptags))
}

func handleStorePing(ctx context.Context) {
	fs := flag.NewFlagSet("store ping", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir")
	defer client.Close()

	if err := client.Ping(ctx, *homedir); err != nil {
		fatalf("Store %s is not available: %v", *homedir, err)
	}
	fmt.Printf("Store %s is available\n", *homedir)
}

func handleStoreUnload(ctx context.Context) {
	fs := flag.NewFlagSet("store unload", flag.ExitOnError)
	cf := addConnFlags(fs)
	homedir := fs.String("homedir", "", "Store directory (required)")

	client := setup(ctx, fs, cf, subcommandArgs(), "homedir")
	defer client.Close()

	if _, err := client.UnloadStore(ctx, *homedir); err != nil {
		fatalf("Failed to unload store: %v", err)
	}
	fmt.Printf("Successfully unloaded store %s\n", *homedir)
}

func printStoreUsage() {
	fmt.Printf(`Store Management

Usage:
  exmdb-admin store <subcommand> [options]

Subcommands:
  props    Read store properties (all of them when --tags is empty)
  set      Set store properties
  remove   Remove store properties
  ping     Check that the server can load a store
  unload   Ask the server to release a store

Examples:
  exmdb-admin store props --config exmdb.toml --homedir /d/1
  exmdb-admin store props --config exmdb.toml --homedir /d/1 --tags 0e080014,3ff50003
  exmdb-admin store set --config exmdb.toml --homedir /d/1 --prop 3ff50003=1048576 --prop 661d000b=true
  exmdb-admin store remove --config exmdb.toml --homedir /d/1 --tags 3ff50003
  exmdb-admin store ping --config exmdb.toml --homedir /d/1
`)
}
