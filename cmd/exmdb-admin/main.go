package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]
	switch command {
	case "folder":
		handleFolderCommand(ctx)
	case "owner":
		handleOwnerCommand(ctx)
	case "store":
		handleStoreCommand(ctx)
	case "config":
		handleConfigCommand(ctx)
	case "monitor":
		handleMonitor(ctx)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`exmdb Admin Tool

Usage:
  exmdb-admin <command> <subcommand> [options]

Commands:
  folder    Create, delete, list and inspect public folders
  owner     List, add and remove folder owners
  store     Read and change store properties, ping or unload a store
  config    Validate or dump a configuration file
  monitor   Ping stores periodically and serve Prometheus metrics
  help      Show this help message

Examples:
  exmdb-admin folder create --config exmdb.toml --homedir /var/lib/gromox/domain/1 --domain-id 1 --name Sales
  exmdb-admin folder list --config exmdb.toml --homedir /var/lib/gromox/domain/1
  exmdb-admin owner add --config exmdb.toml --homedir /var/lib/gromox/domain/1 --folder-id 0x1a --username boss@example.com
  exmdb-admin store ping --config exmdb.toml --homedir /var/lib/gromox/domain/1
  exmdb-admin monitor --config exmdb.toml

Use 'exmdb-admin <command> help' for more information about a command.
`)
}
