package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/migadu/exmdb/config"
)

func handleConfigCommand(ctx context.Context) {
	if len(os.Args) < 3 {
		printConfigUsage()
		os.Exit(1)
	}

	subcommand := os.Args[2]
	switch subcommand {
	case "validate":
		handleConfigValidate(ctx)
	case "dump":
		handleConfigDump(ctx)
	case "help", "--help", "-h":
		printConfigUsage()
	default:
		fmt.Printf("Unknown config subcommand: %s\n\n", subcommand)
		printConfigUsage()
		os.Exit(1)
	}
}

func handleConfigValidate(_ context.Context) {
	fs := flag.NewFlagSet("config validate", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to TOML configuration file (required)")
	fs.Parse(subcommandArgs())

	if *configFile == "" {
		fmt.Println("Error: --config is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	fmt.Printf("Validating configuration file: %s\n\n", *configFile)

	cfg := config.NewDefaultConfig()
	if err := config.LoadConfigFromFile(*configFile, &cfg); err != nil {
		fmt.Printf("❌ Configuration validation FAILED:\n")
		fmt.Printf("   %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Configuration validation FAILED:\n")
		fmt.Printf("   %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Configuration is valid!\n")
	port, _ := cfg.Exmdb.GetPort()
	fmt.Printf("\nexmdb server: %s:%d (prefix %s, private=%t)\n", cfg.Exmdb.Host, port, cfg.Exmdb.Prefix, cfg.Exmdb.Private)
	if cfg.Metrics.Enabled {
		fmt.Printf("Metrics: %s%s, %d monitored stores\n", cfg.Metrics.Addr, cfg.Metrics.Path, len(cfg.Metrics.Homedirs))
	}
}

func handleConfigDump(_ context.Context) {
	fs := flag.NewFlagSet("config dump", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to TOML configuration file (required)")
	format := fs.String("format", "toml", "Output format: toml or json")
	fs.Parse(subcommandArgs())

	if *configFile == "" {
		fmt.Println("Error: --config is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.NewDefaultConfig()
	if err := config.LoadConfigFromFile(*configFile, &cfg); err != nil {
		fatalf("Failed to load config file: %v", err)
	}
	if err := dumpConfig(os.Stdout, cfg, *format); err != nil {
		fatalf("%v", err)
	}
}

// dumpConfig writes the effective configuration, defaults included.
func dumpConfig(w io.Writer, cfg config.Config, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config as JSON: %w", err)
		}
	case "toml":
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config as TOML: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s (supported: toml, json)", format)
	}
	return nil
}

func printConfigUsage() {
	fmt.Printf(`Configuration Management

Usage:
  exmdb-admin config <subcommand> --config PATH [options]

Subcommands:
  validate Validate configuration file syntax and settings
  dump     Dump the effective configuration, defaults included

Examples:
  exmdb-admin config validate --config exmdb.toml
  exmdb-admin config dump --config exmdb.toml --format json
`)
}
