package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/migadu/exmdb/config"
	"github.com/migadu/exmdb/exmdb"
	"github.com/migadu/exmdb/logger"
	"github.com/migadu/exmdb/mapi"
	"github.com/migadu/exmdb/pkg/retry"
)

// connFlags are the connection settings every subcommand accepts. Flags
// that are set override the configuration file.
type connFlags struct {
	configPath string
	host       string
	port       int
	prefix     string
	private    bool
}

func addConnFlags(fs *flag.FlagSet) *connFlags {
	cf := &connFlags{}
	fs.StringVar(&cf.configPath, "config", "", "Path to TOML configuration file")
	fs.StringVar(&cf.host, "host", "", "exmdb server host (overrides config)")
	fs.IntVar(&cf.port, "port", 0, "exmdb server port (overrides config)")
	fs.StringVar(&cf.prefix, "prefix", "", "Homedir prefix announced on connect (overrides config)")
	fs.BoolVar(&cf.private, "private", false, "Connect to private stores (overrides config)")
	return cf
}

// loadConfig reads the configuration, applies flag overrides, validates the
// result and initializes logging.
func loadConfig(fs *flag.FlagSet, cf *connFlags) (config.Config, error) {
	cfg := config.NewDefaultConfig()
	if cf.configPath != "" {
		if err := config.LoadConfigFromFile(cf.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load configuration: %w", err)
		}
	}
	if cf.host != "" {
		cfg.Exmdb.Host = cf.host
	}
	if cf.port != 0 {
		cfg.Exmdb.Port = cf.port
	}
	if cf.prefix != "" {
		cfg.Exmdb.Prefix = cf.prefix
	}
	if isFlagSet(fs, "private") {
		cfg.Exmdb.Private = cf.private
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := logger.Initialize(cfg.Logging); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// connect dials the server, retrying transport failures up to
// connect_retries times. A server that rejects the handshake is not retried.
func connect(ctx context.Context, cfg config.Config) (*exmdb.Client, error) {
	opts, err := exmdb.OptionsFromConfig(cfg.Exmdb)
	if err != nil {
		return nil, err
	}

	backoff := retry.DefaultBackoffConfig()
	backoff.MaxRetries = cfg.Exmdb.ConnectRetries

	var client *exmdb.Client
	err = retry.WithRetry(ctx, func() error {
		c, err := exmdb.Connect(ctx, opts)
		if err != nil {
			if exmdb.IsServerError(err) {
				return retry.Stop(err)
			}
			return err
		}
		client = c
		return nil
	}, backoff)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// dialOnce connects without retrying.
func dialOnce(ctx context.Context, cfg config.Config) (*exmdb.Client, error) {
	opts, err := exmdb.OptionsFromConfig(cfg.Exmdb)
	if err != nil {
		return nil, err
	}
	return exmdb.Connect(ctx, opts)
}

// setup parses args, loads the configuration and connects. It exits the
// process on any failure.
func setup(ctx context.Context, fs *flag.FlagSet, cf *connFlags, args []string, required ...string) *exmdb.Client {
	fs.Parse(args)
	for _, name := range required {
		if !isFlagSet(fs, name) {
			fmt.Printf("Error: --%s is required\n", name)
			fs.PrintDefaults()
			os.Exit(1)
		}
	}
	cfg, err := loadConfig(fs, cf)
	if err != nil {
		fatalf("%v", err)
	}
	client, err := connect(ctx, cfg)
	if err != nil {
		fatalf("Failed to connect to exmdb server: %v", err)
	}
	return client
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// subcommandArgs returns the arguments after "exmdb-admin <command> <sub>".
func subcommandArgs() []string {
	if len(os.Args) < 4 {
		return nil
	}
	return os.Args[3:]
}

// parseUint64 accepts decimal and 0x-prefixed hexadecimal numbers.
func parseUint64(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 0, 64)
}

// parseProptag parses a property tag given as hex, with or without 0x.
func parseProptag(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid property tag %q", s)
	}
	return uint32(v), nil
}

// parseProptags parses a comma separated list of property tags.
func parseProptags(s string) ([]uint32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	tags := make([]uint32, 0, len(parts))
	for _, p := range parts {
		tag, err := parseProptag(p)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// parsePropAssignment parses TAG=VALUE into a propval, converting VALUE
// according to the type encoded in TAG. Times are RFC 3339, binaries hex.
func parsePropAssignment(s string) (mapi.TaggedPropval, error) {
	tagStr, valStr, ok := strings.Cut(s, "=")
	if !ok {
		return mapi.TaggedPropval{}, fmt.Errorf("expected TAG=VALUE, got %q", s)
	}
	tag, err := parseProptag(tagStr)
	if err != nil {
		return mapi.TaggedPropval{}, err
	}

	var value any
	switch t := mapi.TypeOf(tag); t {
	case mapi.PtShort:
		var v uint64
		v, err = strconv.ParseUint(valStr, 0, 16)
		value = uint16(v)
	case mapi.PtLong:
		var v uint64
		v, err = strconv.ParseUint(valStr, 0, 32)
		value = uint32(v)
	case mapi.PtI8:
		value, err = strconv.ParseUint(valStr, 0, 64)
	case mapi.PtDouble:
		value, err = strconv.ParseFloat(valStr, 64)
	case mapi.PtBoolean:
		value, err = strconv.ParseBool(valStr)
	case mapi.PtUnicode, mapi.PtString8:
		value = valStr
	case mapi.PtSysTime:
		var ts time.Time
		ts, err = time.Parse(time.RFC3339, valStr)
		value = mapi.NTTime(ts)
	case mapi.PtBinary:
		value, err = hex.DecodeString(valStr)
	case mapi.PtClsid:
		value, err = mapi.ParseGUID(valStr)
	default:
		return mapi.TaggedPropval{}, fmt.Errorf("property type %s cannot be set from the command line", t)
	}
	if err != nil {
		return mapi.TaggedPropval{}, fmt.Errorf("invalid value for tag 0x%08x: %w", tag, err)
	}
	return mapi.NewPropval(tag, value)
}

// propList collects repeated --prop flags.
type propList []mapi.TaggedPropval

func (p *propList) String() string {
	parts := make([]string, len(*p))
	for i, v := range *p {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

func (p *propList) Set(s string) error {
	v, err := parsePropAssignment(s)
	if err != nil {
		return err
	}
	*p = append(*p, v)
	return nil
}

// sizeTags hold byte counts and are printed in human readable form.
var sizeTags = map[uint32]bool{
	mapi.PrMessageSizeExtended: true,
}

// formatPropval renders a value for terminal output.
func formatPropval(p mapi.TaggedPropval) string {
	switch {
	case sizeTags[p.Tag()]:
		if n, err := p.Uint64(); err == nil {
			return fmt.Sprintf("%s (%d)", humanize.IBytes(n), n)
		}
	case p.Type() == mapi.PtSysTime:
		if n, err := p.Uint64(); err == nil {
			return mapi.TimeFromNT(n).UTC().Format(time.RFC3339)
		}
	}
	return p.PrintValue()
}

func formatNTTime(nt uint64) string {
	if nt == 0 {
		return "-"
	}
	return humanize.Time(mapi.TimeFromNT(nt))
}
