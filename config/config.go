package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/migadu/exmdb/helpers"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Output    string `toml:"output"`     // Log output: "stderr", "stdout", "syslog", or file path
	Format    string `toml:"format"`     // Log format: "json" or "console"
	Level     string `toml:"level"`      // Log level: "debug", "info", "warn", "error"
	SyslogTag string `toml:"syslog_tag"` // Tag used when output is "syslog" (default: "exmdb")
}

// ExmdbConfig describes how to reach the exmdb server.
type ExmdbConfig struct {
	Host string      `toml:"host"`
	Port interface{} `toml:"port"` // Server port (default: 5000), can be string or integer

	// Prefix is announced in the connect handshake. Every homedir used on
	// the connection must live below it.
	Prefix   string `toml:"prefix"`
	Private  bool   `toml:"private"`   // Private (user) stores instead of public (domain) stores
	RemoteID string `toml:"remote_id"` // Client identity, defaults to exmdb-go:<hostname>:<pid>

	DialTimeout  string `toml:"dial_timeout"`   // e.g. "5s"
	IOTimeout    string `toml:"io_timeout"`     // Per call bound, "0" disables it
	MaxReplySize string `toml:"max_reply_size"` // e.g. "64MiB"

	ConnectRetries int `toml:"connect_retries"` // Extra dial attempts by exmdb-admin, 0 disables
}

// MetricsConfig holds the Prometheus endpoint and store monitor settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"` // Listen address, e.g. ":9100"
	Path    string `toml:"path"` // Metrics path, e.g. "/metrics"

	// Homedirs are pinged every PingInterval and reported as exmdb_store_up.
	Homedirs     []string `toml:"homedirs"`
	PingInterval string   `toml:"ping_interval"`
}

// Config holds all configuration for the exmdb client tooling.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Exmdb   ExmdbConfig   `toml:"exmdb"`
	Metrics MetricsConfig `toml:"metrics"`
}

const (
	DefaultPort         = 5000
	DefaultDialTimeout  = 5 * time.Second
	DefaultIOTimeout    = 30 * time.Second
	DefaultPingInterval = 60 * time.Second
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Output: "stderr",  // Default to stderr
			Format: "console", // Default to console format
			Level:  "info",    // Default to info level
		},
		Exmdb: ExmdbConfig{
			Host:           "localhost",
			Port:           "5000",
			Prefix:         "/var/lib/gromox/domain",
			Private:        false,
			DialTimeout:    "5s",
			IOTimeout:      "30s",
			MaxReplySize:   "64MiB",
			ConnectRetries: 2,
		},
		Metrics: MetricsConfig{
			Enabled:      false,
			Addr:         ":9100",
			Path:         "/metrics",
			PingInterval: "60s",
		},
	}
}

// GetPort parses the configured port, which may be a string or an integer.
func (c *ExmdbConfig) GetPort() (int, error) {
	if c.Port == nil {
		return DefaultPort, nil
	}
	var p int64
	var err error
	switch v := c.Port.(type) {
	case string:
		if v == "" {
			return DefaultPort, nil
		}
		p, err = strconv.ParseInt(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid string for port: %q", v)
		}
	case int:
		p = int64(v)
	case int64: // TOML parsers often use int64 for numbers
		p = v
	default:
		return 0, fmt.Errorf("invalid type for port: %T", v)
	}
	port := int(p)
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port number %d is out of the valid range (1-65535)", port)
	}
	return port, nil
}

// GetDialTimeout parses the dial timeout.
func (c *ExmdbConfig) GetDialTimeout() (time.Duration, error) {
	return helpers.ParseDuration(c.DialTimeout)
}

// GetIOTimeout parses the per call timeout.
func (c *ExmdbConfig) GetIOTimeout() (time.Duration, error) {
	return helpers.ParseDuration(c.IOTimeout)
}

// GetMaxReplySize parses the reply size limit.
func (c *ExmdbConfig) GetMaxReplySize() (int64, error) {
	return helpers.ParseSize(c.MaxReplySize)
}

// GetDialTimeoutWithDefault returns the dial timeout, or the default when
// unset or invalid.
func (c *ExmdbConfig) GetDialTimeoutWithDefault() time.Duration {
	d, err := c.GetDialTimeout()
	if err != nil || d <= 0 {
		return DefaultDialTimeout
	}
	return d
}

// GetIOTimeoutWithDefault returns the per call timeout. An explicit "0"
// disables it; an empty or invalid value selects the default.
func (c *ExmdbConfig) GetIOTimeoutWithDefault() time.Duration {
	if c.IOTimeout == "" {
		return DefaultIOTimeout
	}
	d, err := c.GetIOTimeout()
	if err != nil || d < 0 {
		return DefaultIOTimeout
	}
	return d
}

// GetPingInterval parses the store ping interval.
func (c *MetricsConfig) GetPingInterval() (time.Duration, error) {
	return helpers.ParseDuration(c.PingInterval)
}

// GetPingIntervalWithDefault returns the ping interval, or the default when
// unset or invalid.
func (c *MetricsConfig) GetPingIntervalWithDefault() time.Duration {
	d, err := c.GetPingInterval()
	if err != nil || d <= 0 {
		return DefaultPingInterval
	}
	return d
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		result = multierror.Append(result, fmt.Errorf("logging.format: unsupported format %q", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("logging.level: unsupported level %q", c.Logging.Level))
	}

	if c.Exmdb.Host == "" {
		result = multierror.Append(result, errors.New("exmdb.host: must not be empty"))
	}
	if _, err := c.Exmdb.GetPort(); err != nil {
		result = multierror.Append(result, fmt.Errorf("exmdb.port: %w", err))
	}
	if c.Exmdb.Prefix == "" {
		result = multierror.Append(result, errors.New("exmdb.prefix: must not be empty"))
	}
	if d, err := c.Exmdb.GetDialTimeout(); err != nil {
		result = multierror.Append(result, fmt.Errorf("exmdb.dial_timeout: %w", err))
	} else if d < 0 {
		result = multierror.Append(result, errors.New("exmdb.dial_timeout: must not be negative"))
	}
	if d, err := c.Exmdb.GetIOTimeout(); err != nil {
		result = multierror.Append(result, fmt.Errorf("exmdb.io_timeout: %w", err))
	} else if d < 0 {
		result = multierror.Append(result, errors.New("exmdb.io_timeout: must not be negative"))
	}
	if n, err := c.Exmdb.GetMaxReplySize(); err != nil {
		result = multierror.Append(result, fmt.Errorf("exmdb.max_reply_size: %w", err))
	} else if n > 0xFFFFFFFF {
		result = multierror.Append(result, fmt.Errorf("exmdb.max_reply_size: %d exceeds the 32-bit frame limit", n))
	}
	if c.Exmdb.ConnectRetries < 0 {
		result = multierror.Append(result, errors.New("exmdb.connect_retries: must not be negative"))
	}

	if c.Metrics.Enabled {
		if c.Metrics.Addr == "" {
			result = multierror.Append(result, errors.New("metrics.addr: must be set when metrics are enabled"))
		}
		if c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
			result = multierror.Append(result, fmt.Errorf("metrics.path: %q must start with '/'", c.Metrics.Path))
		}
	}
	if _, err := c.Metrics.GetPingInterval(); err != nil {
		result = multierror.Append(result, fmt.Errorf("metrics.ping_interval: %w", err))
	}
	for _, h := range c.Metrics.Homedirs {
		if c.Exmdb.Prefix != "" && !strings.HasPrefix(h, c.Exmdb.Prefix) {
			result = multierror.Append(result, fmt.Errorf("metrics.homedirs: %q is outside prefix %q", h, c.Exmdb.Prefix))
		}
	}

	return result.ErrorOrNil()
}

// LoadConfigFromFile loads configuration from a TOML file and trims whitespace from all string fields.
// This function attempts to parse the config file and provides helpful error messages for common issues.
func LoadConfigFromFile(configPath string, cfg *Config) error {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	// Try to decode - capture metadata to check for unknown keys
	metadata, err := toml.Decode(string(content), cfg)
	if err != nil {
		if !strings.Contains(err.Error(), "has already been defined") {
			return enhanceConfigError(err)
		}

		log.Printf("WARNING: Configuration file '%s' contains duplicate keys: %s", configPath, err)
		log.Printf("WARNING: Ignoring duplicate entries. Only the first occurrence of each key will be used.")

		cleanedContent, parseErr := removeDuplicateKeysFromTOML(string(content))
		if parseErr != nil {
			return enhanceConfigError(err)
		}
		metadata, err = toml.Decode(cleanedContent, cfg)
		if err != nil {
			return enhanceConfigError(err)
		}
	}

	// Warn about unknown keys (might be typos or deprecated settings)
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		log.Printf("WARNING: Configuration file '%s' contains unknown keys that will be ignored:", configPath)
		for _, key := range undecoded {
			log.Printf("WARNING:   - %s", key)
		}
	}

	trimStringFields(reflect.ValueOf(cfg).Elem())
	return nil
}

// removeDuplicateKeysFromTOML comments out every repeated key within a
// table, keeping the first occurrence.
func removeDuplicateKeysFromTOML(content string) (string, error) {
	lines := strings.Split(content, "\n")
	seenKeys := make(map[string]int) // Maps key path to line number
	var result []string
	var currentSection string

	for lineNum, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		if strings.HasPrefix(trimmed, "[[") && strings.HasSuffix(trimmed, "]]") {
			// Each [[table]] is a new array element, so its keys start fresh
			currentSection = strings.TrimSpace(trimmed[2 : len(trimmed)-2])
			for k := range seenKeys {
				if strings.HasPrefix(k, currentSection+".") {
					delete(seenKeys, k)
				}
			}
			result = append(result, line)
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			currentSection = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			result = append(result, line)
			continue
		}

		if key, _, ok := strings.Cut(trimmed, "="); ok {
			fullKey := strings.TrimSpace(key)
			if currentSection != "" {
				fullKey = currentSection + "." + fullKey
			}
			if prevLine, exists := seenKeys[fullKey]; exists {
				log.Printf("WARNING: Duplicate key '%s' found at line %d (first occurrence at line %d). Ignoring duplicate.",
					fullKey, lineNum+1, prevLine+1)
				result = append(result, "# DUPLICATE IGNORED: "+line)
				continue
			}
			seenKeys[fullKey] = lineNum
		}

		result = append(result, line)
	}

	return strings.Join(result, "\n"), nil
}

// enhanceConfigError provides more helpful error messages for common TOML parsing issues
func enhanceConfigError(err error) error {
	errMsg := err.Error()

	if strings.Contains(errMsg, "expected value but found \"f\"") ||
		strings.Contains(errMsg, "expected value but found \"t\"") {
		return fmt.Errorf("%w\n\nHINT: Invalid boolean value in your TOML configuration file.\n"+
			"In TOML, boolean values must be exactly 'true' or 'false' (lowercase, unquoted)", err)
	}

	if strings.Contains(errMsg, "expected") || strings.Contains(errMsg, "invalid") {
		return fmt.Errorf("%w\n\nHINT: There is a syntax error in your TOML configuration file.\n"+
			"Please check:\n"+
			"  - All strings are properly quoted\n"+
			"  - All brackets and braces are balanced\n"+
			"  - Section headers use [section] format\n"+
			"  - Boolean values are 'true' or 'false'", err)
	}

	return err
}

// trimStringFields recursively trims whitespace from all string fields in a struct
func trimStringFields(v reflect.Value) {
	if !v.IsValid() || !v.CanSet() {
		return
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(strings.TrimSpace(v.String()))

	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			trimStringFields(v.Index(i))
		}

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			trimStringFields(v.Field(i))
		}

	case reflect.Ptr:
		if !v.IsNil() {
			trimStringFields(v.Elem())
		}

	case reflect.Interface:
		// Port may hold a string or an integer
		if !v.IsNil() {
			elem := v.Elem()
			if elem.Kind() == reflect.String {
				v.Set(reflect.ValueOf(strings.TrimSpace(elem.String())))
			}
		}
	}
}
