package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "exmdb.toml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	return configPath
}

func TestLoadConfigFromFile(t *testing.T) {
	configPath := writeConfig(t, `
[logging]
output = "stdout"
format = "json"
level  = "debug"

[exmdb]
host = "  exmdb.internal  "
port = 5001
prefix = "/var/lib/gromox/domain"
private = false
remote_id = "admin-tool"
dial_timeout = "2s"
io_timeout = "0"
max_reply_size = "16MiB"
connect_retries = 5

[metrics]
enabled = true
addr = ":9200"
homedirs = ["/var/lib/gromox/domain/1", "/var/lib/gromox/domain/2"]
ping_interval = "1m"
`)

	cfg := NewDefaultConfig()
	if err := LoadConfigFromFile(configPath, &cfg); err != nil {
		t.Fatalf("LoadConfigFromFile returned unexpected error: %v", err)
	}

	if cfg.Exmdb.Host != "exmdb.internal" {
		t.Errorf("Expected host to be trimmed, got %q", cfg.Exmdb.Host)
	}
	port, err := cfg.Exmdb.GetPort()
	if err != nil || port != 5001 {
		t.Errorf("Expected port 5001, got %d (%v)", port, err)
	}
	if got := cfg.Exmdb.GetIOTimeoutWithDefault(); got != 0 {
		t.Errorf("Expected io_timeout to be disabled, got %v", got)
	}
	if n, _ := cfg.Exmdb.GetMaxReplySize(); n != 16<<20 {
		t.Errorf("Expected 16MiB reply limit, got %d", n)
	}
	if cfg.Exmdb.ConnectRetries != 5 {
		t.Errorf("Expected 5 connect retries, got %d", cfg.Exmdb.ConnectRetries)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Expected default metrics path to survive, got %q", cfg.Metrics.Path)
	}
	if len(cfg.Metrics.Homedirs) != 2 {
		t.Errorf("Expected 2 homedirs, got %v", cfg.Metrics.Homedirs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

// TestLoadConfigFromFile_UnknownKeys tests that unknown keys produce warnings but don't fail
func TestLoadConfigFromFile_UnknownKeys(t *testing.T) {
	configPath := writeConfig(t, `
[exmdb]
host = "localhost"
prefix = "/d"

# Unknown keys
unknown_key = "should warn"
typo_setting = 123

[storage]
bucket = "ignored"
`)

	cfg := &Config{}
	if err := LoadConfigFromFile(configPath, cfg); err != nil {
		t.Errorf("LoadConfigFromFile returned unexpected error: %v", err)
	}
	if cfg.Exmdb.Prefix != "/d" {
		t.Errorf("Expected prefix=/d, got %s", cfg.Exmdb.Prefix)
	}
}

// TestRemoveDuplicateKeys_SimpleSection tests duplicate detection in simple sections
func TestRemoveDuplicateKeys_SimpleSection(t *testing.T) {
	content := `
[exmdb]
private = true
private = false

[logging]
level = "info"
level = "debug"
`

	cleaned, err := removeDuplicateKeysFromTOML(content)
	if err != nil {
		t.Fatalf("removeDuplicateKeysFromTOML failed: %v", err)
	}

	if !strings.Contains(cleaned, "# DUPLICATE IGNORED: private = false") {
		t.Error("Expected second 'private' to be commented out")
	}
	if !strings.Contains(cleaned, "# DUPLICATE IGNORED: level = \"debug\"") {
		t.Error("Expected second 'level' to be commented out")
	}

	hasFirst := false
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.TrimSpace(line) == "private = true" {
			hasFirst = true
		}
	}
	if !hasFirst {
		t.Error("Expected first 'private = true' to be preserved")
	}
}

// TestRemoveDuplicateKeys_SameKeyDifferentSections tests that keys are scoped by section
func TestRemoveDuplicateKeys_SameKeyDifferentSections(t *testing.T) {
	content := `
[exmdb]
host = "a"

[metrics]
host = "b"
`

	cleaned, err := removeDuplicateKeysFromTOML(content)
	if err != nil {
		t.Fatalf("removeDuplicateKeysFromTOML failed: %v", err)
	}
	if strings.Contains(cleaned, "DUPLICATE IGNORED") {
		t.Errorf("Did not expect duplicates across sections:\n%s", cleaned)
	}
}

// TestRemoveDuplicateKeys_ArrayTables tests that multiple [[table]] blocks don't trigger false duplicates
func TestRemoveDuplicateKeys_ArrayTables(t *testing.T) {
	content := `
[[store]]
homedir = "/d/1"

[[store]]
homedir = "/d/2"

[exmdb]
host = "a"
host = "b"
`

	cleaned, err := removeDuplicateKeysFromTOML(content)
	if err != nil {
		t.Fatalf("removeDuplicateKeysFromTOML failed: %v", err)
	}

	if n := strings.Count(cleaned, "# DUPLICATE IGNORED:"); n != 1 {
		t.Errorf("Expected exactly one duplicate, got %d:\n%s", n, cleaned)
	}
	if !strings.Contains(cleaned, "# DUPLICATE IGNORED: host = \"b\"") {
		t.Error("Expected duplicate 'host' in regular section to be commented out")
	}
	if strings.Count(cleaned, "[[store]]") != 2 {
		t.Error("Expected both [[store]] blocks to be preserved")
	}
}

// TestEnhanceConfigError_BooleanVariants tests error hints for various boolean typos
func TestEnhanceConfigError_BooleanVariants(t *testing.T) {
	tests := []struct {
		name        string
		errorMsg    string
		shouldMatch bool
	}{
		{"f instead of false", `toml: line 5: expected value but found "f" instead`, true},
		{"t instead of true", `toml: line 5: expected value but found "t" instead`, true},
		{"regular syntax error", `toml: line 5: expected value but found "[" instead`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := enhanceConfigError(&mockError{msg: tt.errorMsg})

			enhancedStr := enhanced.Error()
			hasBooleanHint := strings.Contains(enhancedStr, "Invalid boolean value")
			if tt.shouldMatch != hasBooleanHint {
				t.Errorf("Boolean hint = %v for error: %s", hasBooleanHint, tt.errorMsg)
			}
			if !strings.Contains(enhancedStr, tt.errorMsg) {
				t.Error("Enhanced error should contain original error message")
			}
		})
	}
}

// TestLoadConfigFromFile_BooleanTypos tests that boolean typos fail with helpful error
func TestLoadConfigFromFile_BooleanTypos(t *testing.T) {
	configPath := writeConfig(t, `
[exmdb]
host = "localhost"
private = f
`)

	cfg := &Config{}
	err := LoadConfigFromFile(configPath, cfg)
	if err == nil {
		t.Fatal("Expected error for 'f' instead of 'false'")
	}
	if !strings.Contains(err.Error(), "Invalid boolean value") {
		t.Errorf("Expected boolean hint in error, got: %v", err)
	}
}

// TestLoadConfigFromFile_DuplicateKeys tests that duplicate keys are handled gracefully
func TestLoadConfigFromFile_DuplicateKeys(t *testing.T) {
	configPath := writeConfig(t, `
[exmdb]
host = "first"
host = "second"
`)

	cfg := &Config{}
	if err := LoadConfigFromFile(configPath, cfg); err != nil {
		t.Errorf("LoadConfigFromFile should handle duplicates gracefully, got error: %v", err)
	}
	if cfg.Exmdb.Host != "first" {
		t.Errorf("Expected first value 'first', got: %s", cfg.Exmdb.Host)
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	cfg := &Config{}
	if err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.toml"), cfg); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

// mockError is a simple error type for testing
type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
