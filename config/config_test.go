package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
)

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid, got: %v", err)
	}

	port, err := cfg.Exmdb.GetPort()
	if err != nil {
		t.Fatalf("Failed to parse default port: %v", err)
	}
	if port != DefaultPort {
		t.Errorf("Expected default port %d, got %d", DefaultPort, port)
	}
	if d := cfg.Exmdb.GetDialTimeoutWithDefault(); d != 5*time.Second {
		t.Errorf("Expected dial timeout 5s, got %v", d)
	}
	if d := cfg.Metrics.GetPingIntervalWithDefault(); d != DefaultPingInterval {
		t.Errorf("Expected ping interval %v, got %v", DefaultPingInterval, d)
	}
}

func TestExmdbConfig_GetPort(t *testing.T) {
	tests := []struct {
		name    string
		port    interface{}
		want    int
		wantErr bool
	}{
		{"nil", nil, DefaultPort, false},
		{"empty string", "", DefaultPort, false},
		{"string", "5001", 5001, false},
		{"int", 5002, 5002, false},
		{"int64", int64(5003), 5003, false},
		{"garbage", "http", 0, true},
		{"zero", 0, 0, true},
		{"too large", int64(70000), 0, true},
		{"float", 5000.5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ExmdbConfig{Port: tt.port}
			got, err := c.GetPort()
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetPort() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("GetPort() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExmdbConfig_TimeoutDefaults(t *testing.T) {
	tests := []struct {
		name      string
		ioTimeout string
		want      time.Duration
	}{
		{"unset", "", DefaultIOTimeout},
		{"explicit zero disables", "0", 0},
		{"custom", "2m", 2 * time.Minute},
		{"invalid falls back", "soon", DefaultIOTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ExmdbConfig{IOTimeout: tt.ioTimeout}
			if got := c.GetIOTimeoutWithDefault(); got != tt.want {
				t.Errorf("GetIOTimeoutWithDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.Format = "xml"
	cfg.Exmdb.Host = ""
	cfg.Exmdb.Port = "not-a-port"
	cfg.Exmdb.DialTimeout = "forever"
	cfg.Exmdb.MaxReplySize = "8GiB"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "metrics"
	cfg.Metrics.Homedirs = []string{"/elsewhere/1"}
	cfg.Exmdb.ConnectRetries = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}

	merr, ok := err.(*multierror.Error)
	if !ok {
		t.Fatalf("Expected *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 8 {
		t.Errorf("Expected 8 problems, got %d: %v", len(merr.Errors), err)
	}
	for _, want := range []string{
		"logging.format",
		"exmdb.host",
		"exmdb.port",
		"exmdb.dial_timeout",
		"exmdb.max_reply_size",
		"exmdb.connect_retries",
		"metrics.path",
		"metrics.homedirs",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got: %v", want, err)
		}
	}
}

func TestTrimStringFields(t *testing.T) {
	cfg := Config{
		Exmdb: ExmdbConfig{Host: " h ", Port: " 5000 "},
		Metrics: MetricsConfig{
			Homedirs: []string{" /d/1", "/d/2 "},
		},
	}
	trimStringFields(reflect.ValueOf(&cfg).Elem())

	if cfg.Exmdb.Host != "h" {
		t.Errorf("Expected trimmed host, got %q", cfg.Exmdb.Host)
	}
	if cfg.Exmdb.Port != "5000" {
		t.Errorf("Expected trimmed port, got %q", cfg.Exmdb.Port)
	}
	if cfg.Metrics.Homedirs[0] != "/d/1" || cfg.Metrics.Homedirs[1] != "/d/2" {
		t.Errorf("Expected trimmed homedirs, got %q", cfg.Metrics.Homedirs)
	}
}
