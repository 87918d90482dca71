package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, DefaultEndpoint)
	}
	if cfg.Months != 24 {
		t.Errorf("Months = %d, want 24", cfg.Months)
	}
	if cfg.MaxOffset != 20 {
		t.Errorf("MaxOffset = %d, want 20", cfg.MaxOffset)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout)
	}
	if cfg.Output != "srrc_events.json" {
		t.Errorf("Output = %q, want srrc_events.json", cfg.Output)
	}
	if cfg.Concurrency != 1 || cfg.Retries != 0 {
		t.Errorf("Concurrency/Retries = %d/%d, want 1/0", cfg.Concurrency, cfg.Retries)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SRRC_MONTHS", "6")
	t.Setenv("SRRC_TIMEOUT", "3s")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Months != 6 {
		t.Errorf("Months = %d, want 6", cfg.Months)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %s, want 3s", cfg.Timeout)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srrc.yaml")
	content := "output: out/events.json\nconcurrency: 4\nics: events.ics\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	SetDefaults(v)
	v.Set("config", path)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "out/events.json" {
		t.Errorf("Output = %q, want out/events.json", cfg.Output)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.ICS != "events.ics" {
		t.Errorf("ICS = %q, want events.ics", cfg.ICS)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(v); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Endpoint:    DefaultEndpoint,
		Months:      24,
		MaxOffset:   20,
		Timeout:     time.Second,
		Concurrency: 1,
		Output:      "out.json",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero months", func(c *Config) { c.Months = 0 }, "months"},
		{"zero offset cap", func(c *Config) { c.MaxOffset = 0 }, "max_offset"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"negative retries", func(c *Config) { c.Retries = -2 }, "retries"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
		{"empty endpoint", func(c *Config) { c.Endpoint = " " }, "endpoint"},
		{"empty output", func(c *Config) { c.Output = "" }, "output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
