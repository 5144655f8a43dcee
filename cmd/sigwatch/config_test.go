//go:build !windows

package main

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"tools.zach/dev/sigflow"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sigwatch.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Watch.Signals) == 0 {
		t.Error("default watch list is empty")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.MaxSizeMB != 10 {
		t.Errorf("default max size = %d, want 10", cfg.Log.MaxSizeMB)
	}
	if cfg.Webhook.TimeoutSeconds != 10 {
		t.Errorf("default webhook timeout = %d, want 10", cfg.Webhook.TimeoutSeconds)
	}
}

func TestLoadConfigParsesAllSections(t *testing.T) {
	path := writeConfigFile(t, `
[watch]
signals = ["SIGHUP", "SIGUSR*"]
ack_timeout_ms = 250

[log]
file = "/var/log/sigwatch.log"
level = "debug"
max_size_mb = 5

[forward]
endpoint = "/run/sigwatch.sock"

[webhook]
url = "https://example.test/hook"
timeout_seconds = 3

[stats]
file = "/var/lib/sigwatch/stats.json"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got, want := cfg.Watch.Signals, []string{"SIGHUP", "SIGUSR*"}; !slices.Equal(got, want) {
		t.Errorf("signals = %v, want %v", got, want)
	}
	if cfg.Watch.AckTimeoutMS != 250 {
		t.Errorf("ack_timeout_ms = %d, want 250", cfg.Watch.AckTimeoutMS)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxSizeMB != 5 {
		t.Errorf("log = %+v, want debug/5", cfg.Log)
	}
	if cfg.Forward.Endpoint != "/run/sigwatch.sock" {
		t.Errorf("forward endpoint = %q", cfg.Forward.Endpoint)
	}
	if cfg.Webhook.URL != "https://example.test/hook" || cfg.Webhook.TimeoutSeconds != 3 {
		t.Errorf("webhook = %+v", cfg.Webhook)
	}
	if cfg.Stats.File != "/var/lib/sigwatch/stats.json" {
		t.Errorf("stats file = %q", cfg.Stats.File)
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := writeConfigFile(t, "[watch\nsignals = ]")
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig accepted malformed TOML")
	}
}

func TestWriteDefaultConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigwatch.toml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !slices.Equal(cfg.Watch.Signals, defaultSignalNames()) {
		t.Errorf("signals = %v, want defaults", cfg.Watch.Signals)
	}
}

func TestResolveSignals(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    []sigflow.Kind
		wantErr bool
	}{
		{
			name:    "literals",
			entries: []string{"SIGHUP", "sigterm"},
			want:    []sigflow.Kind{sigflow.SIGHUP, sigflow.SIGTERM},
		},
		{
			name:    "pattern expands",
			entries: []string{"SIGUSR*"},
			want:    []sigflow.Kind{sigflow.SIGUSR1, sigflow.SIGUSR2},
		},
		{
			name:    "pattern and literal dedup",
			entries: []string{"SIGUSR1", "SIGUSR*"},
			want:    []sigflow.Kind{sigflow.SIGUSR1, sigflow.SIGUSR2},
		},
		{
			name:    "single char pattern",
			entries: []string{"SIGTT??"},
			want:    []sigflow.Kind{sigflow.SIGTTIN, sigflow.SIGTTOU},
		},
		{
			name:    "pattern with no match skipped",
			entries: []string{"SIGNOPE*"},
			want:    []sigflow.Kind{},
		},
		{
			name:    "unknown literal is an error",
			entries: []string{"SIGBOGUS"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSignals(tt.entries)
			if tt.wantErr {
				if !errors.Is(err, sigflow.ErrInvalidSignal) {
					t.Fatalf("resolveSignals = %v, want ErrInvalidSignal", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveSignals: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("resolveSignals(%v) = %v, want %v", tt.entries, got, tt.want)
			}
		})
	}
}

func TestResolveSignalsSorted(t *testing.T) {
	got, err := resolveSignals([]string{"SIGTERM", "SIGHUP", "SIGINT"})
	if err != nil {
		t.Fatalf("resolveSignals: %v", err)
	}
	if !slices.IsSorted(got) {
		t.Errorf("resolveSignals not sorted: %v", got)
	}
}
