// config.go loads the sigwatch TOML configuration and resolves the
// configured signal-name patterns to concrete kinds.

package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"tools.zach/dev/sigflow"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config is the top-level sigwatch configuration.
type Config struct {
	// Watch selects which signals to listen for.
	Watch WatchConfig `toml:"watch"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Forward holds local-socket forwarding settings.
	Forward ForwardConfig `toml:"forward"`
	// Webhook holds HTTP notification settings.
	Webhook WebhookConfig `toml:"webhook"`
	// Stats holds delivery statistics settings.
	Stats StatsConfig `toml:"stats"`
}

// WatchConfig selects the signals to listen for.
type WatchConfig struct {
	// Signals is a list of kind names or glob patterns ("SIGTERM",
	// "SIGUSR*"). Names are matched case-insensitively against the
	// platform's supported set.
	Signals []string `toml:"signals"`
	// AckTimeoutMS tunes the Windows console acknowledgment grace period.
	// Zero keeps the default. Ignored on Unix.
	AckTimeoutMS int `toml:"ack_timeout_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// File is the log file path; empty logs to stderr.
	File string `toml:"file"`
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string `toml:"level"`
	// MaxSizeMB caps the log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ForwardConfig holds local forwarding settings.
type ForwardConfig struct {
	// Endpoint is a Unix socket path or \\.\pipe\ name; empty disables
	// forwarding.
	Endpoint string `toml:"endpoint"`
}

// WebhookConfig holds HTTP notification settings.
type WebhookConfig struct {
	// URL receives a JSON POST per event; empty disables the webhook.
	URL string `toml:"url"`
	// TimeoutSeconds bounds each POST attempt.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// StatsConfig holds delivery statistics settings.
type StatsConfig struct {
	// File is where the per-kind delivery counts snapshot is written on
	// shutdown and reload; empty disables it.
	File string `toml:"file"`
}

// defaultConfig returns the built-in defaults: terminal signals only, info
// logging, no forwarding or webhook.
func defaultConfig() Config {
	return Config{
		Watch: WatchConfig{
			Signals: defaultSignalNames(),
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Webhook: WebhookConfig{
			TimeoutSeconds: 10,
		},
	}
}

// ///////////////////////////////////////////////
// Loading
// ///////////////////////////////////////////////

// loadConfig reads path, applying defaults for missing fields. A missing
// file yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Watch.Signals) == 0 {
		cfg.Watch.Signals = defaultSignalNames()
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 10
	}
	if cfg.Webhook.TimeoutSeconds <= 0 {
		cfg.Webhook.TimeoutSeconds = 10
	}
	return cfg, nil
}

// writeDefaultConfig writes the default configuration to path for first-run
// discoverability.
func writeDefaultConfig(path string) error {
	cfg := defaultConfig()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ///////////////////////////////////////////////
// Signal Resolution
// ///////////////////////////////////////////////

// isPattern reports whether entry contains glob metacharacters.
func isPattern(entry string) bool {
	return strings.ContainsAny(entry, "*?[")
}

// resolveSignals expands the configured names and patterns into a sorted,
// deduplicated kind list. A literal name that does not resolve is an error;
// a pattern matching nothing is only skipped.
func resolveSignals(entries []string) ([]sigflow.Kind, error) {
	seen := make(map[sigflow.Kind]struct{})
	for _, entry := range entries {
		if !isPattern(entry) {
			k, err := sigflow.ParseKind(entry)
			if err != nil {
				return nil, err
			}
			seen[k] = struct{}{}
			continue
		}
		pattern := strings.ToUpper(strings.TrimSpace(entry))
		for _, k := range sigflow.Kinds() {
			ok, err := doublestar.Match(pattern, k.String())
			if err != nil {
				return nil, fmt.Errorf("signal pattern %q: %w", entry, err)
			}
			if ok {
				seen[k] = struct{}{}
			}
		}
	}

	kinds := make([]sigflow.Kind, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds, nil
}
