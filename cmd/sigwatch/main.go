// Package main implements sigwatch, a diagnostic daemon that subscribes to a
// configurable set of OS signals through sigflow and logs, forwards, and
// counts every delivery.
//
// sigwatch reloads its watch set when the config file changes or (on Unix)
// when it receives SIGHUP, and exits cleanly on the platform's terminal
// events.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"tools.zach/dev/sigflow"
	"tools.zach/dev/sigflow/internal/atomicfile"
	"tools.zach/dev/sigflow/internal/confwatch"
	"tools.zach/dev/sigflow/internal/forward"
	"tools.zach/dev/sigflow/internal/logger"
	"tools.zach/dev/sigflow/internal/webhook"
)

// ///////////////////////////////////////////////
// Entry Point
// ///////////////////////////////////////////////

func main() {
	configPath := flag.String("config", "sigwatch.toml", "path to the sigwatch config file")
	tail := flag.Int("tail", 0, "print the last N log lines and exit")
	writeDefault := flag.Bool("write-config", false, "write the default config file and exit")
	flag.Parse()

	if *writeDefault {
		if err := writeDefaultConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote", *configPath)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	if *tail > 0 {
		if cfg.Log.File == "" {
			fmt.Fprintln(os.Stderr, "no log file configured")
			os.Exit(1)
		}
		out, err := logger.ReadTail(cfg.Log.File, *tail)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		log, closer, err := logger.NewLogger(cfg.Log.File, level, cfg.Log.MaxSizeMB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: init logger: %v\n", err)
			os.Exit(1)
		}
		defer closer.Close()
		slog.SetDefault(log)
	} else {
		slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, level)))
	}

	if err := run(*configPath, cfg); err != nil {
		slog.Error("sigwatch failed", "error", err)
		os.Exit(1)
	}
}

// ///////////////////////////////////////////////
// Daemon
// ///////////////////////////////////////////////

// watchSet computes the full kind set for cfg: the configured signals plus
// the platform's mandatory shutdown/reload kinds.
func watchSet(cfg Config) ([]sigflow.Kind, error) {
	kinds, err := resolveSignals(cfg.Watch.Signals)
	if err != nil {
		return nil, err
	}
	for _, k := range mandatoryKinds() {
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	slices.Sort(kinds)
	return kinds, nil
}

// run is the daemon loop: pump listener events, dispatch each to the log,
// forwarder, webhook and stats, and reload the watch set on config changes.
func run(configPath string, cfg Config) error {
	if cfg.Watch.AckTimeoutMS > 0 {
		sigflow.SetConsoleAckTimeout(time.Duration(cfg.Watch.AckTimeoutMS) * time.Millisecond)
	}

	kinds, err := watchSet(cfg)
	if err != nil {
		return err
	}
	l, err := sigflow.New(kinds...)
	if err != nil {
		return fmt.Errorf("create listener: %w", err)
	}
	defer l.Close()
	slog.Info("sigwatch starting", "signals", kindNames(kinds), "pid", os.Getpid())

	var fwd *forward.Forwarder
	if cfg.Forward.Endpoint != "" {
		fwd, err = forward.Dial(cfg.Forward.Endpoint)
		if err != nil {
			slog.Warn("forwarding disabled", "error", err)
		} else {
			defer fwd.Close()
		}
	}

	var hook *webhook.Notifier
	if cfg.Webhook.URL != "" {
		hook = webhook.New(cfg.Webhook.URL, time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second)
	}

	watcher, err := confwatch.New(configPath)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()
	if watcher.Polling() {
		slog.Info("using polling mode for config watching")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pump listener events into a channel so the main loop can also select
	// on config changes.
	events := make(chan sigflow.Kind)
	pumpErr := make(chan error, 1)
	go func() {
		for {
			k, err := l.Next(ctx)
			if err != nil {
				pumpErr <- err
				return
			}
			events <- k
		}
	}()

	stats := make(map[string]uint64)
	defer writeStats(cfg.Stats.File, stats)

	for {
		select {
		case k := <-events:
			name := k.String()
			stats[name]++
			slog.Info("signal delivered", "kind", name, "count", stats[name])

			if fwd != nil {
				if err := fwd.Send(name); err != nil {
					slog.Warn("forward failed", "error", err)
				}
			}
			if hook != nil {
				go func() {
					if err := hook.Notify(name); err != nil {
						slog.Warn("webhook failed", "error", err)
					}
				}()
			}

			switch {
			case isShutdown(k):
				slog.Info("shutdown signal, exiting", "kind", name)
				return nil
			case isReload(k):
				kinds = reload(l, configPath, kinds, stats, cfg.Stats.File)
			}

		case <-watcher.Events():
			slog.Info("config file changed")
			kinds = reload(l, configPath, kinds, stats, cfg.Stats.File)

		case err := <-pumpErr:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("listener: %w", err)
		}
	}
}

// reload re-resolves the watch set from the config file and adjusts the
// listener's registrations in place.
func reload(l *sigflow.Listener, configPath string, current []sigflow.Kind, stats map[string]uint64, statsFile string) []sigflow.Kind {
	cfg, err := loadConfig(configPath)
	if err != nil {
		slog.Warn("reload skipped", "error", err)
		return current
	}
	next, err := watchSet(cfg)
	if err != nil {
		slog.Warn("reload skipped", "error", err)
		return current
	}

	var added, removed []sigflow.Kind
	for _, k := range next {
		if !slices.Contains(current, k) {
			added = append(added, k)
		}
	}
	for _, k := range current {
		if !slices.Contains(next, k) {
			removed = append(removed, k)
		}
	}
	if len(added) > 0 {
		if err := l.Add(added...); err != nil {
			slog.Warn("reload: add signals failed", "error", err)
			return current
		}
	}
	if len(removed) > 0 {
		l.Remove(removed...)
	}
	if len(added) > 0 || len(removed) > 0 {
		slog.Info("watch set reloaded", "signals", kindNames(next))
	}
	writeStats(statsFile, stats)
	return next
}

// writeStats snapshots the per-kind delivery counts, if configured.
func writeStats(path string, stats map[string]uint64) {
	if path == "" || len(stats) == 0 {
		return
	}
	if err := atomicfile.WriteJSON(path, stats, 0o644); err != nil {
		slog.Warn("write stats failed", "error", err)
	}
}

// kindNames formats kinds for logging.
func kindNames(kinds []sigflow.Kind) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return strings.Join(names, ",")
}
