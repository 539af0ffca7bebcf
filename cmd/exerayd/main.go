// Command exerayd is the monitor's CLI front-end: it loads configuration,
// wires an engine around either a real eBPF event source or the in-process
// simulator, launches the target executable, and exposes the Prometheus
// metrics endpoint while the target runs.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/exeray/exeray/internal/config"
	"github.com/exeray/exeray/internal/engine"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/source/ebpfsource"
	"github.com/exeray/exeray/internal/source/simsource"
	"github.com/exeray/exeray/internal/target"
	"github.com/exeray/exeray/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (overrides CONFIG_PATH)")
	exePath := flag.String("exe", "", "executable to launch and monitor (overrides target.exe_path)")
	useSim := flag.Bool("sim", false, "use the in-process simulated event source instead of eBPF")
	providersFlag := flag.String("providers", "", "comma-separated provider names to force-enable, e.g. Process,Network")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("CONFIG_PATH", *configPath)
	}
	cfg := config.Get()
	setupLogging(cfg.Logging)

	if *exePath != "" {
		cfg.Target.ExePath = *exePath
	}
	if cfg.Target.ExePath == "" {
		slog.Error("exerayd: no target executable configured (set target.exe_path, CONFIG_PATH, or -exe)")
		os.Exit(1)
	}
	if *providersFlag != "" {
		forceEnable(cfg, strings.Split(*providersFlag, ","))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New()
	if cfg.Telemetry.Enabled {
		go func() {
			if err := telemetry.Serve(ctx, cfg.Telemetry.Addr); err != nil {
				slog.Warn("exerayd: telemetry server stopped", "error", err)
			}
		}()
		slog.Info("exerayd: telemetry listening", "addr", cfg.Telemetry.Addr)
	}

	eng := engine.New(engine.Config{
		ArenaBytes:    cfg.Engine.ArenaBytes,
		GraphCapacity: cfg.Engine.GraphCapacity,
		Providers:     providerEntries(cfg.Providers),
		Controller:    target.NewProcessController(),
		Source:        newSource(*useSim),
		Metrics:       metrics,
		TargetArgs:    cfg.Target.Args,
		TargetWorkdir: cfg.Target.Workdir,
	})
	defer eng.Close()

	if !eng.StartMonitoring(cfg.Target.ExePath) {
		slog.Error("exerayd: failed to start monitoring", "exe", cfg.Target.ExePath)
		os.Exit(1)
	}
	slog.Info("exerayd: monitoring started", "exe", cfg.Target.ExePath, "pid", eng.TargetPid())

	<-ctx.Done()
	slog.Info("exerayd: shutting down")
	eng.StopMonitoring()
}

func newSource(useSim bool) source.Session {
	if useSim {
		return simsource.New()
	}
	sess, err := ebpfsource.New(nil, nil)
	if err != nil {
		slog.Error("exerayd: failed to initialize eBPF source, falling back to simulator", "error", err)
		return simsource.New()
	}
	return sess
}

func providerEntries(entries []config.ProviderConfig) []engine.ProviderEntry {
	out := make([]engine.ProviderEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, engine.ProviderEntry{
			Name:     e.Name,
			Enabled:  e.Enabled,
			Level:    e.Level,
			Keywords: e.Keywords,
		})
	}
	return out
}

func forceEnable(cfg *config.Config, names []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	for i := range cfg.Providers {
		if want[cfg.Providers[i].Name] {
			cfg.Providers[i].Enabled = true
		}
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
