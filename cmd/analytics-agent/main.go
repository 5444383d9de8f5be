// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command analytics-agent runs the playback telemetry agent against a
// simulated player session and publishes records to the configured transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mahfuzsust/AnalyticsSDK/internal/config"
	"github.com/mahfuzsust/AnalyticsSDK/internal/daemon"
	"github.com/mahfuzsust/AnalyticsSDK/internal/health"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/player"
	"github.com/mahfuzsust/AnalyticsSDK/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	duration := flag.Duration("duration", 0, "length of the simulated session; 0 plays until interrupted")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "analytics-agent",
		Version: version.Version,
	})
	logger := xglog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader(*configPath, version.Version).Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.Log.Level,
		Service: "analytics-agent",
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("main")
	logger.Info().
		Str("event", "config.loaded").
		Str("transport", cfg.Transport.Kind).
		Dur("sample_interval", cfg.Agent.SampleInterval).
		Dur("publish_interval", cfg.Agent.PublishInterval).
		Msg("configuration loaded")

	hm := health.NewManager(cfg.Version, nil)
	var servers []daemon.Server
	if cfg.Metrics.ListenAddr != "" {
		servers = append(servers, daemon.Server{Name: "metrics", Addr: cfg.Metrics.ListenAddr, Handler: daemon.OpsHandler(hm)})
	}
	mgr := daemon.NewManager(daemon.Config{
		Servers:         servers,
		ShutdownTimeout: cfg.Agent.PublishTimeout + 5*time.Second,
		Logger:          logger,
	})

	if err := daemon.InitTelemetry(ctx, cfg.Telemetry, "analytics-agent", cfg.Version, mgr); err != nil {
		logger.Fatal().Err(err).Str("event", "telemetry.init_failed").Msg("failed to initialise tracing")
	}

	sim := player.NewSimulator()
	agent, err := daemon.WireAgent(ctx, cfg, daemon.AgentDeps{
		Player: sim,
		Logger: xglog.WithComponent("agent"),
		Health: hm,
	}, mgr)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "agent.wire_failed").Msg("failed to build agent")
	}
	if err := agent.Start(ctx); err != nil {
		logger.Fatal().Err(err).Str("event", "agent.start_failed").Msg("failed to start agent")
	}

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		playSession(runCtx, sim, *duration)
		logger.Info().Str("event", "session.finished").Msg("simulated session finished")
	}()

	if err := mgr.Run(runCtx); err != nil {
		logger.Error().Err(err).Str("event", "agent.shutdown_failed").Msg("shutdown completed with errors")
		os.Exit(1)
	}
	logger.Info().Str("event", "agent.exited").Msg("agent exiting")
}
