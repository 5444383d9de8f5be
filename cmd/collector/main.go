// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command collector runs the reference ingestion endpoint that the agent's
// HTTP transport publishes to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahfuzsust/AnalyticsSDK/internal/collector"
	"github.com/mahfuzsust/AnalyticsSDK/internal/config"
	"github.com/mahfuzsust/AnalyticsSDK/internal/daemon"
	"github.com/mahfuzsust/AnalyticsSDK/internal/health"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	xglog.Configure(xglog.Config{Level: "info", Service: "collector", Version: version.Version})
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
	xglog.Configure(xglog.Config{Level: cfg.Log.Level, Service: "collector", Version: cfg.Version})
	logger = xglog.WithComponent("main")

	c := collector.New(collector.Options{
		RateLimit: cfg.Collector.RateLimit,
		Health:    health.NewManager(cfg.Version, nil),
	})
	mgr := daemon.NewManager(daemon.Config{
		Servers: []daemon.Server{{Name: "collector", Addr: cfg.Collector.ListenAddr, Handler: c.Handler()}},
		Logger:  logger,
	})
	if err := daemon.InitTelemetry(ctx, cfg.Telemetry, "analytics-collector", cfg.Version, mgr); err != nil {
		logger.Fatal().Err(err).Str("event", "telemetry.init_failed").Msg("failed to initialise tracing")
	}

	if err := mgr.Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "collector.failed").Msg("collector stopped with errors")
		os.Exit(1)
	}

	stats := c.Stats()
	logger.Info().
		Str("event", "collector.exited").
		Int("batches", stats.Batches).
		Int("records", stats.Records).
		Msg("collector exiting")
}
