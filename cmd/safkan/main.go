package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/app"
	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/server"
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
	syncTarget  = flag.String("sync", "", "Run a one-shot sync for the given stablemate id and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Safkan version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if *configFile == "" {
		if _, err := os.Stat("safkan.toml"); err == nil {
			*configFile = "safkan.toml"
		}
	}

	config, err := common.LoadFromFile(*configFile)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Str("path", *configFile).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if *serverPort != 0 {
		config.Server.Port = *serverPort
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("config_file", *configFile).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	// One-shot mode: sync a single stablemate and exit
	if *syncTarget != "" {
		os.Exit(runOnce(application, logger, *syncTarget))
	}

	if err := application.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start background services")
		os.Exit(1)
	}

	srv := server.New(application)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
			os.Exit(1)
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := application.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Application close failed")
	}
}

// runOnce performs a single stablemate sync from the command line,
// printing per-horse progress to the log as it goes. The returned code
// is the process exit status; storage is closed before returning.
func runOnce(application *app.App, logger arbor.ILogger, stablemateID string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer closeCancel()
		if err := application.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("Application close failed")
		}
	}()

	opts := interfaces.SyncOptions{
		Progress: func(event interfaces.ProgressEvent) {
			logger.Info().
				Int("current", event.Current).
				Int("total", event.Total).
				Str("horse", event.HorseName).
				Str("status", event.Status).
				Msg("Sync progress")
		},
	}

	result, err := application.SyncService.SyncStablemate(ctx, stablemateID, opts)
	if err != nil {
		logger.Error().Err(err).Str("stablemate_id", stablemateID).Msg("Sync failed")
		return 1
	}

	logger.Info().
		Str("run_id", result.RunID).
		Int("processed", result.Processed).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Sync complete")
	return 0
}
