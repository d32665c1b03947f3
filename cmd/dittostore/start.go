package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the store server",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Dittostore - Store Metadata Service")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Server configuration:")
	logger.Info("  Name: %s", cfg.Server.Name)
	logger.Info("  Variant: %s", cfg.Behavior.Variant)
	logger.Info("  Session idle timeout: %v", cfg.Server.SessionIdleTimeout)
	logger.Info("  Shutdown timeout: %v", cfg.Server.ShutdownTimeout)
	if cfg.Server.Metrics.Enabled {
		logger.Info("  Metrics port: %d", cfg.Server.Metrics.Port)
	} else {
		logger.Info("  (metrics disabled)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("Server is running. Press Ctrl+C to stop.")
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
