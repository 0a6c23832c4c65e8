package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/silomba/backend/internal/database"
	"github.com/silomba/backend/internal/server"
	"github.com/silomba/backend/internal/storage"
	"github.com/silomba/backend/pkg/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("database_close_failed", err, nil)
		}
	}()

	if err := database.Seed(db, cfg.Seed); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	posters, err := storage.New(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("poster storage initialization failed: %w", err)
	}

	srv := server.New(cfg, db, posters)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("server_stopping", map[string]interface{}{
			"signal": sig.String(),
		})
		if err := srv.Shutdown(shutdownTimeout); err != nil {
			logger.Error("server_shutdown_failed", err, nil)
		}
		return nil
	case err := <-errCh:
		_ = srv.Shutdown(shutdownTimeout)
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
