package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/shiftboard/internal/app"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/transport/swagger"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Apply pending migrations and start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

func startHTTPServer() error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	lg := logger.LoggerWrapper()
	ctx := context.Background()

	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	if _, err := swagger.Load(ctx); err != nil {
		return err
	}

	application, err := app.New(cfg, db, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if _, err := session.ScheduleSweep(scheduler, application.Sessions, cfg.Security.SessionSweepInterval, lg); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	scheduler.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "driver", cfg.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           application.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			shutdownScheduler(scheduler, lg)
			return fmt.Errorf("server failed to start: %w", err)
		}
	}

	shutdownScheduler(scheduler, lg)
	application.Bus.Wait()
	lg.Info("Server stopped")
	return nil
}

func shutdownScheduler(s gocron.Scheduler, lg *slog.Logger) {
	if err := s.Shutdown(); err != nil {
		lg.Error("Scheduler shutdown error", "error", err)
	}
}
