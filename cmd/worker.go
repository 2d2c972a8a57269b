package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/shiftboard/internal/app"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background jobs",
	Long:  `Start background jobs without the HTTP server.`,
}

var sweepWorkerCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Periodically delete expired sessions",
	Long:  `Run the expired-session sweeper on security.session_sweep_interval. With --once a single sweep runs and the command exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startSweepWorker()
	},
}

var sweepOnce bool

func startSweepWorker() error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	lg := logger.LoggerWrapper()
	application, err := app.New(cfg, db, lg)
	if err != nil {
		return err
	}
	defer application.Bus.Wait()

	if sweepOnce {
		n, err := application.Sessions.SweepExpired(context.Background())
		if err != nil {
			return err
		}
		lg.Info("expired sessions swept", "count", n)
		return nil
	}

	if cfg.Security.SessionSweepInterval <= 0 {
		return fmt.Errorf("security.session_sweep_interval must be positive to run the sweep worker")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if _, err := session.ScheduleSweep(scheduler, application.Sessions, cfg.Security.SessionSweepInterval, lg); err != nil {
		return err
	}
	scheduler.Start()

	lg.Info("sweep worker is running. Press Ctrl+C to stop.", "interval", cfg.Security.SessionSweepInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("received signal, shutting down sweep worker", "signal", sig)

	return scheduler.Shutdown()
}

func init() {
	sweepWorkerCmd.Flags().BoolVar(&sweepOnce, "once", false, "run a single sweep and exit")

	workerCmd.AddCommand(sweepWorkerCmd)
}
