package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/go-co-op/gocron/v2"
)

const sweepJobName = "session-sweep"

// ScheduleSweep registers a recurring job that deletes expired sessions.
// A non-positive interval schedules nothing.
func ScheduleSweep(s gocron.Scheduler, m *Manager, interval time.Duration, logger *slog.Logger) (gocron.Job, error) {
	if interval <= 0 {
		logger.Info("session sweeper disabled")
		return nil, nil
	}

	return s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := internal.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			n, err := m.SweepExpired(ctx)
			if err != nil {
				logger.Error("session sweep failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("expired sessions swept", "count", n)
			}
		}),
		gocron.WithName(sweepJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
}
