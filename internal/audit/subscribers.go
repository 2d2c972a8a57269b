package audit

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal/core/events"
)

// LogSubscriber writes a structured line for every committed audit entry.
func LogSubscriber(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.AuditRecordedEvent)
		if !ok {
			return nil
		}
		logger.Info("audit entry recorded",
			"log_id", e.LogID,
			"action", e.Action,
			"resource_type", e.ResourceType,
			"resource_id", e.ResourceID,
			"actor_user_id", e.ActorUserID,
			"status_code", e.StatusCode)
		return nil
	}
}
