package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	auditDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/audit"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/google/uuid"
)

// Request method recorded when a mutation does not originate from HTTP.
const MethodInternal = "INTERNAL"

type Repository interface {
	Create(ctx context.Context, l *auditDatamodel.Log) error
	List(ctx context.Context, limit int) ([]*auditDatamodel.Log, error)
}

type Recorder struct {
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewRecorder(repo Repository, publisher events.Publisher, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record writes e using the transaction carried by ctx, so the entry commits
// or rolls back together with the mutation it describes. The request method
// and path come from internal.ContextWithRequest.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	req := internal.RequestFromContext(ctx)
	if req.Method == "" {
		req.Method = MethodInternal
	}

	row := &auditDatamodel.Log{
		ID:            uuid.NewString(),
		OccurredAt:    timestamp.Format(r.now()),
		ActorUserID:   nullable(e.ActorUserID),
		ActorUsername: nullable(e.ActorUsername),
		Action:        e.Action,
		ResourceType:  e.ResourceType,
		ResourceID:    nullable(e.ResourceID),
		RequestMethod: req.Method,
		RequestPath:   req.Path,
		StatusCode:    e.StatusCode,
	}
	if err := r.repo.Create(ctx, row); err != nil {
		r.logger.Error("failed to write audit log", "action", e.Action, "error", err)
		return internal.NewInternalError("failed to write audit log", err)
	}

	if r.publisher != nil {
		event := events.NewAuditRecordedEvent(row.ID, e.Action, e.ResourceType, e.ResourceID, e.ActorUserID, e.StatusCode)
		store.AfterCommit(ctx, func() {
			_ = r.publisher.Publish(ctx, event)
		})
	}
	return nil
}
