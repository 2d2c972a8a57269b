package shift

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/audit"
	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	shiftDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/shift"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/google/uuid"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*shiftDatamodel.ShiftWithPerson, error)
	GetByID(ctx context.Context, id string) (*shiftDatamodel.Shift, error)
	Create(ctx context.Context, s *shiftDatamodel.Shift) error
	Update(ctx context.Context, s *shiftDatamodel.Shift) error
	Delete(ctx context.Context, id string) error
}

// UserReader resolves a person_id against the users table.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

type Service struct {
	repo     Repository
	users    UserReader
	recorder AuditRecorder
	tx       store.Transactor
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo Repository, users UserReader, recorder AuditRecorder, tx store.Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		recorder: recorder,
		tx:       tx,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func entryFor(actor *session.Identity, action, shiftID string, status int) audit.Entry {
	return audit.Entry{
		ActorUserID:   actor.UserID,
		ActorUsername: actor.Username,
		Action:        action,
		ResourceType:  audit.ResourceShift,
		ResourceID:    shiftID,
		StatusCode:    status,
	}
}

// List returns shifts ordered by start. Without bounds only upcoming shifts
// are included.
func (s *Service) List(ctx context.Context, startParam, endParam string) ([]*Shift, error) {
	filter, appErr := ParseListFilter(startParam, endParam, s.now())
	if appErr != nil {
		return nil, appErr
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list shifts", "error", err)
		return nil, internal.NewInternalError("failed to list shifts", err)
	}

	shifts := make([]*Shift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, FromDataModel(row))
	}
	return shifts, nil
}

func (s *Service) person(ctx context.Context, personID string) (*userDatamodel.User, error) {
	u, err := s.users.GetByID(ctx, personID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load person", err)
	}
	if u == nil {
		return nil, internal.ErrPersonNotFound
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, actor *session.Identity, dto ShiftDTO) (*Shift, error) {
	if err := dto.ValidateRequired(); err != nil {
		return nil, err
	}

	var out *Shift
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.person(ctx, dto.PersonID)
		if err != nil {
			return err
		}
		iv, appErr := dto.Interval()
		if appErr != nil {
			return appErr
		}

		now := timestamp.Format(s.now())
		row := &shiftDatamodel.Shift{
			ID:        uuid.NewString(),
			PersonID:  p.ID,
			StartAt:   timestamp.Format(iv.Start),
			EndAt:     timestamp.Format(iv.End),
			StartTS:   timestamp.Millis(iv.Start),
			EndTS:     timestamp.Millis(iv.End),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			return internal.NewInternalError("failed to create shift", err)
		}
		out = FromDataModel(&shiftDatamodel.ShiftWithPerson{Shift: *row, PersonNameB64: p.PersonNameB64})
		return s.recorder.Record(ctx, entryFor(actor, audit.ActionShiftCreate, row.ID, http.StatusCreated))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shift created", "shift_id", out.ID, "person_id", out.PersonID, "actor", actor.UserID)
	return out, nil
}

func (s *Service) Update(ctx context.Context, actor *session.Identity, id string, dto ShiftDTO) (*Shift, error) {
	if err := dto.ValidateRequired(); err != nil {
		return nil, err
	}

	var out *Shift
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to load shift", err)
		}
		if row == nil {
			return internal.ErrShiftNotFound
		}
		p, err := s.person(ctx, dto.PersonID)
		if err != nil {
			return err
		}
		iv, appErr := dto.Interval()
		if appErr != nil {
			return appErr
		}

		row.PersonID = p.ID
		row.StartAt = timestamp.Format(iv.Start)
		row.EndAt = timestamp.Format(iv.End)
		row.StartTS = timestamp.Millis(iv.Start)
		row.EndTS = timestamp.Millis(iv.End)
		row.UpdatedAt = timestamp.Format(s.now())
		if err := s.repo.Update(ctx, row); err != nil {
			return internal.NewInternalError("failed to update shift", err)
		}
		out = FromDataModel(&shiftDatamodel.ShiftWithPerson{Shift: *row, PersonNameB64: p.PersonNameB64})
		return s.recorder.Record(ctx, entryFor(actor, audit.ActionShiftUpdate, id, http.StatusOK))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, actor *session.Identity, id string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to load shift", err)
		}
		if row == nil {
			return internal.ErrShiftNotFound
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return internal.NewInternalError("failed to delete shift", err)
		}
		return s.recorder.Record(ctx, entryFor(actor, audit.ActionShiftDelete, id, http.StatusNoContent))
	})
}
