package user

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/audit"
	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/credential"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	CreateAccount(ctx context.Context, u *userDatamodel.User, cred *userDatamodel.Credential) error
	Update(ctx context.Context, u *userDatamodel.User, syncPerson bool) error
	Delete(ctx context.Context, id string) error
	CountShifts(ctx context.Context, userID string) (int64, error)
	ReplaceCredential(ctx context.Context, cred *userDatamodel.Credential) error
}

type SessionRevoker interface {
	InvalidateAll(ctx context.Context, userID string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

type PasswordCodec interface {
	NewRecord(clientHash string) (credential.Record, error)
}

type Service struct {
	repo     Repository
	sessions SessionRevoker
	codec    PasswordCodec
	recorder AuditRecorder
	tx       store.Transactor
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo Repository, sessions SessionRevoker, codec PasswordCodec, recorder AuditRecorder, tx store.Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		codec:    codec,
		recorder: recorder,
		tx:       tx,
		now:      time.Now,
		logger:   logger,
	}
}

func entryFor(actor *session.Identity, action, userID string, status int) audit.Entry {
	return audit.Entry{
		ActorUserID:   actor.UserID,
		ActorUsername: actor.Username,
		Action:        action,
		ResourceType:  audit.ResourceUser,
		ResourceID:    userID,
		StatusCode:    status,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, actor *session.Identity, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if existing != nil {
		return nil, internal.ErrUsernameTaken
	}

	rec, err := s.codec.NewRecord(dto.PasswordClientHash)
	if err != nil {
		return nil, internal.NewInternalError("failed to derive credential", err)
	}

	now := timestamp.Format(s.now())
	row := &userDatamodel.User{
		ID:            uuid.NewString(),
		Username:      dto.Username,
		PersonNameB64: userDatamodel.EncodeName(dto.PersonName),
		IsAdmin:       dto.IsAdmin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	cred := &userDatamodel.Credential{
		UserID:       row.ID,
		PasswordSalt: rec.Salt,
		PasswordHash: rec.Hash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateAccount(ctx, row, cred); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrUsernameTaken
			}
			return internal.NewInternalError("failed to create user", err)
		}
		return s.recorder.Record(ctx, entryFor(actor, audit.ActionUserCreate, row.ID, http.StatusCreated))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username, "is_admin", row.IsAdmin, "actor", actor.UserID)
	return FromDataModel(row), nil
}

// Update changes the display name and/or admin flag. The people mirror is
// rewritten in the same transaction whenever the name changes.
func (s *Service) Update(ctx context.Context, actor *session.Identity, id string, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *userDatamodel.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to load user", err)
		}
		if existing == nil {
			return internal.ErrUserNotFound
		}

		if dto.HasPersonName() {
			existing.PersonNameB64 = userDatamodel.EncodeName(dto.PersonName)
		}
		if dto.HasIsAdmin {
			existing.IsAdmin = dto.IsAdmin
		}
		existing.UpdatedAt = timestamp.Format(s.now())

		if err := s.repo.Update(ctx, existing, dto.HasPersonName()); err != nil {
			return internal.NewInternalError("failed to update user", err)
		}
		updated = existing
		return s.recorder.Record(ctx, entryFor(actor, audit.ActionUserUpdate, id, http.StatusOK))
	})
	if err != nil {
		return nil, err
	}

	return FromDataModel(updated), nil
}

// Delete removes a user together with their person row, credential and
// sessions. Users that still own shifts cannot be deleted.
func (s *Service) Delete(ctx context.Context, actor *session.Identity, id string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to load user", err)
		}
		if existing == nil {
			return internal.ErrUserNotFound
		}

		n, err := s.repo.CountShifts(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to count shifts", err)
		}
		if n > 0 {
			return internal.ErrUserHasShifts
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			return internal.NewInternalError("failed to delete user", err)
		}
		return s.recorder.Record(ctx, entryFor(actor, audit.ActionUserDelete, id, http.StatusNoContent))
	})
}

// ResetPassword replaces a user's credential and revokes all of their sessions.
func (s *Service) ResetPassword(ctx context.Context, actor *session.Identity, id string, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if existing == nil {
		return internal.ErrUserNotFound
	}

	rec, err := s.codec.NewRecord(dto.PasswordClientHash)
	if err != nil {
		return internal.NewInternalError("failed to derive credential", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := s.repo.ReplaceCredential(ctx, &userDatamodel.Credential{
			UserID:       id,
			PasswordSalt: rec.Salt,
			PasswordHash: rec.Hash,
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
		})
		if err != nil {
			return internal.NewInternalError("failed to replace credential", err)
		}
		if err := s.sessions.InvalidateAll(ctx, id); err != nil {
			return err
		}
		return s.recorder.Record(ctx, entryFor(actor, audit.ActionUserResetPassword, id, http.StatusNoContent))
	})
}
