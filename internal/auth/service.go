package auth

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
	"github.com/frahmantamala/shiftboard/internal/metrics"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the main auth service with dependencies
type Service struct {
	repo     Repository
	sessions SessionManager
	codec    PasswordCodec
	recorder AuditRecorder
	tx       store.Transactor
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo Repository, sessions SessionManager, codec PasswordCodec, recorder AuditRecorder, tx store.Transactor, logger *slog.Logger) *Service {
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

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) authFailure(kind string) {
	if s.metrics != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues(kind).Inc()
	}
}

func (s *Service) ensureUninitialized(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return internal.NewInternalError("failed to count users", err)
	}
	if n > 0 {
		return internal.ErrAlreadyInitialized
	}
	return nil
}

// Bootstrap creates the first account as an admin and signs it in. It is
// rejected once any user exists.
func (s *Service) Bootstrap(ctx context.Context, dto BootstrapDTO) (*SessionResponse, error) {
	if err := s.ensureUninitialized(ctx); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.codec.NewRecord(dto.PasswordClientHash)
	if err != nil {
		return nil, internal.NewInternalError("failed to derive credential", err)
	}

	now := timestamp.Format(s.now())
	u := &userDatamodel.User{
		ID:            uuid.NewString(),
		Username:      dto.Username,
		PersonNameB64: userDatamodel.EncodeName(dto.PersonName),
		IsAdmin:       true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	cred := &userDatamodel.Credential{
		UserID:       u.ID,
		PasswordSalt: rec.Salt,
		PasswordHash: rec.Hash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}

	var sess *session.Session
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockAccounts(ctx); err != nil {
			return internal.NewInternalError("failed to lock users", err)
		}
		if err := s.ensureUninitialized(ctx); err != nil {
			return err
		}
		if err := s.repo.CreateAccount(ctx, u, cred); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrAlreadyInitialized
			}
			return internal.NewInternalError("failed to create user", err)
		}

		var err error
		if sess, err = s.sessions.Create(ctx, u.ID); err != nil {
			return err
		}

		return s.recorder.Record(ctx, audit.Entry{
			ActorUserID:   u.ID,
			ActorUsername: u.Username,
			Action:        audit.ActionBootstrap,
			ResourceType:  audit.ResourceUser,
			ResourceID:    u.ID,
			StatusCode:    http.StatusCreated,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bootstrap completed", "user_id", u.ID, "username", u.Username)
	return &SessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toUserResponse(u)}, nil
}

// Login exchanges a username and client pre-hash for a new session. Unknown
// users and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*SessionResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		s.authFailure("login")
		return nil, internal.ErrUnauthorized
	}

	if err := s.verify(ctx, u.ID, dto.PasswordClientHash); err != nil {
		s.authFailure("login")
		return nil, err
	}

	var sess *session.Session
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if sess, err = s.sessions.Create(ctx, u.ID); err != nil {
			return err
		}
		return s.recorder.Record(ctx, audit.Entry{
			ActorUserID:   u.ID,
			ActorUsername: u.Username,
			Action:        audit.ActionLogin,
			ResourceType:  audit.ResourceSession,
			StatusCode:    http.StatusOK,
		})
	})
	if err != nil {
		return nil, err
	}

	return &SessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toUserResponse(u)}, nil
}

func (s *Service) verify(ctx context.Context, userID, clientHash string) error {
	cred, err := s.repo.GetCredential(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to load credential", err)
	}
	if cred == nil || !s.codec.Verify(clientHash, cred.PasswordSalt, cred.PasswordHash) {
		return internal.ErrUnauthorized
	}
	return nil
}

// Logout revokes the session the caller authenticated with.
func (s *Service) Logout(ctx context.Context, identity *session.Identity) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.InvalidateOne(ctx, identity.Token); err != nil {
			return err
		}
		return s.recorder.Record(ctx, audit.Entry{
			ActorUserID:   identity.UserID,
			ActorUsername: identity.Username,
			Action:        audit.ActionLogout,
			ResourceType:  audit.ResourceSession,
			StatusCode:    http.StatusNoContent,
		})
	})
}

// ChangePassword replaces the caller's credential and revokes all of their
// sessions, including the current one.
func (s *Service) ChangePassword(ctx context.Context, identity *session.Identity, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if err := s.verify(ctx, identity.UserID, dto.CurrentPasswordClientHash); err != nil {
		s.authFailure("change_password")
		return err
	}

	rec, err := s.codec.NewRecord(dto.NewPasswordClientHash)
	if err != nil {
		return internal.NewInternalError("failed to derive credential", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := s.repo.ReplaceCredential(ctx, &userDatamodel.Credential{
			UserID:       identity.UserID,
			PasswordSalt: rec.Salt,
			PasswordHash: rec.Hash,
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
		})
		if err != nil {
			return internal.NewInternalError("failed to replace credential", err)
		}
		if err := s.sessions.InvalidateAll(ctx, identity.UserID); err != nil {
			return err
		}
		return s.recorder.Record(ctx, audit.Entry{
			ActorUserID:   identity.UserID,
			ActorUsername: identity.Username,
			Action:        audit.ActionChangePassword,
			ResourceType:  audit.ResourceUser,
			ResourceID:    identity.UserID,
			StatusCode:    http.StatusNoContent,
		})
	})
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *Service) Authenticate(ctx context.Context, token string) (*session.Identity, error) {
	identity, err := s.sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, internal.ErrUnauthorized) {
			s.authFailure("session")
		}
		return nil, err
	}
	return identity, nil
}
