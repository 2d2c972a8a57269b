// Package session issues, validates and revokes bearer session tokens.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	sessionDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/session"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/metrics"
	"github.com/frahmantamala/shiftboard/internal/store"
)

const (
	ReasonLogout         = "logout"
	ReasonPasswordChange = "password_change"
	ReasonExpired        = "expired"
	ReasonSweep          = "sweep"
)

// Identity is the authenticated caller, read fresh from the user row on every
// validation.
type Identity struct {
	Token         string `json:"-"`
	UserID        string `json:"id"`
	Username      string `json:"username"`
	PersonNameB64 string `json:"person_name_b64"`
	IsAdmin       bool   `json:"is_admin"`
}

// Session is what a caller receives after bootstrap or login.
type Session struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type Repository interface {
	Create(ctx context.Context, s *sessionDatamodel.Session) error
	GetByToken(ctx context.Context, token string) (*sessionDatamodel.Session, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, nowMillis int64) (int64, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
}

type Manager struct {
	repo       Repository
	users      UserReader
	ttl        time.Duration
	tokenBytes int
	now        func() time.Time
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewManager(repo Repository, users UserReader, cfg internal.SecurityConfig, logger *slog.Logger) *Manager {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = internal.DefaultSessionTTL
	}
	tokenBytes := cfg.TokenBytes
	if tokenBytes < internal.DefaultTokenBytes {
		tokenBytes = internal.DefaultTokenBytes
	}
	return &Manager{
		repo:       repo,
		users:      users,
		ttl:        ttl,
		tokenBytes: tokenBytes,
		now:        time.Now,
		logger:     logger,
	}
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) WithPublisher(p events.Publisher) *Manager {
	m.publisher = p
	return m
}

func (m *Manager) WithMetrics(mt *metrics.Metrics) *Manager {
	m.metrics = mt
	return m
}

func (m *Manager) newToken() (string, error) {
	buf := make([]byte, m.tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create persists a new session for userID expiring after the configured TTL.
func (m *Manager) Create(ctx context.Context, userID string) (*Session, error) {
	token, err := m.newToken()
	if err != nil {
		return nil, internal.NewInternalError("failed to create session", err)
	}

	now := m.now().UTC()
	expires := now.Add(m.ttl)
	row := &sessionDatamodel.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: timestamp.Format(now),
		ExpiresAt: timestamp.Format(expires),
		ExpiresTS: timestamp.Millis(expires),
	}
	if err := m.repo.Create(ctx, row); err != nil {
		m.logger.Error("failed to persist session", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to create session", err)
	}

	if m.metrics != nil {
		store.AfterCommit(ctx, m.metrics.SessionsIssued.Inc)
	}
	return &Session{Token: row.Token, ExpiresAt: row.ExpiresAt}, nil
}

// Validate resolves token to the current identity of its owner. Unknown,
// expired and orphaned tokens all yield internal.ErrUnauthorized; expired
// tokens are deleted on the way out.
func (m *Manager) Validate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, internal.ErrUnauthorized
	}

	s, err := m.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, internal.NewInternalError("failed to load session", err)
	}
	if s == nil {
		return nil, internal.ErrUnauthorized
	}

	if s.ExpiresTS <= timestamp.Millis(m.now()) {
		if _, err := m.repo.DeleteByToken(ctx, token); err != nil {
			m.logger.Warn("failed to delete expired session", "user_id", s.UserID, "error", err)
		} else {
			m.revoked(ctx, s.UserID, ReasonExpired, 1)
		}
		return nil, internal.ErrUnauthorized
	}

	u, err := m.users.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load session user", err)
	}
	if u == nil {
		return nil, internal.ErrUnauthorized
	}

	return &Identity{
		Token:         token,
		UserID:        u.ID,
		Username:      u.Username,
		PersonNameB64: u.PersonNameB64,
		IsAdmin:       u.IsAdmin,
	}, nil
}

// InvalidateAll deletes every session owned by userID.
func (m *Manager) InvalidateAll(ctx context.Context, userID string) error {
	n, err := m.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to invalidate sessions", err)
	}
	m.revoked(ctx, userID, ReasonPasswordChange, n)
	return nil
}

// InvalidateOne deletes a single session.
func (m *Manager) InvalidateOne(ctx context.Context, token string) error {
	s, err := m.repo.GetByToken(ctx, token)
	if err != nil {
		return internal.NewInternalError("failed to load session", err)
	}
	n, err := m.repo.DeleteByToken(ctx, token)
	if err != nil {
		return internal.NewInternalError("failed to invalidate session", err)
	}
	if s != nil {
		m.revoked(ctx, s.UserID, ReasonLogout, n)
	}
	return nil
}

// SweepExpired deletes every session whose expiry has passed.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, timestamp.Millis(m.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}
	if n > 0 {
		if m.metrics != nil {
			m.metrics.SessionsSwept.Add(float64(n))
		}
		m.revoked(ctx, "", ReasonSweep, n)
	}
	return n, nil
}

func (m *Manager) revoked(ctx context.Context, userID, reason string, count int64) {
	if count == 0 || m.publisher == nil {
		return
	}
	event := events.NewSessionsRevokedEvent(userID, reason, count)
	store.AfterCommit(ctx, func() {
		_ = m.publisher.Publish(ctx, event)
	})
}
