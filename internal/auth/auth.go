// Package auth covers bootstrap, login, logout and password changes, and
// guards every other route behind a bearer session.
package auth

import (
	"context"

	"github.com/frahmantamala/shiftboard/internal/audit"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/credential"
	"github.com/frahmantamala/shiftboard/internal/session"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, identity *session.Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, identity)
}

// IdentityFromContext returns the caller attached by the Authenticate middleware.
func IdentityFromContext(ctx context.Context) (*session.Identity, bool) {
	identity, ok := ctx.Value(ContextIdentityKey).(*session.Identity)
	return identity, ok && identity != nil
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	LockAccounts(ctx context.Context) error
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	CreateAccount(ctx context.Context, u *userDatamodel.User, cred *userDatamodel.Credential) error
	GetCredential(ctx context.Context, userID string) (*userDatamodel.Credential, error)
	ReplaceCredential(ctx context.Context, cred *userDatamodel.Credential) error
}

type SessionManager interface {
	Create(ctx context.Context, userID string) (*session.Session, error)
	Validate(ctx context.Context, token string) (*session.Identity, error)
	InvalidateAll(ctx context.Context, userID string) error
	InvalidateOne(ctx context.Context, token string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

type PasswordCodec interface {
	NewRecord(clientHash string) (credential.Record, error)
	Verify(clientHash, saltB64, hashB64 string) bool
}

type ServiceAPI interface {
	Bootstrap(ctx context.Context, dto BootstrapDTO) (*SessionResponse, error)
	Login(ctx context.Context, dto LoginDTO) (*SessionResponse, error)
	Logout(ctx context.Context, identity *session.Identity) error
	ChangePassword(ctx context.Context, identity *session.Identity, dto ChangePasswordDTO) error
	Authenticate(ctx context.Context, token string) (*session.Identity, error)
}
