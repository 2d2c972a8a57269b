package auth

import (
	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
)

type BootstrapDTO struct {
	Username           string `json:"username"`
	PasswordClientHash string `json:"password_client_hash"`
	PersonName         string `json:"person_name"`
}

func (d BootstrapDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password_client_hash", d.PasswordClientHash).Required()
	v.Field("person_name", d.PersonName).Required()
	return v.Validate()
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username           string `json:"username"`
	PasswordClientHash string `json:"password_client_hash"`
}

func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password_client_hash", d.PasswordClientHash).Required()
	return v.Validate()
}

type ChangePasswordDTO struct {
	CurrentPasswordClientHash string `json:"current_password_client_hash"`
	NewPasswordClientHash     string `json:"new_password_client_hash"`
}

func (d ChangePasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("current_password_client_hash", d.CurrentPasswordClientHash).Required()
	v.Field("new_password_client_hash", d.NewPasswordClientHash).Required()
	return v.Validate()
}

type UserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	PersonNameB64 string `json:"person_name_b64"`
	IsAdmin       bool   `json:"is_admin"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func toUserResponse(u *userDatamodel.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		PersonNameB64: u.PersonNameB64,
		IsAdmin:       u.IsAdmin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
