package user

import (
	"encoding/json"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
)

var ErrNothingToUpdate = internal.NewValidationError("person_name or is_admin is required", internal.ErrCodeValidationFailed)

type CreateUserDTO struct {
	Username           string `json:"username"`
	PasswordClientHash string `json:"password_client_hash"`
	PersonName         string `json:"person_name"`
	IsAdmin            bool   `json:"is_admin"`
}

func (d CreateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password_client_hash", d.PasswordClientHash).Required()
	v.Field("person_name", d.PersonName).Required()
	return v.Validate()
}

// UpdateUserDTO records which keys were present in the request, because
// the mere presence of username is an error and is_admin may be set to false.
type UpdateUserDTO struct {
	PersonName  string
	IsAdmin     bool
	HasUsername bool
	HasIsAdmin  bool
}

func (d *UpdateUserDTO) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	_, d.HasUsername = raw["username"]

	if v, ok := raw["person_name"]; ok {
		var name *string
		if err := json.Unmarshal(v, &name); err != nil {
			return internal.NewValidationFieldError("person_name", "person_name must be a string", internal.ErrCodeInvalidBody)
		}
		if name != nil {
			d.PersonName = *name
		}
	}

	if v, ok := raw["is_admin"]; ok {
		var isAdmin *bool
		if err := json.Unmarshal(v, &isAdmin); err != nil {
			return internal.NewValidationFieldError("is_admin", "is_admin must be a boolean", internal.ErrCodeInvalidBody)
		}
		d.HasIsAdmin = true
		d.IsAdmin = isAdmin != nil && *isAdmin
	}
	return nil
}

func (d UpdateUserDTO) HasPersonName() bool {
	return d.PersonName != ""
}

// Validate checks the update in the order callers observe: an immutable
// username conflicts before an empty update is rejected.
func (d UpdateUserDTO) Validate() *internal.AppError {
	if d.HasUsername {
		return internal.ErrUsernameImmutable
	}
	if !d.HasPersonName() && !d.HasIsAdmin {
		return ErrNothingToUpdate
	}
	return nil
}

type ResetPasswordDTO struct {
	PasswordClientHash string `json:"password_client_hash"`
}

func (d ResetPasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("password_client_hash", d.PasswordClientHash).Required()
	return v.Validate()
}

type UsersResponse struct {
	Users []*User `json:"users"`
}
