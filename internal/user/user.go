package user

import (
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
)

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	PersonNameB64 string `json:"person_name_b64"`
	IsAdmin       bool   `json:"is_admin"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:            u.ID,
		Username:      u.Username,
		PersonNameB64: u.PersonNameB64,
		IsAdmin:       u.IsAdmin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
