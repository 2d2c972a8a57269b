// Package person exposes the read-only people projection that mirrors users.
package person

import (
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
)

type Person struct {
	ID            string `json:"id"`
	PersonNameB64 string `json:"person_name_b64"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type PeopleResponse struct {
	People []*Person `json:"people"`
}

func FromDataModel(p *userDatamodel.Person) *Person {
	return &Person{
		ID:            p.ID,
		PersonNameB64: p.PersonNameB64,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
