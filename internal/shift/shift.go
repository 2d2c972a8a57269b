// Package shift schedules people onto time ranges.
package shift

import (
	shiftDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/shift"
)

type Shift struct {
	ID            string `json:"id"`
	PersonID      string `json:"person_id"`
	PersonNameB64 string `json:"person_name_b64"`
	StartAt       string `json:"start_at"`
	EndAt         string `json:"end_at"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ShiftsResponse struct {
	Shifts []*Shift `json:"shifts"`
}

func FromDataModel(s *shiftDatamodel.ShiftWithPerson) *Shift {
	return &Shift{
		ID:            s.ID,
		PersonID:      s.PersonID,
		PersonNameB64: s.PersonNameB64,
		StartAt:       s.StartAt,
		EndAt:         s.EndAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
