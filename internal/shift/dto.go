package shift

import (
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
)

var ErrMissingFields = internal.NewValidationError("person_id, start_at, end_at are required", internal.ErrCodeValidationFailed)

type ShiftDTO struct {
	PersonID string `json:"person_id"`
	StartAt  string `json:"start_at"`
	EndAt    string `json:"end_at"`
}

// Interval is a validated [Start, End) range in UTC.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (d ShiftDTO) ValidateRequired() *internal.AppError {
	if d.PersonID == "" || d.StartAt == "" || d.EndAt == "" {
		return ErrMissingFields
	}
	return nil
}

// Interval parses both timestamps and requires end to be strictly after start.
func (d ShiftDTO) Interval() (Interval, *internal.AppError) {
	v := validation.NewValidator()
	v.Field("start_at", d.StartAt).Timestamp()
	v.Field("end_at", d.EndAt).Timestamp()
	if err := v.Validate(); err != nil {
		return Interval{}, err
	}

	start, _ := timestamp.Parse(d.StartAt)
	end, _ := timestamp.Parse(d.EndAt)

	v = validation.NewValidator()
	v.Field("start_at", start).Before(end, internal.ErrInvalidRange)
	if err := v.Validate(); err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

// ListFilter holds the inclusive start_ts bounds of a listing. A nil bound is open.
type ListFilter struct {
	From *int64
	To   *int64
}

// ParseListFilter reads the start_at/end_at query values. With neither
// present the listing starts at now.
func ParseListFilter(startParam, endParam string, now time.Time) (ListFilter, *internal.AppError) {
	if startParam == "" && endParam == "" {
		from := timestamp.Millis(now)
		return ListFilter{From: &from}, nil
	}

	var f ListFilter
	if startParam != "" {
		t, err := timestamp.Parse(startParam)
		if err != nil {
			return ListFilter{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidTimestamp)
		}
		ms := timestamp.Millis(t)
		f.From = &ms
	}
	if endParam != "" {
		t, err := timestamp.Parse(endParam)
		if err != nil {
			return ListFilter{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidTimestamp)
		}
		ms := timestamp.Millis(t)
		f.To = &ms
	}
	if f.From != nil && f.To != nil && *f.To < *f.From {
		return ListFilter{}, internal.ErrInvalidRange
	}
	return f, nil
}
