package postgres

import (
	"context"
	"errors"
	"strings"

	shiftDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/shift"
	"github.com/frahmantamala/shiftboard/internal/shift"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const listShiftsQuery = `
	SELECT s.id, s.person_id, p.person_name_b64, s.start_at, s.end_at,
	       s.start_ts, s.end_ts, s.created_at, s.updated_at
	FROM shifts s
	JOIN people p ON p.id = s.person_id`

type ShiftRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewShiftRepository(db *gorm.DB, reader *sqlx.DB) shift.Repository {
	return &ShiftRepository{db: db, reader: reader}
}

func (r *ShiftRepository) List(ctx context.Context, filter shift.ListFilter) ([]*shiftDatamodel.ShiftWithPerson, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.From != nil {
		conds = append(conds, "s.start_ts >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conds = append(conds, "s.start_ts <= ?")
		args = append(args, *filter.To)
	}

	query := listShiftsQuery
	if len(conds) > 0 {
		query += "\n\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\tORDER BY s.start_ts ASC, s.id ASC"

	shifts := []*shiftDatamodel.ShiftWithPerson{}
	if err := r.reader.SelectContext(ctx, &shifts, r.reader.Rebind(query), args...); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id string) (*shiftDatamodel.Shift, error) {
	var s shiftDatamodel.Shift
	err := store.Conn(ctx, r.db).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShiftRepository) Create(ctx context.Context, s *shiftDatamodel.Shift) error {
	return store.Conn(ctx, r.db).Create(s).Error
}

func (r *ShiftRepository) Update(ctx context.Context, s *shiftDatamodel.Shift) error {
	return store.Conn(ctx, r.db).Model(&shiftDatamodel.Shift{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"person_id":  s.PersonID,
		"start_at":   s.StartAt,
		"end_at":     s.EndAt,
		"start_ts":   s.StartTS,
		"end_ts":     s.EndTS,
		"updated_at": s.UpdatedAt,
	}).Error
}

func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	return store.Conn(ctx, r.db).Where("id = ?", id).Delete(&shiftDatamodel.Shift{}).Error
}
