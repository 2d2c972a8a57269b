package postgres

import (
	"context"
	"errors"

	sessionDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/session"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/store"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) session.Repository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *sessionDatamodel.Session) error {
	return store.Conn(ctx, r.db).Create(s).Error
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*sessionDatamodel.Session, error) {
	var s sessionDatamodel.Session
	err := store.Conn(ctx, r.db).Where("token = ?", token).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	res := store.Conn(ctx, r.db).Where("token = ?", token).Delete(&sessionDatamodel.Session{})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res := store.Conn(ctx, r.db).Where("user_id = ?", userID).Delete(&sessionDatamodel.Session{})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, nowMillis int64) (int64, error) {
	res := store.Conn(ctx, r.db).Where("expires_ts <= ?", nowMillis).Delete(&sessionDatamodel.Session{})
	return res.RowsAffected, res.Error
}
