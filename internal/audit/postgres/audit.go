package postgres

import (
	"context"

	"github.com/frahmantamala/shiftboard/internal/audit"
	auditDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/audit"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const listLogsQuery = `
	SELECT id, occurred_at, actor_user_id, actor_username, action, resource_type,
	       resource_id, request_method, request_path, status_code
	FROM audit_logs
	ORDER BY occurred_at DESC
	LIMIT ?`

type AuditRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewAuditRepository(db *gorm.DB, reader *sqlx.DB) audit.Repository {
	return &AuditRepository{db: db, reader: reader}
}

func (r *AuditRepository) Create(ctx context.Context, l *auditDatamodel.Log) error {
	return store.Conn(ctx, r.db).Create(l).Error
}

func (r *AuditRepository) List(ctx context.Context, limit int) ([]*auditDatamodel.Log, error) {
	logs := []*auditDatamodel.Log{}
	if err := r.reader.SelectContext(ctx, &logs, r.reader.Rebind(listLogsQuery), limit); err != nil {
		return nil, err
	}
	return logs, nil
}
