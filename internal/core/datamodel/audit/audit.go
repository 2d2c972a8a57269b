package audit

type Log struct {
	ID            string  `gorm:"column:id;primaryKey" db:"id"`
	OccurredAt    string  `gorm:"column:occurred_at;not null;index" db:"occurred_at"`
	ActorUserID   *string `gorm:"column:actor_user_id" db:"actor_user_id"`
	ActorUsername *string `gorm:"column:actor_username" db:"actor_username"`
	Action        string  `gorm:"column:action;not null" db:"action"`
	ResourceType  string  `gorm:"column:resource_type;not null" db:"resource_type"`
	ResourceID    *string `gorm:"column:resource_id" db:"resource_id"`
	RequestMethod string  `gorm:"column:request_method;not null" db:"request_method"`
	RequestPath   string  `gorm:"column:request_path;not null" db:"request_path"`
	StatusCode    int     `gorm:"column:status_code;not null" db:"status_code"`
}

func (Log) TableName() string { return "audit_logs" }
