package session

type Session struct {
	Token     string `gorm:"column:token;primaryKey"`
	UserID    string `gorm:"column:user_id;not null;index"`
	CreatedAt string `gorm:"column:created_at;not null"`
	ExpiresAt string `gorm:"column:expires_at;not null"`
	ExpiresTS int64  `gorm:"column:expires_ts;not null;index"`
}

func (Session) TableName() string { return "sessions" }
