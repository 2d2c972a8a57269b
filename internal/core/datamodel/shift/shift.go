package shift

type Shift struct {
	ID        string `gorm:"column:id;primaryKey" db:"id"`
	PersonID  string `gorm:"column:person_id;not null" db:"person_id"`
	StartAt   string `gorm:"column:start_at;not null" db:"start_at"`
	EndAt     string `gorm:"column:end_at;not null" db:"end_at"`
	StartTS   int64  `gorm:"column:start_ts;not null;index" db:"start_ts"`
	EndTS     int64  `gorm:"column:end_ts;not null" db:"end_ts"`
	CreatedAt string `gorm:"column:created_at;not null" db:"created_at"`
	UpdatedAt string `gorm:"column:updated_at;not null" db:"updated_at"`
}

func (Shift) TableName() string { return "shifts" }

// ShiftWithPerson is a shift row joined with the assigned person's display name.
type ShiftWithPerson struct {
	Shift
	PersonNameB64 string `gorm:"column:person_name_b64" db:"person_name_b64"`
}
