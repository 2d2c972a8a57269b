package user

import "encoding/base64"

type User struct {
	ID            string `gorm:"column:id;primaryKey"`
	Username      string `gorm:"column:username;uniqueIndex;not null"`
	PersonNameB64 string `gorm:"column:person_name_b64;not null"`
	IsAdmin       bool   `gorm:"column:is_admin;not null;default:false"`
	CreatedAt     string `gorm:"column:created_at;not null"`
	UpdatedAt     string `gorm:"column:updated_at;not null"`
}

func (User) TableName() string { return "users" }

// Person mirrors a user's display name under the same id.
type Person struct {
	ID            string `gorm:"column:id;primaryKey"`
	PersonNameB64 string `gorm:"column:person_name_b64;not null"`
	CreatedAt     string `gorm:"column:created_at;not null"`
	UpdatedAt     string `gorm:"column:updated_at;not null"`
}

func (Person) TableName() string { return "people" }

type Credential struct {
	UserID       string `gorm:"column:user_id;primaryKey"`
	PasswordSalt string `gorm:"column:password_salt;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	CreatedAt    string `gorm:"column:created_at;not null"`
	UpdatedAt    string `gorm:"column:updated_at;not null"`
}

func (Credential) TableName() string { return "user_credentials" }

// EncodeName returns the base64 form of a UTF-8 display name.
func EncodeName(name string) string {
	return base64.StdEncoding.EncodeToString([]byte(name))
}

// PersonFor builds the people row that mirrors u.
func PersonFor(u *User) *Person {
	return &Person{
		ID:            u.ID,
		PersonNameB64: u.PersonNameB64,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
