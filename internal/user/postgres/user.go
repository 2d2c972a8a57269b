package postgres

import (
	"context"
	"errors"

	sessionDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/session"
	shiftDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/shift"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/store"
	"gorm.io/gorm"
)

// UserRepository persists users together with their mirrored people row and
// their credential. It serves the auth, user and session packages.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := store.Conn(ctx, r.db).Model(&userDatamodel.User{}).Count(&n).Error
	return n, err
}

// LockAccounts blocks concurrent account inserts until the surrounding
// transaction ends. SQLite runs on one connection and needs no lock.
func (r *UserRepository) LockAccounts(ctx context.Context) error {
	db := store.Conn(ctx, r.db)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Exec("LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE").Error
}

func (r *UserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	users := []*userDatamodel.User{}
	if err := store.Conn(ctx, r.db).Order("created_at ASC").Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) first(ctx context.Context, query string, arg string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := store.Conn(ctx, r.db).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateAccount inserts the user, its people mirror and its credential.
// Callers run it inside a transaction.
func (r *UserRepository) CreateAccount(ctx context.Context, u *userDatamodel.User, cred *userDatamodel.Credential) error {
	db := store.Conn(ctx, r.db)
	if err := db.Create(u).Error; err != nil {
		return err
	}
	if err := db.Create(userDatamodel.PersonFor(u)).Error; err != nil {
		return err
	}
	return db.Create(cred).Error
}

// Update writes the mutable user columns. When syncPerson is set the people
// row is rewritten with the new display name.
func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User, syncPerson bool) error {
	db := store.Conn(ctx, r.db)
	err := db.Model(&userDatamodel.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"person_name_b64": u.PersonNameB64,
		"is_admin":        u.IsAdmin,
		"updated_at":      u.UpdatedAt,
	}).Error
	if err != nil {
		return err
	}
	if !syncPerson {
		return nil
	}
	return db.Model(&userDatamodel.Person{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"person_name_b64": u.PersonNameB64,
		"updated_at":      u.UpdatedAt,
	}).Error
}

// Delete removes the user's sessions, credential, user row and people row.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	db := store.Conn(ctx, r.db)
	if err := db.Where("user_id = ?", id).Delete(&sessionDatamodel.Session{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&userDatamodel.Credential{}).Error; err != nil {
		return err
	}
	if err := db.Where("id = ?", id).Delete(&userDatamodel.User{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&userDatamodel.Person{}).Error
}

func (r *UserRepository) CountShifts(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := store.Conn(ctx, r.db).Model(&shiftDatamodel.Shift{}).Where("person_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *UserRepository) GetCredential(ctx context.Context, userID string) (*userDatamodel.Credential, error) {
	var c userDatamodel.Credential
	err := store.Conn(ctx, r.db).Where("user_id = ?", userID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ReplaceCredential overwrites the salt and hash, inserting the row if the
// user has none.
func (r *UserRepository) ReplaceCredential(ctx context.Context, cred *userDatamodel.Credential) error {
	db := store.Conn(ctx, r.db)
	res := db.Model(&userDatamodel.Credential{}).Where("user_id = ?", cred.UserID).Updates(map[string]interface{}{
		"password_salt": cred.PasswordSalt,
		"password_hash": cred.PasswordHash,
		"updated_at":    cred.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.Create(cred).Error
}
