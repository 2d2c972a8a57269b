package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/person"
	"github.com/frahmantamala/shiftboard/internal/store"
	"gorm.io/gorm"
)

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) person.Repository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) List(ctx context.Context) ([]*userDatamodel.Person, error) {
	people := []*userDatamodel.Person{}
	if err := store.Conn(ctx, r.db).Order("created_at ASC").Order("id ASC").Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}
