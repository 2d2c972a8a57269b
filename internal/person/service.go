package person

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/shiftboard/internal"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
)

type Repository interface {
	List(ctx context.Context) ([]*userDatamodel.Person, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]*Person, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list people", "error", err)
		return nil, internal.NewInternalError("failed to list people", err)
	}

	people := make([]*Person, 0, len(rows))
	for _, row := range rows {
		people = append(people, FromDataModel(row))
	}
	return people, nil
}
