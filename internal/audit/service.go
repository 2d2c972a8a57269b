package audit

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/shiftboard/internal"
)

type Service struct {
	repo         Repository
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

func NewService(repo Repository, cfg internal.AuditConfig, logger *slog.Logger) *Service {
	defaultLimit, maxLimit := cfg.DefaultLimit, cfg.MaxLimit
	if defaultLimit <= 0 {
		defaultLimit = internal.DefaultAuditLimit
	}
	if maxLimit <= 0 || maxLimit > internal.DefaultAuditMaxLimit {
		maxLimit = internal.DefaultAuditMaxLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// ParseLimit returns def for an absent value, rejects anything that is not a
// positive integer and clamps the rest to max.
func ParseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, internal.ErrInvalidLimit
	}
	if n > max {
		return max, nil
	}
	return n, nil
}

// List returns the newest entries first.
func (s *Service) List(ctx context.Context, rawLimit string) ([]*Log, error) {
	limit, err := ParseLimit(rawLimit, s.defaultLimit, s.maxLimit)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list audit logs", "limit", limit, "error", err)
		return nil, internal.NewInternalError("failed to list audit logs", err)
	}

	logs := make([]*Log, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, FromDataModel(row))
	}
	return logs, nil
}
