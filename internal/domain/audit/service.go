package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// Service records and queries audit log entries. Recording never returns an
// error: a failed write is logged and dropped so that audit problems cannot
// break the operation being audited.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record persists an audit entry. Failures are swallowed after logging.
func (s *Service) Record(ctx context.Context, e *Entry) {
	if err := s.repo.Insert(ctx, e); err != nil {
		s.logger.Error().
			Err(err).
			Str("action", e.Action).
			Str("entity", e.Entity).
			Msg("audit write failed")
	}
}

// List returns entries matching the filter, newest first, with the total
// count for pagination.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
