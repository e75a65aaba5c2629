package audit

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/repository"
)

// Recorder writes audit entries as a side effect of mutating requests.
// Failures are logged and swallowed: an audit write must never fail the
// request it describes.
type Recorder struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

func NewRecorder(repo repository.AuditRepository, logger zerolog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

func (r *Recorder) Record(ctx context.Context, userID, action, entity, entityID string, details map[string]interface{}) {
	err := r.repo.Insert(ctx, repository.InsertAuditParams{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	})
	if err != nil {
		r.logger.Error().Err(err).
			Str("action", action).
			Str("entity", entity).
			Msg("failed to write audit entry")
	}
}
