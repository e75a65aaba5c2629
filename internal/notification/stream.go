package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/models"
)

const (
	StreamEventConnected     = "connected"
	StreamEventHeartbeat     = "heartbeat"
	StreamEventNotifications = "notifications"
)

// StreamEvent is one frame on the push channel.
type StreamEvent struct {
	Type string                `json:"type"`
	Data []models.Notification `json:"data,omitempty"`
}

// SendFunc delivers one event to the subscriber. A non-nil error means the
// client is gone and the loop must stop.
type SendFunc func(StreamEvent) error

type StreamConfig struct {
	// PollInterval is how often the store is re-queried for new records.
	PollInterval time.Duration
	// MaxLifetime force-closes the connection regardless of activity, so a
	// subscriber holds at most one timer and one poll loop for a bounded time.
	// Clients reconnect and re-fetch a fresh snapshot.
	MaxLifetime time.Duration
}

// Streamer runs one timer-driven poll loop per subscriber. Connections share
// nothing but the store itself.
type Streamer struct {
	service Service
	cfg     StreamConfig
	logger  zerolog.Logger
	now     func() time.Time
}

func NewStreamer(service Service, cfg StreamConfig, logger zerolog.Logger) *Streamer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxLifetime <= 0 {
		cfg.MaxLifetime = 5 * time.Minute
	}
	return &Streamer{
		service: service,
		cfg:     cfg,
		logger:  logger.With().Str("component", "notification_stream").Logger(),
		now:     time.Now,
	}
}

// Run polls the store until the context is cancelled, the lifetime ceiling
// is hit, or delivery fails. It sends a connected acknowledgment first, then
// a notifications batch or a heartbeat per tick.
//
// The cursor advances to "now" after a delivery rather than to the newest
// record's timestamp. Two records sharing a timestamp across a tick boundary
// may therefore be delivered twice; clients merge by id, which makes the
// re-delivery harmless, and no record is ever skipped.
func (s *Streamer) Run(ctx context.Context, ownerID string, send SendFunc) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.MaxLifetime)
	defer cancel()

	if err := send(StreamEvent{Type: StreamEventConnected}); err != nil {
		return errors.Wrap(err, "send connected event")
	}

	lastCheck := s.now()
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnect or lifetime ceiling. Either way the loop and
			// its timer are released here, exactly once.
			return nil
		case <-ticker.C:
			items, err := s.service.ListSince(ctx, ownerID, lastCheck)
			if err != nil {
				// Transient store failure: skip this tick, keep the cursor so
				// the next successful tick picks the records up.
				s.logger.Warn().Err(err).Msg("poll tick failed")
				continue
			}

			if len(items) > 0 {
				if err := send(StreamEvent{Type: StreamEventNotifications, Data: items}); err != nil {
					return errors.Wrap(err, "send notifications event")
				}
				lastCheck = s.now()
			} else {
				if err := send(StreamEvent{Type: StreamEventHeartbeat}); err != nil {
					return errors.Wrap(err, "send heartbeat event")
				}
			}
		}
	}
}
