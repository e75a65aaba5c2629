package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/repository"
)

// Event is a notification to publish for one owner. Kind defaults to info.
type Event struct {
	OwnerID string
	Kind    models.NotificationKind
	Title   string
	Message string
}

// Service fronts the notification store for both the read side (panel and
// stream) and the write side (the collaborators that raise events).
type Service interface {
	Publish(ctx context.Context, evt Event) (models.Notification, error)
	NotifyTransactionRecorded(ctx context.Context, ownerID string, txn models.Transaction) error
	NotifyRiskThresholdBreached(ctx context.Context, ownerID string, score models.RiskScore) error
	NotifyReportScheduled(ctx context.Context, ownerID string, report models.ScheduledReport) error
	ListRecent(ctx context.Context, ownerID string, limit int) ([]models.Notification, error)
	ListSince(ctx context.Context, ownerID string, since time.Time) ([]models.Notification, error)
	MarkRead(ctx context.Context, ownerID, notificationID string) error
	MarkAllRead(ctx context.Context, ownerID string) error
}

type service struct {
	repo   repository.NotificationRepository
	logger zerolog.Logger
}

func NewService(repo repository.NotificationRepository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *service) Publish(ctx context.Context, evt Event) (models.Notification, error) {
	if strings.TrimSpace(evt.OwnerID) == "" {
		return models.Notification{}, fmt.Errorf("owner id is required")
	}
	if evt.Kind == "" {
		evt.Kind = models.NotificationKindInfo
	}
	if !models.IsValidNotificationKind(evt.Kind) {
		return models.Notification{}, fmt.Errorf("invalid notification kind %q", evt.Kind)
	}
	title := strings.TrimSpace(evt.Title)
	message := strings.TrimSpace(evt.Message)
	if title == "" {
		return models.Notification{}, fmt.Errorf("title is required")
	}

	notif, err := s.repo.Create(ctx, repository.CreateNotificationParams{
		OwnerID: evt.OwnerID,
		Kind:    evt.Kind,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(evt.Kind)).Msg("failed to persist notification")
		return models.Notification{}, err
	}
	return notif, nil
}

func (s *service) NotifyTransactionRecorded(ctx context.Context, ownerID string, txn models.Transaction) error {
	kind := models.NotificationKindSuccess
	if txn.Risk == models.RiskLevelHigh {
		kind = models.NotificationKindWarning
	}
	_, err := s.Publish(ctx, Event{
		OwnerID: ownerID,
		Kind:    kind,
		Title:   fmt.Sprintf("Transaction recorded: %s", txn.TxnRef),
		Message: fmt.Sprintf("%s %s of %s for %s (%s risk).",
			txn.Type, txn.Asset, formatAmount(txn.Amount), txn.Client, txn.Risk),
	})
	return err
}

func (s *service) NotifyRiskThresholdBreached(ctx context.Context, ownerID string, score models.RiskScore) error {
	_, err := s.Publish(ctx, Event{
		OwnerID: ownerID,
		Kind:    models.NotificationKindAlert,
		Title:   fmt.Sprintf("High %s alert", score.Category),
		Message: fmt.Sprintf("%s score is at %d/100, exceeding the threshold of %d (previously %d).",
			score.Category, score.Score, models.RiskAlertThreshold, score.Previous),
	})
	return err
}

func (s *service) NotifyReportScheduled(ctx context.Context, ownerID string, report models.ScheduledReport) error {
	_, err := s.Publish(ctx, Event{
		OwnerID: ownerID,
		Kind:    models.NotificationKindSuccess,
		Title:   fmt.Sprintf("Report scheduled: %s", report.Name),
		Message: fmt.Sprintf("%s report will next run at %s.",
			capitalize(string(report.Frequency)), report.NextRun.Format(time.RFC1123)),
	})
	return err
}

func (s *service) ListRecent(ctx context.Context, ownerID string, limit int) ([]models.Notification, error) {
	return s.repo.ListRecent(ctx, ownerID, limit)
}

func (s *service) ListSince(ctx context.Context, ownerID string, since time.Time) ([]models.Notification, error) {
	return s.repo.ListSince(ctx, ownerID, since)
}

func (s *service) MarkRead(ctx context.Context, ownerID, notificationID string) error {
	return s.repo.MarkRead(ctx, ownerID, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, ownerID string) error {
	return s.repo.MarkAllRead(ctx, ownerID)
}

func formatAmount(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
