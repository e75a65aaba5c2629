package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/notification"
)

type NotificationHandler struct {
	service       notification.Service
	streamer      *notification.Streamer
	snapshotLimit int
	logger        zerolog.Logger
}

func NewNotificationHandler(service notification.Service, streamer *notification.Streamer, snapshotLimit int, logger zerolog.Logger) *NotificationHandler {
	if snapshotLimit <= 0 {
		snapshotLimit = 20
	}
	return &NotificationHandler{
		service:       service,
		streamer:      streamer,
		snapshotLimit: snapshotLimit,
		logger:        logger.With().Str("handler", "notification").Logger(),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := h.snapshotLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.service.ListRecent(r.Context(), ownerID, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notifications")
		http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": notifications,
	})
}

type createNotificationRequest struct {
	Type    models.NotificationKind `json:"type"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
}

// Create exists for the other subsystems, not the notification panel: a
// collaborator records a noteworthy event for the calling user.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Type == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "type, title, and message are required", http.StatusBadRequest)
		return
	}

	notif, err := h.service.Publish(r.Context(), notification.Event{
		OwnerID: ownerID,
		Kind:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create notification")
		http.Error(w, "Failed to create notification", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": notif})
}

type markReadRequest struct {
	ID          string `json:"id"`
	MarkAllRead bool   `json:"markAllRead"`
}

// MarkRead flips one record (body {"id": ...}) or every unread record
// (body {"markAllRead": true}) for the calling owner.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.MarkAllRead {
		if err := h.service.MarkAllRead(r.Context(), ownerID); err != nil {
			h.logger.Error().Err(err).Msg("failed to mark all notifications as read")
			http.Error(w, "Failed to update notifications", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	notifID := strings.TrimSpace(req.ID)
	if notifID == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkRead(r.Context(), ownerID, notifID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Notification not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("notification_id", notifID).Msg("failed to mark notification as read")
		http.Error(w, "Failed to update notification", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Stream is the push channel: a long-lived SSE response fed by a per
// connection poll loop. Unauthorized callers are rejected before any event
// is written.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(evt notification.StreamEvent) error {
		payload, err := json.Marshal(evt)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := h.streamer.Run(r.Context(), ownerID, send); err != nil {
		// Delivery failure means the client went away; nothing to surface.
		h.logger.Debug().Err(err).Msg("notification stream closed")
	}
}
