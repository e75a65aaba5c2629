package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/audit"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/notification"
	"github.com/velihant/financehub-api/internal/repository"
)

type RiskHandler struct {
	repo          repository.RiskRepository
	notifications notification.Service
	auditor       *audit.Recorder
	logger        zerolog.Logger
}

func NewRiskHandler(repo repository.RiskRepository, notifications notification.Service, auditor *audit.Recorder, logger zerolog.Logger) *RiskHandler {
	return &RiskHandler{
		repo:          repo,
		notifications: notifications,
		auditor:       auditor,
		logger:        logger.With().Str("handler", "risk").Logger(),
	}
}

func (h *RiskHandler) List(w http.ResponseWriter, r *http.Request) {
	scores, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list risk scores")
		http.Error(w, "Failed to list risk scores", http.StatusInternalServerError)
		return
	}
	if scores == nil {
		scores = []models.RiskScore{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": scores})
}

type updateRiskRequest struct {
	Score *int `json:"score"`
}

func (h *RiskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	category := strings.TrimSpace(mux.Vars(r)["category"])
	if category == "" {
		http.Error(w, "Category is required", http.StatusBadRequest)
		return
	}

	var req updateRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Score == nil || *req.Score < 0 || *req.Score > 100 {
		http.Error(w, "Score must be between 0 and 100", http.StatusBadRequest)
		return
	}

	score, err := h.repo.UpdateScore(r.Context(), category, *req.Score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("category", category).Msg("failed to update risk score")
		http.Error(w, "Failed to update risk score", http.StatusInternalServerError)
		return
	}

	// Raise an alert only on crossing the threshold, not while staying above it.
	if score.Score > models.RiskAlertThreshold && score.Previous <= models.RiskAlertThreshold {
		if err := h.notifications.NotifyRiskThresholdBreached(r.Context(), userID, score); err != nil {
			h.logger.Warn().Err(err).Str("category", category).Msg("failed to publish risk notification")
		}
	}
	h.auditor.Record(r.Context(), userID, "risk.update", "risk_score", category,
		map[string]interface{}{"score": score.Score, "previous": score.Previous})

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": score})
}
