package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/repository"
)

type AuditHandler struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

func NewAuditHandler(repo repository.AuditRepository, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "audit").Logger(),
	}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.AuditFilter{
		Action: strings.TrimSpace(query.Get("action")),
		Page:   1,
		Limit:  20,
	}
	if raw := query.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Page = parsed
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	entries, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list audit entries")
		http.Error(w, "Failed to list audit entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       entries,
		"total":      total,
		"page":       filter.Page,
		"totalPages": totalPages,
	})
}
