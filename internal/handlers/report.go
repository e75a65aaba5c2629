package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/audit"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/notification"
	"github.com/velihant/financehub-api/internal/repository"
)

// reportRunHour is the local hour of day every scheduled report is stamped
// with. Scheduling only persists the timestamp; nothing executes it.
const reportRunHour = 8

type ReportHandler struct {
	repo          repository.ReportRepository
	notifications notification.Service
	auditor       *audit.Recorder
	logger        zerolog.Logger
	now           func() time.Time
}

func NewReportHandler(repo repository.ReportRepository, notifications notification.Service, auditor *audit.Recorder, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		repo:          repo,
		notifications: notifications,
		auditor:       auditor,
		logger:        logger.With().Str("handler", "report").Logger(),
		now:           time.Now,
	}
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reports, err := h.repo.ListByOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list scheduled reports")
		http.Error(w, "Failed to list scheduled reports", http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []models.ScheduledReport{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": reports})
}

type createReportRequest struct {
	Name       string `json:"name"`
	Frequency  string `json:"frequency"`
	Email      string `json:"email"`
	ReportType string `json:"reportType"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Frequency == "" || req.Email == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	frequency := models.ReportFrequency(req.Frequency)
	if !models.IsValidReportFrequency(frequency) {
		http.Error(w, "Invalid frequency", http.StatusBadRequest)
		return
	}
	reportType := strings.TrimSpace(req.ReportType)
	if reportType == "" {
		reportType = "general"
	}

	report, err := h.repo.Create(r.Context(), repository.CreateReportParams{
		OwnerID:    ownerID,
		Name:       req.Name,
		Frequency:  frequency,
		Email:      req.Email,
		ReportType: reportType,
		NextRun:    NextRun(h.now(), frequency),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create scheduled report")
		http.Error(w, "Failed to create scheduled report", http.StatusInternalServerError)
		return
	}

	if err := h.notifications.NotifyReportScheduled(r.Context(), ownerID, report); err != nil {
		h.logger.Warn().Err(err).Str("report_id", report.ID).Msg("failed to publish report notification")
	}
	h.auditor.Record(r.Context(), ownerID, "report.schedule", "scheduled_report", report.ID,
		map[string]interface{}{"frequency": string(report.Frequency)})

	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": report})
}

type updateReportRequest struct {
	Active *bool `json:"active"`
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}

	var req updateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Active == nil {
		http.Error(w, "Missing active flag", http.StatusBadRequest)
		return
	}

	report, err := h.repo.SetActive(r.Context(), ownerID, id, *req.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("report_id", id).Msg("failed to update scheduled report")
		http.Error(w, "Failed to update scheduled report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": report})
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("report_id", id).Msg("failed to delete scheduled report")
		http.Error(w, "Failed to delete scheduled report", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(r.Context(), ownerID, "report.delete", "scheduled_report", id, nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// NextRun computes the next delivery timestamp for a schedule created at
// "from": tomorrow, next week, or the first of next month, always at 08:00.
func NextRun(from time.Time, frequency models.ReportFrequency) time.Time {
	switch frequency {
	case models.ReportFrequencyDaily:
		next := from.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), reportRunHour, 0, 0, 0, from.Location())
	case models.ReportFrequencyWeekly:
		next := from.AddDate(0, 0, 7)
		return time.Date(next.Year(), next.Month(), next.Day(), reportRunHour, 0, 0, 0, from.Location())
	case models.ReportFrequencyMonthly:
		next := from.AddDate(0, 1, 0)
		return time.Date(next.Year(), next.Month(), 1, reportRunHour, 0, 0, 0, from.Location())
	default:
		return from
	}
}
