package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/audit"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/repository"
)

type ProfileHandler struct {
	users   repository.UserRepository
	auditor *audit.Recorder
	logger  zerolog.Logger
}

func NewProfileHandler(users repository.UserRepository, auditor *audit.Recorder, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		users:   users,
		auditor: auditor,
		logger:  logger.With().Str("handler", "profile").Logger(),
	}
}

type profileResponse struct {
	models.User
	RoleLabel string `json:"role_label"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to load profile")
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": profileResponse{User: user, RoleLabel: models.RoleLabel(user.Role)},
	})
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Update lets a user change their own name, email, or phone. Role and active
// flag are administrative fields and stay out of reach here.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		http.Error(w, "Name cannot be empty", http.StatusBadRequest)
		return
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		http.Error(w, "Email cannot be empty", http.StatusBadRequest)
		return
	}
	if req.Name == nil && req.Email == nil && req.Phone == nil {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, repository.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			http.Error(w, "Email already in use", http.StatusConflict)
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to update profile")
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(r.Context(), userID, "profile.update", "user", user.ID, nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": profileResponse{User: user, RoleLabel: models.RoleLabel(user.Role)},
	})
}
