package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/velihant/financehub-api/internal/audit"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/notification"
	"github.com/velihant/financehub-api/internal/repository"
)

type TransactionHandler struct {
	repo          repository.TransactionRepository
	notifications notification.Service
	auditor       *audit.Recorder
	logger        zerolog.Logger
}

func NewTransactionHandler(repo repository.TransactionRepository, notifications notification.Service, auditor *audit.Recorder, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		repo:          repo,
		notifications: notifications,
		auditor:       auditor,
		logger:        logger.With().Str("handler", "transaction").Logger(),
	}
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.TransactionFilter{
		Search: query.Get("search"),
		Status: models.TransactionStatus(query.Get("status")),
		Risk:   models.RiskLevel(query.Get("risk")),
		Type:   models.TransactionType(query.Get("type")),
		Page:   1,
		Limit:  50,
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

	transactions, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list transactions")
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       transactions,
		"total":      total,
		"page":       filter.Page,
		"totalPages": totalPages,
	})
}

type createTransactionRequest struct {
	Client string          `json:"client"`
	Type   string          `json:"type"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
	Risk   string          `json:"risk"`
	Date   time.Time       `json:"date"`
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Client = strings.TrimSpace(req.Client)
	req.Asset = strings.TrimSpace(req.Asset)
	if req.Client == "" || req.Asset == "" || req.Type == "" || req.Status == "" || req.Risk == "" || req.Date.IsZero() {
		http.Error(w, "All fields are required", http.StatusBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		http.Error(w, "Amount must be positive", http.StatusBadRequest)
		return
	}
	txnType := models.TransactionType(req.Type)
	status := models.TransactionStatus(req.Status)
	risk := models.RiskLevel(req.Risk)
	if !models.IsValidTransactionType(txnType) || !models.IsValidTransactionStatus(status) || !models.IsValidRiskLevel(risk) {
		http.Error(w, "Invalid type, status, or risk", http.StatusBadRequest)
		return
	}

	txn, err := h.repo.Create(r.Context(), repository.CreateTransactionParams{
		Client: req.Client,
		Type:   txnType,
		Asset:  req.Asset,
		Amount: req.Amount,
		Status: status,
		Risk:   risk,
		Date:   req.Date,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create transaction")
		http.Error(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	// The notification is a side effect; a transaction recorded without its
	// notification is acceptable, the reverse is not.
	if err := h.notifications.NotifyTransactionRecorded(r.Context(), userID, txn); err != nil {
		h.logger.Warn().Err(err).Str("txn_ref", txn.TxnRef).Msg("failed to publish transaction notification")
	}
	h.auditor.Record(r.Context(), userID, "transaction.create", "transaction", txn.ID,
		map[string]interface{}{"txn_ref": txn.TxnRef, "amount": txn.Amount.String()})

	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": txn})
}

type updateTransactionRequest struct {
	Status *string          `json:"status"`
	Risk   *string          `json:"risk"`
	Amount *decimal.Decimal `json:"amount"`
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := repository.UpdateTransactionParams{}
	if req.Status != nil {
		status := models.TransactionStatus(*req.Status)
		if !models.IsValidTransactionStatus(status) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		params.Status = &status
	}
	if req.Risk != nil {
		risk := models.RiskLevel(*req.Risk)
		if !models.IsValidRiskLevel(risk) {
			http.Error(w, "Invalid risk", http.StatusBadRequest)
			return
		}
		params.Risk = &risk
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}
		params.Amount = req.Amount
	}
	if params.Status == nil && params.Risk == nil && params.Amount == nil {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}

	txn, err := h.repo.Update(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("transaction_id", id).Msg("failed to update transaction")
		http.Error(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(r.Context(), userID, "transaction.update", "transaction", txn.ID, nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": txn})
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("transaction_id", id).Msg("failed to delete transaction")
		http.Error(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	h.auditor.Record(r.Context(), userID, "transaction.delete", "transaction", id, nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
