package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/insight"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/repository"
)

type AnalyticsHandler struct {
	analytics    repository.AnalyticsRepository
	transactions repository.TransactionRepository
	risks        repository.RiskRepository
	insights     *insight.Engine
	logger       zerolog.Logger
}

func NewAnalyticsHandler(
	analytics repository.AnalyticsRepository,
	transactions repository.TransactionRepository,
	risks repository.RiskRepository,
	insights *insight.Engine,
	logger zerolog.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics:    analytics,
		transactions: transactions,
		risks:        risks,
		insights:     insights,
		logger:       logger.With().Str("handler", "analytics").Logger(),
	}
}

func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.transactions.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute transaction stats")
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": stats})
}

func (h *AnalyticsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	revenues, err := h.analytics.ListRevenue(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list revenue")
		http.Error(w, "Failed to list revenue", http.StatusInternalServerError)
		return
	}
	if revenues == nil {
		revenues = []models.MonthlyRevenue{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": revenues})
}

func (h *AnalyticsHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	allocations, err := h.analytics.ListPortfolio(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list portfolio")
		http.Error(w, "Failed to list portfolio", http.StatusInternalServerError)
		return
	}
	if allocations == nil {
		allocations = []models.PortfolioAllocation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": allocations})
}

func (h *AnalyticsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	revenues, err := h.analytics.ListRevenue(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list revenue")
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}
	stats, err := h.transactions.Stats(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute transaction stats")
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}
	risks, err := h.risks.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list risk scores")
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": BuildAnalytics(revenues, stats, risks),
	})
}

func (h *AnalyticsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	revenues, err := h.analytics.ListRevenue(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list revenue")
		http.Error(w, "Failed to compute insights", http.StatusInternalServerError)
		return
	}
	risks, err := h.risks.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list risk scores")
		http.Error(w, "Failed to compute insights", http.StatusInternalServerError)
		return
	}
	transactions, _, err := h.transactions.List(ctx, repository.TransactionFilter{Limit: 100})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list transactions")
		http.Error(w, "Failed to compute insights", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.insights.Evaluate(revenues, risks, transactions),
	})
}

// BuildAnalytics folds the revenue table, ledger stats, and risk scores into
// the dashboard analytics payload.
func BuildAnalytics(revenues []models.MonthlyRevenue, stats models.TransactionStats, risks []models.RiskScore) models.Analytics {
	var summary models.AnalyticsSummary
	for _, rev := range revenues {
		summary.TotalRevenue += rev.Revenue
		summary.TotalExpenses += rev.Expenses
		summary.TotalProfit += rev.Profit
	}
	if len(revenues) > 0 {
		summary.AvgMonthlyProfit = float64(summary.TotalProfit) / float64(len(revenues))
	}

	summary.TotalTxnVolume = stats.TotalVolume
	summary.SettlementRate = stats.SettlementRate
	summary.TotalTransactions = stats.Total

	if len(risks) > 0 {
		var total int
		for _, risk := range risks {
			total += risk.Score
		}
		// Round half up, matching the dashboard display.
		summary.AvgRisk = (total + len(risks)/2) / len(risks)
	}

	candlestick := make([]models.CandlestickPoint, 0, len(revenues))
	for _, rev := range revenues {
		candlestick = append(candlestick, models.CandlestickPoint{
			Month:  rev.Month,
			Open:   float64(rev.Revenue) * 0.95,
			Close:  float64(rev.Revenue),
			High:   float64(rev.Revenue) * 1.08,
			Low:    float64(rev.Revenue) * 0.88,
			Profit: rev.Profit,
		})
	}

	return models.Analytics{
		Summary:     summary,
		Candlestick: candlestick,
		Funnel: models.SettlementFunnel{
			Total:     stats.Total,
			Completed: stats.Completed,
			Settled:   stats.Completed * 92 / 100,
		},
	}
}
