// Package insight derives dashboard talking points from the aggregated
// financial data. Rules are pure functions of their inputs so the engine is
// trivially testable.
package insight

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/velihant/financehub-api/internal/models"
)

type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightNegative InsightType = "negative"
	InsightNeutral  InsightType = "neutral"
)

type Insight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Metric      string      `json:"metric,omitempty"`
}

// failRateThreshold is the percentage of failed transactions above which a
// settlement insight is raised.
const failRateThreshold = 5.0

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs every rule against the supplied data. Revenues must already
// be in calendar order; transactions newest-first.
func (e *Engine) Evaluate(revenues []models.MonthlyRevenue, risks []models.RiskScore, transactions []models.Transaction) []Insight {
	insights := make([]Insight, 0, 4)
	insights = append(insights, e.revenueTrend(revenues)...)
	insights = append(insights, e.riskAlerts(risks)...)
	insights = append(insights, e.settlementHealth(transactions)...)
	insights = append(insights, e.largestTransaction(transactions)...)
	return insights
}

func (e *Engine) revenueTrend(revenues []models.MonthlyRevenue) []Insight {
	if len(revenues) < 2 {
		return nil
	}
	prev := revenues[len(revenues)-2]
	last := revenues[len(revenues)-1]
	if prev.Profit == 0 {
		return nil
	}

	change := float64(last.Profit-prev.Profit) / float64(prev.Profit) * 100
	if last.Profit > prev.Profit {
		return []Insight{{
			ID:    "revenue-trend",
			Type:  InsightPositive,
			Title: "Revenue Growth Detected",
			Description: fmt.Sprintf("Profit increased by %.1f%% compared to the previous month. Strong upward momentum.",
				change),
			Metric: fmt.Sprintf("+%.1f%%", change),
		}}
	}
	return []Insight{{
		ID:    "revenue-trend",
		Type:  InsightNegative,
		Title: "Revenue Decline Alert",
		Description: fmt.Sprintf("Profit decreased by %.1f%% compared to the previous month. Consider reviewing expense allocations.",
			-change),
		Metric: fmt.Sprintf("%.1f%%", change),
	}}
}

func (e *Engine) riskAlerts(risks []models.RiskScore) []Insight {
	var insights []Insight
	for _, risk := range risks {
		switch {
		case risk.Score > models.RiskAlertThreshold:
			trend := fmt.Sprintf("Down from %d, showing improvement.", risk.Previous)
			if risk.Score > risk.Previous {
				trend = fmt.Sprintf("Up from %d, trend is worsening.", risk.Previous)
			}
			insights = append(insights, Insight{
				ID:    "risk-" + risk.Category,
				Type:  InsightNegative,
				Title: fmt.Sprintf("High %s Alert", risk.Category),
				Description: fmt.Sprintf("%s score is at %d/100, exceeding the recommended threshold of %d. %s",
					risk.Category, risk.Score, models.RiskAlertThreshold, trend),
				Metric: fmt.Sprintf("%d/100", risk.Score),
			})
		case risk.Score < risk.Previous:
			insights = append(insights, Insight{
				ID:    "risk-improved-" + risk.Category,
				Type:  InsightPositive,
				Title: fmt.Sprintf("%s Improvement", risk.Category),
				Description: fmt.Sprintf("%s score improved from %d to %d. Risk exposure is decreasing.",
					risk.Category, risk.Previous, risk.Score),
				Metric: fmt.Sprintf("-%d pts", risk.Previous-risk.Score),
			})
		}
	}
	return insights
}

func (e *Engine) settlementHealth(transactions []models.Transaction) []Insight {
	if len(transactions) == 0 {
		return nil
	}

	var failed int
	for _, txn := range transactions {
		if txn.Status == models.TransactionStatusFailed {
			failed++
		}
	}

	failRate := float64(failed) / float64(len(transactions)) * 100
	if failRate <= failRateThreshold {
		return nil
	}
	return []Insight{{
		ID:    "txn-fail-rate",
		Type:  InsightNegative,
		Title: "Elevated Transaction Failure Rate",
		Description: fmt.Sprintf("%.1f%% of recent transactions failed, above the %.0f%% tolerance. Review settlement pipelines.",
			failRate, failRateThreshold),
		Metric: fmt.Sprintf("%.1f%%", failRate),
	}}
}

func (e *Engine) largestTransaction(transactions []models.Transaction) []Insight {
	if len(transactions) == 0 {
		return nil
	}

	largest := transactions[0]
	for _, txn := range transactions[1:] {
		if txn.Amount.GreaterThan(largest.Amount) {
			largest = txn
		}
	}
	if largest.Amount.LessThan(decimal.NewFromInt(1_000_000)) {
		return nil
	}
	return []Insight{{
		ID:    "largest-transaction",
		Type:  InsightNeutral,
		Title: "Large Position Movement",
		Description: fmt.Sprintf("%s %s by %s is the largest recent transaction at $%s.",
			largest.Type, largest.Asset, largest.Client, largest.Amount.StringFixed(2)),
		Metric: "$" + largest.Amount.StringFixed(2),
	}}
}
