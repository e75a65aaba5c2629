package insight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velihant/financehub-api/internal/models"
)

func findInsight(insights []Insight, id string) (Insight, bool) {
	for _, ins := range insights {
		if ins.ID == id {
			return ins, true
		}
	}
	return Insight{}, false
}

func TestRevenueTrendGrowth(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate([]models.MonthlyRevenue{
		{Month: "Jan", Profit: 10000},
		{Month: "Feb", Profit: 12000},
	}, nil, nil)

	ins, ok := findInsight(insights, "revenue-trend")
	require.True(t, ok)
	assert.Equal(t, InsightPositive, ins.Type)
	assert.Equal(t, "+20.0%", ins.Metric)
}

func TestRevenueTrendDecline(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate([]models.MonthlyRevenue{
		{Month: "Jan", Profit: 10000},
		{Month: "Feb", Profit: 8000},
	}, nil, nil)

	ins, ok := findInsight(insights, "revenue-trend")
	require.True(t, ok)
	assert.Equal(t, InsightNegative, ins.Type)
	assert.Equal(t, "-20.0%", ins.Metric)
}

func TestRevenueTrendNeedsTwoMonths(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate([]models.MonthlyRevenue{{Month: "Jan", Profit: 10000}}, nil, nil)

	_, ok := findInsight(insights, "revenue-trend")
	assert.False(t, ok)
}

func TestRiskAlertAboveThreshold(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate(nil, []models.RiskScore{
		{Category: "Market Risk", Score: 72, Previous: 68},
	}, nil)

	ins, ok := findInsight(insights, "risk-Market Risk")
	require.True(t, ok)
	assert.Equal(t, InsightNegative, ins.Type)
	assert.Contains(t, ins.Description, "worsening")
}

func TestRiskImprovement(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate(nil, []models.RiskScore{
		{Category: "Credit Risk", Score: 40, Previous: 55},
	}, nil)

	ins, ok := findInsight(insights, "risk-improved-Credit Risk")
	require.True(t, ok)
	assert.Equal(t, InsightPositive, ins.Type)
	assert.Equal(t, "-15 pts", ins.Metric)
}

func TestRiskSteadyBelowThresholdIsQuiet(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate(nil, []models.RiskScore{
		{Category: "Liquidity Risk", Score: 50, Previous: 50},
	}, nil)

	assert.Empty(t, insights)
}

func TestSettlementHealthFlagsHighFailureRate(t *testing.T) {
	engine := NewEngine()

	txns := make([]models.Transaction, 10)
	for i := range txns {
		txns[i] = models.Transaction{Status: models.TransactionStatusCompleted, Amount: decimal.NewFromInt(100)}
	}
	txns[0].Status = models.TransactionStatusFailed

	insights := engine.Evaluate(nil, nil, txns)
	ins, ok := findInsight(insights, "txn-fail-rate")
	require.True(t, ok)
	assert.Equal(t, "10.0%", ins.Metric)
}

func TestSettlementHealthToleratesLowFailureRate(t *testing.T) {
	engine := NewEngine()

	txns := make([]models.Transaction, 20)
	for i := range txns {
		txns[i] = models.Transaction{Status: models.TransactionStatusCompleted, Amount: decimal.NewFromInt(100)}
	}
	txns[0].Status = models.TransactionStatusFailed // 5%, at the threshold

	insights := engine.Evaluate(nil, nil, txns)
	_, ok := findInsight(insights, "txn-fail-rate")
	assert.False(t, ok)
}

func TestLargestTransactionOverMillion(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate(nil, nil, []models.Transaction{
		{Client: "Acme Capital", Asset: "AAPL", Type: models.TransactionTypeBuy, Status: models.TransactionStatusCompleted, Amount: decimal.NewFromInt(250000)},
		{Client: "Borealis Fund", Asset: "BTC", Type: models.TransactionTypeSell, Status: models.TransactionStatusCompleted, Amount: decimal.NewFromInt(1500000)},
	})

	ins, ok := findInsight(insights, "largest-transaction")
	require.True(t, ok)
	assert.Equal(t, InsightNeutral, ins.Type)
	assert.Contains(t, ins.Description, "Borealis Fund")
}

func TestLargestTransactionUnderMillionIsQuiet(t *testing.T) {
	engine := NewEngine()
	insights := engine.Evaluate(nil, nil, []models.Transaction{
		{Client: "Acme Capital", Asset: "AAPL", Type: models.TransactionTypeBuy, Status: models.TransactionStatusCompleted, Amount: decimal.NewFromInt(999999)},
	})

	_, ok := findInsight(insights, "largest-transaction")
	assert.False(t, ok)
}
