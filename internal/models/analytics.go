package models

import "github.com/shopspring/decimal"

type MonthlyRevenue struct {
	Month    string `json:"month" db:"month"`
	Revenue  int64  `json:"revenue" db:"revenue"`
	Expenses int64  `json:"expenses" db:"expenses"`
	Profit   int64  `json:"profit" db:"profit"`
}

type PortfolioAllocation struct {
	Name  string `json:"name" db:"name"`
	Value int    `json:"value" db:"value"`
	Color string `json:"color" db:"color"`
}

// TransactionStats is the aggregated ledger summary shown on the dashboard
// KPI strip.
type TransactionStats struct {
	AvgTransaction decimal.Decimal `json:"avg_transaction"`
	SettlementRate float64         `json:"settlement_rate"` // completed/total, percent, 1 decimal
	Completed      int             `json:"completed"`
	Pending        int             `json:"pending"`
	Failed         int             `json:"failed"`
	Total          int             `json:"total"`
	TotalVolume    decimal.Decimal `json:"-"`
}

type AnalyticsSummary struct {
	TotalRevenue      int64           `json:"total_revenue"`
	TotalExpenses     int64           `json:"total_expenses"`
	TotalProfit       int64           `json:"total_profit"`
	AvgMonthlyProfit  float64         `json:"avg_monthly_profit"`
	TotalTxnVolume    decimal.Decimal `json:"total_txn_volume"`
	SettlementRate    float64         `json:"settlement_rate"`
	AvgRisk           int             `json:"avg_risk"`
	TotalTransactions int             `json:"total_transactions"`
}

type CandlestickPoint struct {
	Month  string  `json:"month"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Profit int64   `json:"profit"`
}

type SettlementFunnel struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Settled   int `json:"settled"`
}

type Analytics struct {
	Summary     AnalyticsSummary   `json:"summary"`
	Candlestick []CandlestickPoint `json:"candlestick_data"`
	Funnel      SettlementFunnel   `json:"funnel_data"`
}
