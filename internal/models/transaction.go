package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "Buy"
	TransactionTypeSell TransactionType = "Sell"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusFailed    TransactionStatus = "Failed"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

func IsValidTransactionType(t TransactionType) bool {
	return t == TransactionTypeBuy || t == TransactionTypeSell
}

func IsValidTransactionStatus(s TransactionStatus) bool {
	return s == TransactionStatusCompleted || s == TransactionStatusPending || s == TransactionStatusFailed
}

func IsValidRiskLevel(r RiskLevel) bool {
	return r == RiskLevelLow || r == RiskLevelMedium || r == RiskLevelHigh
}

type Transaction struct {
	ID        string            `json:"id" db:"id"`
	TxnRef    string            `json:"txn_id" db:"txn_ref"`
	Client    string            `json:"client" db:"client"`
	Type      TransactionType   `json:"type" db:"type"`
	Asset     string            `json:"asset" db:"asset"`
	Amount    decimal.Decimal   `json:"amount" db:"amount"`
	Status    TransactionStatus `json:"status" db:"status"`
	Risk      RiskLevel         `json:"risk" db:"risk"`
	Date      time.Time         `json:"date" db:"date"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}
