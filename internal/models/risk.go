package models

import "time"

// RiskAlertThreshold is the score above which a category is considered in
// breach and an alert notification is raised.
const RiskAlertThreshold = 65

type RiskScore struct {
	Category  string    `json:"category" db:"category"`
	Score     int       `json:"score" db:"score"`
	Previous  int       `json:"previous" db:"previous"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
