package models

import "time"

type ReportFrequency string

const (
	ReportFrequencyDaily   ReportFrequency = "daily"
	ReportFrequencyWeekly  ReportFrequency = "weekly"
	ReportFrequencyMonthly ReportFrequency = "monthly"
)

func IsValidReportFrequency(f ReportFrequency) bool {
	return f == ReportFrequencyDaily || f == ReportFrequencyWeekly || f == ReportFrequencyMonthly
}

// ScheduledReport only records when a report should next run. Nothing in
// this service executes or delivers it.
type ScheduledReport struct {
	ID         string          `json:"id" db:"id"`
	OwnerID    string          `json:"owner_id" db:"owner_id"`
	Name       string          `json:"name" db:"name"`
	Frequency  ReportFrequency `json:"frequency" db:"frequency"`
	Email      string          `json:"email" db:"email"`
	ReportType string          `json:"report_type" db:"report_type"`
	Active     bool            `json:"active" db:"active"`
	NextRun    time.Time       `json:"next_run" db:"next_run"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
