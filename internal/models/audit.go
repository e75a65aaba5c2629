package models

import (
	"encoding/json"
	"time"
)

type AuditEntry struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Action    string          `json:"action" db:"action"`
	Entity    string          `json:"entity" db:"entity"`
	EntityID  *string         `json:"entity_id,omitempty" db:"entity_id"`
	Details   json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`

	// Joined from users for list responses.
	UserName  string `json:"user_name,omitempty" db:"user_name"`
	UserEmail string `json:"user_email,omitempty" db:"user_email"`
}
