package models

import "time"

type NotificationKind string

const (
	NotificationKindAlert   NotificationKind = "alert"
	NotificationKindWarning NotificationKind = "warning"
	NotificationKindSuccess NotificationKind = "success"
	NotificationKindInfo    NotificationKind = "info"
)

// IsValidNotificationKind reports whether kind belongs to the closed set
// understood by clients.
func IsValidNotificationKind(kind NotificationKind) bool {
	switch kind {
	case NotificationKindAlert, NotificationKindWarning, NotificationKindSuccess, NotificationKindInfo:
		return true
	}
	return false
}

// Notification is an owner-scoped, append-only record. After creation only
// the read flag changes, and only from false to true.
type Notification struct {
	ID        string           `json:"id" db:"id"`
	OwnerID   string           `json:"owner_id" db:"owner_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
