package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAnalyst UserRole = "analyst"
	RoleViewer  UserRole = "viewer"
)

type Permission string

const (
	PermTransactionCreate Permission = "transaction:create"
	PermTransactionUpdate Permission = "transaction:update"
	PermTransactionDelete Permission = "transaction:delete"
	PermTransactionView   Permission = "transaction:view"
	PermReportExport      Permission = "report:export"
	PermReportSchedule    Permission = "report:schedule"
	PermSettingsManage    Permission = "settings:manage"
	PermProfileEdit       Permission = "profile:edit"
	PermUserManage        Permission = "user:manage"
)

var rolePermissions = map[UserRole][]Permission{
	RoleAdmin: {
		PermTransactionCreate, PermTransactionUpdate, PermTransactionDelete, PermTransactionView,
		PermReportExport, PermReportSchedule, PermSettingsManage, PermProfileEdit, PermUserManage,
	},
	RoleAnalyst: {
		PermTransactionCreate, PermTransactionUpdate, PermTransactionView,
		PermReportExport, PermProfileEdit,
	},
	RoleViewer: {
		PermTransactionView, PermReportExport,
	},
}

func IsValidRole(role UserRole) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission reports whether the role grants the given permission.
// Unknown roles grant nothing.
func HasPermission(role UserRole, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

func RoleLabel(role UserRole) string {
	switch role {
	case RoleAdmin:
		return "Administrator"
	case RoleAnalyst:
		return "Analyst"
	case RoleViewer:
		return "Viewer"
	default:
		return string(role)
	}
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
