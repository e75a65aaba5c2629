package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/velihant/financehub-api/internal/models"
)

type AuditRepository interface {
	Insert(ctx context.Context, params InsertAuditParams) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, int, error)
}

type InsertAuditParams struct {
	UserID   string
	Action   string
	Entity   string
	EntityID string
	Details  map[string]interface{}
}

type AuditFilter struct {
	Action string
	Page   int
	Limit  int
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, params InsertAuditParams) error {
	var entityID interface{}
	if id := strings.TrimSpace(params.EntityID); id != "" {
		entityID = id
	}

	var details interface{}
	if len(params.Details) > 0 {
		bytes, err := json.Marshal(params.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		details = bytes
	}

	const query = `
		INSERT INTO app.audit_log (user_id, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		strings.TrimSpace(params.UserID), params.Action, params.Entity, entityID, details)
	return err
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 50 {
		filter.Limit = 20
	}

	where := ""
	args := []interface{}{}
	if action := strings.TrimSpace(filter.Action); action != "" {
		args = append(args, action)
		where = "WHERE a.action = $1"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM app.audit_log a " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`
		SELECT a.id, a.user_id, a.action, a.entity, a.entity_id, a.details, a.created_at,
		       u.name, u.email
		FROM app.audit_log a
		JOIN app.users u ON u.id = a.user_id
		%s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var (
			entry      models.AuditEntry
			entityID   sql.NullString
			detailsRaw []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Entity,
			&entityID,
			&detailsRaw,
			&entry.CreatedAt,
			&entry.UserName,
			&entry.UserEmail,
		); err != nil {
			return nil, 0, err
		}
		if entityID.Valid {
			val := entityID.String
			entry.EntityID = &val
		}
		if len(detailsRaw) > 0 {
			entry.Details = detailsRaw
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
