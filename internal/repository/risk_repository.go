package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/velihant/financehub-api/internal/models"
)

type RiskRepository interface {
	List(ctx context.Context) ([]models.RiskScore, error)
	// UpdateScore moves the current score into previous and stores the new
	// value. Returns sql.ErrNoRows for an unknown category.
	UpdateScore(ctx context.Context, category string, score int) (models.RiskScore, error)
}

type riskRepository struct {
	db *sql.DB
}

func NewRiskRepository(db *sql.DB) RiskRepository {
	return &riskRepository{db: db}
}

func (r *riskRepository) List(ctx context.Context) ([]models.RiskScore, error) {
	const query = `
		SELECT category, score, previous, updated_at
		FROM app.risk_scores
		ORDER BY category
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.RiskScore
	for rows.Next() {
		var score models.RiskScore
		if err := rows.Scan(&score.Category, &score.Score, &score.Previous, &score.UpdatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *riskRepository) UpdateScore(ctx context.Context, category string, score int) (models.RiskScore, error) {
	const query = `
		UPDATE app.risk_scores
		SET previous = score, score = $1, updated_at = NOW()
		WHERE category = $2
		RETURNING category, score, previous, updated_at
	`

	var updated models.RiskScore
	err := r.db.QueryRowContext(ctx, query, score, strings.TrimSpace(category)).
		Scan(&updated.Category, &updated.Score, &updated.Previous, &updated.UpdatedAt)
	if err != nil {
		return models.RiskScore{}, err
	}
	return updated, nil
}
