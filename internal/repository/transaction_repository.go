package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/velihant/financehub-api/internal/models"
)

type TransactionRepository interface {
	List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int, error)
	Create(ctx context.Context, params CreateTransactionParams) (models.Transaction, error)
	Update(ctx context.Context, id string, params UpdateTransactionParams) (models.Transaction, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (models.TransactionStats, error)
}

type TransactionFilter struct {
	Search string
	Status models.TransactionStatus
	Risk   models.RiskLevel
	Type   models.TransactionType
	Page   int
	Limit  int
}

type CreateTransactionParams struct {
	Client string
	Type   models.TransactionType
	Asset  string
	Amount decimal.Decimal
	Status models.TransactionStatus
	Risk   models.RiskLevel
	Date   time.Time
}

type UpdateTransactionParams struct {
	Status *models.TransactionStatus
	Risk   *models.RiskLevel
	Amount *decimal.Decimal
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = "id, txn_ref, client, type, asset, amount, status, risk, date, created_at"

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := arg("%" + search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(client ILIKE %s OR asset ILIKE %s OR txn_ref ILIKE %s)", pattern, pattern, pattern))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(filter.Status))
	}
	if filter.Risk != "" {
		conditions = append(conditions, "risk = "+arg(filter.Risk))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = "+arg(filter.Type))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM app.transactions " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM app.transactions %s ORDER BY date DESC LIMIT %s OFFSET %s",
		transactionColumns, where, arg(filter.Limit), arg((filter.Page-1)*filter.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *transactionRepository) Create(ctx context.Context, params CreateTransactionParams) (models.Transaction, error) {
	// The visible reference comes from a sequence so concurrent inserts
	// cannot mint the same number.
	const query = `
		INSERT INTO app.transactions (txn_ref, client, type, asset, amount, status, risk, date)
		VALUES ('TXN-' || LPAD(nextval('app.txn_ref_seq')::TEXT, 4, '0'), $1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns

	row := r.db.QueryRowContext(ctx, query,
		strings.TrimSpace(params.Client), params.Type, strings.TrimSpace(params.Asset),
		params.Amount.String(), params.Status, params.Risk, params.Date)
	return scanTransaction(row)
}

func (r *transactionRepository) Update(ctx context.Context, id string, params UpdateTransactionParams) (models.Transaction, error) {
	var (
		sets []string
		args []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Status != nil {
		sets = append(sets, "status = "+arg(*params.Status))
	}
	if params.Risk != nil {
		sets = append(sets, "risk = "+arg(*params.Risk))
	}
	if params.Amount != nil {
		sets = append(sets, "amount = "+arg(params.Amount.String()))
	}
	if len(sets) == 0 {
		return models.Transaction{}, fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf(
		"UPDATE app.transactions SET %s WHERE id = %s RETURNING %s",
		strings.Join(sets, ", "), arg(strings.TrimSpace(id)), transactionColumns)

	row := r.db.QueryRowContext(ctx, query, args...)
	return scanTransaction(row)
}

func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM app.transactions WHERE id = $1 RETURNING id`
	var deleted string
	return r.db.QueryRowContext(ctx, query, strings.TrimSpace(id)).Scan(&deleted)
}

func (r *transactionRepository) Stats(ctx context.Context) (models.TransactionStats, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Completed'),
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Failed'),
			COALESCE(SUM(amount), 0)
		FROM app.transactions
	`

	var (
		stats    models.TransactionStats
		totalRaw string
	)
	if err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.Total, &stats.Completed, &stats.Pending, &stats.Failed, &totalRaw,
	); err != nil {
		return models.TransactionStats{}, err
	}

	totalAmount, err := decimal.NewFromString(totalRaw)
	if err != nil {
		return models.TransactionStats{}, fmt.Errorf("parse total amount: %w", err)
	}

	stats.AvgTransaction = decimal.Zero
	stats.TotalVolume = totalAmount
	if stats.Total > 0 {
		stats.AvgTransaction = totalAmount.Div(decimal.NewFromInt(int64(stats.Total))).Round(2)
		rate := decimal.NewFromInt(int64(stats.Completed)).
			Div(decimal.NewFromInt(int64(stats.Total))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		stats.SettlementRate, _ = rate.Float64()
	}
	return stats, nil
}

func scanTransaction(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Transaction, error) {
	var (
		txn       models.Transaction
		amountRaw string
	)
	if err := scanner.Scan(
		&txn.ID,
		&txn.TxnRef,
		&txn.Client,
		&txn.Type,
		&txn.Asset,
		&amountRaw,
		&txn.Status,
		&txn.Risk,
		&txn.Date,
		&txn.CreatedAt,
	); err != nil {
		return models.Transaction{}, err
	}

	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	txn.Amount = amount
	return txn, nil
}
