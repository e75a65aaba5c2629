package repository

import (
	"context"
	"database/sql"
	"sort"

	"github.com/velihant/financehub-api/internal/models"
)

// monthOrder fixes the calendar ordering of the revenue table, which keys
// rows by month name.
var monthOrder = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

type AnalyticsRepository interface {
	ListRevenue(ctx context.Context) ([]models.MonthlyRevenue, error)
	ListPortfolio(ctx context.Context) ([]models.PortfolioAllocation, error)
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) ListRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	const query = `
		SELECT month, revenue, expenses, profit
		FROM app.revenue
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revenues []models.MonthlyRevenue
	for rows.Next() {
		var rev models.MonthlyRevenue
		if err := rows.Scan(&rev.Month, &rev.Revenue, &rev.Expenses, &rev.Profit); err != nil {
			return nil, err
		}
		revenues = append(revenues, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	SortRevenueByMonth(revenues)
	return revenues, nil
}

// SortRevenueByMonth orders revenue rows Jan..Dec in place.
func SortRevenueByMonth(revenues []models.MonthlyRevenue) {
	sort.Slice(revenues, func(i, j int) bool {
		return monthOrder[revenues[i].Month] < monthOrder[revenues[j].Month]
	})
}

func (r *analyticsRepository) ListPortfolio(ctx context.Context) ([]models.PortfolioAllocation, error) {
	const query = `
		SELECT name, value, color
		FROM app.portfolio_allocations
		ORDER BY value DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []models.PortfolioAllocation
	for rows.Next() {
		var alloc models.PortfolioAllocation
		if err := rows.Scan(&alloc.Name, &alloc.Value, &alloc.Color); err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return allocations, nil
}
