package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
)

const historyDateLayout = "2006-01-02"

// HistoryRepository keeps one portfolio valuation row per user per day.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordDailyValue stores entry as the day's latest valuation. When the day
// already has a row its totals are replaced and the running max/min widened.
// Non-positive values are ignored.
func (r *HistoryRepository) RecordDailyValue(ctx context.Context, entry models.PortfolioHistory) error {
	if entry.TotalValue <= 0 || entry.TotalInvested <= 0 {
		return nil
	}

	query := `
		INSERT INTO portfolio_history (id, user_id, date, total_value, total_invested, profit, profit_percentage, max_value, min_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			total_value = excluded.total_value,
			total_invested = excluded.total_invested,
			profit = excluded.profit,
			profit_percentage = excluded.profit_percentage,
			max_value = MAX(portfolio_history.max_value, excluded.total_value),
			min_value = CASE
				WHEN portfolio_history.min_value <= 0 THEN excluded.total_value
				ELSE MIN(portfolio_history.min_value, excluded.total_value)
			END`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Date.Format(historyDateLayout),
		entry.TotalValue,
		entry.TotalInvested,
		entry.Profit,
		entry.ProfitPercentage,
		entry.TotalValue,
		entry.TotalValue,
	)
	return err
}

// ListHistory returns the user's rows dated on or after since, oldest first.
func (r *HistoryRepository) ListHistory(ctx context.Context, userID string, since time.Time) ([]models.PortfolioHistory, error) {
	query := `
		SELECT id, user_id, date, total_value, total_invested, profit, profit_percentage, max_value, min_value
		FROM portfolio_history
		WHERE user_id = ? AND date >= ?
		ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since.Format(historyDateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.PortfolioHistory{}
	for rows.Next() {
		var (
			h    models.PortfolioHistory
			date string
		)
		if err := rows.Scan(
			&h.ID,
			&h.UserID,
			&date,
			&h.TotalValue,
			&h.TotalInvested,
			&h.Profit,
			&h.ProfitPercentage,
			&h.MaxValue,
			&h.MinValue,
		); err != nil {
			return nil, err
		}
		h.Date, err = time.Parse(historyDateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse history date %q: %w", date, err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
