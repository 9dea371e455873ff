package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrDefaultPrices is returned when only the hardcoded fallback prices are
// known, so a valuation would not reflect the market.
var ErrDefaultPrices = errors.New("no fetched prices available")

// HistoryStore keeps one valuation row per user per day.
type HistoryStore interface {
	RecordDailyValue(ctx context.Context, entry models.PortfolioHistory) error
	ListHistory(ctx context.Context, userID string, since time.Time) ([]models.PortfolioHistory, error)
}

// UserLister enumerates the users whose portfolios are tracked.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// LedgerReader loads a user's transactions.
type LedgerReader interface {
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
}

// HistoryRecorder values every ledger against the current snapshot and stores
// the result as the day's history row.
type HistoryRecorder struct {
	users   UserLister
	ledger  LedgerReader
	history HistoryStore
	prices  SnapshotSource
	now     func() time.Time
	log     zerolog.Logger
}

func NewHistoryRecorder(users UserLister, ledger LedgerReader, history HistoryStore, prices SnapshotSource, log zerolog.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		users:   users,
		ledger:  ledger,
		history: history,
		prices:  prices,
		now:     time.Now,
		log:     log.With().Str("component", "history").Logger(),
	}
}

// RecordUser stores today's valuation for one user. Empty portfolios are not
// recorded and yield nil.
func (h *HistoryRecorder) RecordUser(ctx context.Context, userID string) (*models.PortfolioHistory, error) {
	snapshot := h.prices.Current()
	if snapshot == nil || snapshot.IsDefault {
		return nil, ErrDefaultPrices
	}

	txs, err := h.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", userID, err)
	}

	summary := ComputeSummary(txs, snapshot)
	if summary.TotalValueLocal <= 0 || summary.TotalCostBasisLocal <= 0 {
		h.log.Debug().Str("user_id", userID).Msg("Skipping history for empty portfolio")
		return nil, nil
	}

	now := h.now()
	entry := models.PortfolioHistory{
		ID:               uuid.New().String(),
		UserID:           userID,
		Date:             time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		TotalValue:       summary.TotalValueLocal,
		TotalInvested:    summary.TotalCostBasisLocal,
		Profit:           summary.TotalPnlLocal,
		ProfitPercentage: summary.TotalPnlPercent,
		MaxValue:         summary.TotalValueLocal,
		MinValue:         summary.TotalValueLocal,
	}
	if err := h.history.RecordDailyValue(ctx, entry); err != nil {
		return nil, fmt.Errorf("record history for %s: %w", userID, err)
	}
	return &entry, nil
}

// RecordAll records every user, logging and skipping individual failures.
func (h *HistoryRecorder) RecordAll(ctx context.Context) error {
	if snapshot := h.prices.Current(); snapshot == nil || snapshot.IsDefault {
		h.log.Warn().Msg("Skipping portfolio history, only default prices are available")
		return nil
	}

	ids, err := h.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	recorded := 0
	for _, id := range ids {
		entry, err := h.RecordUser(ctx, id)
		if err != nil {
			h.log.Error().Err(err).Str("user_id", id).Msg("Failed to record portfolio history")
			continue
		}
		if entry != nil {
			recorded++
		}
	}
	h.log.Info().Int("users", len(ids)).Int("recorded", recorded).Msg("Portfolio history recorded")
	return nil
}

// History returns the user's rows for period together with chart data.
func (h *HistoryRecorder) History(ctx context.Context, userID, period string) ([]models.PortfolioHistory, models.PortfolioChartData, error) {
	since, err := PeriodStart(period, h.now())
	if err != nil {
		return nil, models.PortfolioChartData{}, err
	}
	rows, err := h.history.ListHistory(ctx, userID, since)
	if err != nil {
		return nil, models.PortfolioChartData{}, err
	}
	return rows, ChartData(rows), nil
}

// PeriodStart maps a period name to the earliest date it covers.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch strings.ToLower(period) {
	case "", "month", "1m":
		return now.AddDate(0, -1, 0), nil
	case "day", "1d":
		return now.AddDate(0, 0, -1), nil
	case "week", "1w", "7d":
		return now.AddDate(0, 0, -7), nil
	case "year", "1y":
		return now.AddDate(-1, 0, 0), nil
	case "all":
		return time.Time{}, nil
	}
	return time.Time{}, fmt.Errorf("unknown period %q", period)
}

// ChartData reshapes history rows, oldest first, for a line chart.
func ChartData(rows []models.PortfolioHistory) models.PortfolioChartData {
	chart := models.PortfolioChartData{Labels: []string{}, Values: []float64{}}
	for i, row := range rows {
		chart.Labels = append(chart.Labels, row.Date.Format("2006-01-02"))
		chart.Values = append(chart.Values, row.TotalValue)

		high := row.MaxValue
		if high < row.TotalValue {
			high = row.TotalValue
		}
		low := row.MinValue
		if low <= 0 || low > row.TotalValue {
			low = row.TotalValue
		}
		if i == 0 || high > chart.High {
			chart.High = high
		}
		if i == 0 || low < chart.Low {
			chart.Low = low
		}
	}
	if n := len(rows); n > 1 && rows[0].TotalValue > 0 {
		chart.TrendPercentage = (rows[n-1].TotalValue - rows[0].TotalValue) / rows[0].TotalValue * 100
	}
	return chart
}
