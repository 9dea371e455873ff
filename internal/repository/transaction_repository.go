package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, asset_symbol, quantity, buy_date_time, buy_price_per_unit, buy_currency, fees_toman, note, created_at`

// SaveTransaction inserts tx or replaces the row with the same id.
func (r *TransactionRepository) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			asset_symbol = excluded.asset_symbol,
			quantity = excluded.quantity,
			buy_date_time = excluded.buy_date_time,
			buy_price_per_unit = excluded.buy_price_per_unit,
			buy_currency = excluded.buy_currency,
			fees_toman = excluded.fees_toman,
			note = excluded.note`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.AssetSymbol,
		tx.Quantity,
		tx.BuyDateTime,
		tx.BuyPricePerUnit,
		string(tx.BuyCurrency),
		tx.FeesToman,
		tx.Note,
		tx.CreatedAt,
	)
	return err
}

// ListTransactions returns a user's ledger in purchase order.
func (r *TransactionRepository) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ?
		ORDER BY buy_date_time ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return tx, err
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*models.Transaction, error) {
	var (
		tx       models.Transaction
		currency string
		note     sql.NullString
	)
	err := s.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.AssetSymbol,
		&tx.Quantity,
		&tx.BuyDateTime,
		&tx.BuyPricePerUnit,
		&currency,
		&tx.FeesToman,
		&note,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.BuyCurrency = models.Currency(currency)
	tx.Note = note.String
	return &tx, nil
}
