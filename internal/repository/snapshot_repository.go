package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
)

// SnapshotRepository stores price snapshots. Price maps are kept as JSON text.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, s *models.PriceSnapshot) error {
	fiat, err := json.Marshal(s.FiatPrices)
	if err != nil {
		return fmt.Errorf("encode fiat prices: %w", err)
	}
	crypto, err := json.Marshal(s.CryptoPrices)
	if err != nil {
		return fmt.Errorf("encode crypto prices: %w", err)
	}
	gold, err := json.Marshal(s.GoldPrices)
	if err != nil {
		return fmt.Errorf("encode gold prices: %w", err)
	}

	query := `
		INSERT INTO price_snapshots (fetched_at, usd_to_local, eur_to_local, gold18_to_local, fiat_prices, crypto_prices, gold_prices)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		s.FetchedAt,
		s.USDToLocal,
		s.EURToLocal,
		s.Gold18ToLocal,
		string(fiat),
		string(crypto),
		string(gold),
	)
	return err
}

// LoadLatestSnapshot returns the most recently fetched snapshot, or nil when
// none has been stored.
func (r *SnapshotRepository) LoadLatestSnapshot(ctx context.Context) (*models.PriceSnapshot, error) {
	query := `
		SELECT fetched_at, usd_to_local, eur_to_local, gold18_to_local, fiat_prices, crypto_prices, gold_prices
		FROM price_snapshots
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1`

	var (
		s                  models.PriceSnapshot
		fiat, crypto, gold string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.FetchedAt,
		&s.USDToLocal,
		&s.EURToLocal,
		&s.Gold18ToLocal,
		&fiat,
		&crypto,
		&gold,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, m := range []struct {
		raw string
		dst *models.PriceMap
	}{{fiat, &s.FiatPrices}, {crypto, &s.CryptoPrices}, {gold, &s.GoldPrices}} {
		if err := json.Unmarshal([]byte(m.raw), m.dst); err != nil {
			return nil, fmt.Errorf("decode stored prices: %w", err)
		}
		if *m.dst == nil {
			*m.dst = models.PriceMap{}
		}
	}
	return &s, nil
}

// PruneSnapshots keeps only the newest keep snapshots.
func (r *SnapshotRepository) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM price_snapshots
		WHERE id NOT IN (SELECT id FROM price_snapshots ORDER BY fetched_at DESC, id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
