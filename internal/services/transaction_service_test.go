package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransactionService(ledger *memoryLedger) *TransactionService {
	s := NewTransactionService(ledger, fixedPrices{snapshot: snapshotFixture()})
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestTransactionService_CreateNormalizes(t *testing.T) {
	ledger := newMemoryLedger()
	s := newTestTransactionService(ledger)

	tx, err := s.Create(context.Background(), "user-1", models.Transaction{
		AssetSymbol:     " btc ",
		Quantity:        0.5,
		BuyPricePerUnit: 40000,
		BuyCurrency:     "usd",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(tx.ID)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", tx.UserID)
	assert.Equal(t, "BTC", tx.AssetSymbol)
	assert.Equal(t, models.CurrencyUSD, tx.BuyCurrency)
	assert.Equal(t, fixedNow, tx.BuyDateTime)
	assert.Equal(t, fixedNow, tx.CreatedAt)

	stored, err := ledger.GetTransaction(context.Background(), "user-1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, *tx, *stored)
}

func TestTransactionService_CreateDefaultsCurrency(t *testing.T) {
	s := newTestTransactionService(newMemoryLedger())

	tx, err := s.Create(context.Background(), "user-1", models.Transaction{
		AssetSymbol: "GOLD18", Quantity: 2, BuyPricePerUnit: 6500000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CurrencyToman, tx.BuyCurrency)
}

func TestValidateTransaction(t *testing.T) {
	valid := models.Transaction{AssetSymbol: "BTC", Quantity: 1, BuyPricePerUnit: 1, BuyCurrency: models.CurrencyToman}

	tests := []struct {
		name   string
		mutate func(*models.Transaction)
	}{
		{"empty symbol", func(tx *models.Transaction) { tx.AssetSymbol = "" }},
		{"zero quantity", func(tx *models.Transaction) { tx.Quantity = 0 }},
		{"negative quantity", func(tx *models.Transaction) { tx.Quantity = -1 }},
		{"zero price", func(tx *models.Transaction) { tx.BuyPricePerUnit = 0 }},
		{"negative fees", func(tx *models.Transaction) { tx.FeesToman = -1 }},
		{"unknown currency", func(tx *models.Transaction) { tx.BuyCurrency = "EUR" }},
	}

	require.NoError(t, ValidateTransaction(valid))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := ValidateTransaction(tx)
			assert.True(t, errors.Is(err, ErrInvalidTransaction), "got %v", err)
		})
	}
}

func TestTransactionService_UpdateKeepsIdentity(t *testing.T) {
	ledger := newMemoryLedger()
	s := newTestTransactionService(ledger)
	ctx := context.Background()

	created, err := s.Create(ctx, "user-1", models.Transaction{AssetSymbol: "ETH", Quantity: 1, BuyPricePerUnit: 100})
	require.NoError(t, err)

	updated, err := s.Update(ctx, "user-1", created.ID, models.Transaction{
		ID: "spoofed", UserID: "user-2", AssetSymbol: "eth", Quantity: 3, BuyPricePerUnit: 120,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "user-1", updated.UserID)
	assert.Equal(t, 3.0, updated.Quantity)

	_, err = s.Update(ctx, "user-2", created.ID, models.Transaction{AssetSymbol: "ETH", Quantity: 1, BuyPricePerUnit: 1})
	assert.Error(t, err, "other users cannot edit")
}

func TestTransactionService_DeleteAndList(t *testing.T) {
	ledger := newMemoryLedger()
	s := newTestTransactionService(ledger)
	ctx := context.Background()

	a, _ := s.Create(ctx, "user-1", models.Transaction{AssetSymbol: "BTC", Quantity: 1, BuyPricePerUnit: 1})
	_, _ = s.Create(ctx, "user-1", models.Transaction{AssetSymbol: "ETH", Quantity: 1, BuyPricePerUnit: 1})
	_, _ = s.Create(ctx, "user-2", models.Transaction{AssetSymbol: "BTC", Quantity: 1, BuyPricePerUnit: 1})

	require.NoError(t, s.Delete(ctx, "user-1", a.ID))

	txs, err := s.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "ETH", txs[0].AssetSymbol)
}

func TestTransactionService_SummaryAndDetails(t *testing.T) {
	ledger := newMemoryLedger()
	s := newTestTransactionService(ledger)
	ctx := context.Background()

	tx, err := s.Create(ctx, "user-1", models.Transaction{
		AssetSymbol: "BTC", Quantity: 0.5, BuyPricePerUnit: 40000, BuyCurrency: models.CurrencyUSD, FeesToman: 100000,
	})
	require.NoError(t, err)

	summary, err := s.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1250000000.0, summary.TotalValueLocal)

	details, err := s.Details(ctx, "user-1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 249900000.0, details.GainLoss)

	empty, err := s.Summary(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty.Assets)
}
