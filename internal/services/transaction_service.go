package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidTransaction is wrapped by every validation failure.
var ErrInvalidTransaction = errors.New("invalid transaction")

// TransactionStore is the ledger persistence the service relies on.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// SnapshotSource hands out the snapshot valuation should use.
type SnapshotSource interface {
	Current() *models.PriceSnapshot
}

// TransactionService manages a user's ledger and values it.
type TransactionService struct {
	store  TransactionStore
	prices SnapshotSource
	now    func() time.Time
}

func NewTransactionService(store TransactionStore, prices SnapshotSource) *TransactionService {
	return &TransactionService{store: store, prices: prices, now: time.Now}
}

// Create validates input and stores it under a new id.
func (s *TransactionService) Create(ctx context.Context, userID string, input models.Transaction) (*models.Transaction, error) {
	tx := input
	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = s.now()
	if err := s.normalize(&tx); err != nil {
		return nil, err
	}
	if err := s.store.SaveTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}
	return &tx, nil
}

// Update replaces the editable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, userID, id string, input models.Transaction) (*models.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	tx := input
	tx.ID = existing.ID
	tx.UserID = existing.UserID
	tx.CreatedAt = existing.CreatedAt
	if err := s.normalize(&tx); err != nil {
		return nil, err
	}
	if err := s.store.SaveTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}
	return &tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// Details values one transaction against the current snapshot.
func (s *TransactionService) Details(ctx context.Context, userID, id string) (*models.TransactionDetails, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	details := DescribeTransaction(*tx, s.prices.Current())
	return &details, nil
}

// Summary values the whole ledger against the current snapshot.
func (s *TransactionService) Summary(ctx context.Context, userID string) (models.PortfolioSummary, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return models.EmptySummary(), err
	}
	return ComputeSummary(txs, s.prices.Current()), nil
}

func (s *TransactionService) normalize(tx *models.Transaction) error {
	tx.AssetSymbol = strings.ToUpper(strings.TrimSpace(tx.AssetSymbol))
	if tx.BuyCurrency == "" {
		tx.BuyCurrency = models.CurrencyToman
	}
	tx.BuyCurrency = models.Currency(strings.ToUpper(string(tx.BuyCurrency)))
	if tx.BuyDateTime.IsZero() {
		tx.BuyDateTime = s.now()
	}
	return ValidateTransaction(*tx)
}

// ValidateTransaction checks the invariants every stored transaction holds.
func ValidateTransaction(tx models.Transaction) error {
	switch {
	case tx.AssetSymbol == "":
		return fmt.Errorf("%w: asset symbol is required", ErrInvalidTransaction)
	case tx.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidTransaction)
	case tx.BuyPricePerUnit <= 0:
		return fmt.Errorf("%w: buy price must be greater than zero", ErrInvalidTransaction)
	case tx.FeesToman < 0:
		return fmt.Errorf("%w: fees cannot be negative", ErrInvalidTransaction)
	case !tx.BuyCurrency.Valid():
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidTransaction, tx.BuyCurrency)
	}
	return nil
}
