// Package app wires configuration, storage, providers and services into the
// object graph shared by the API server and the CLI.
package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/config"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/providers"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/repository"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/scheduler"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/services"
	"github.com/rs/zerolog"
)

// App holds the long-lived services.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	Users        *repository.UserRepository
	Ledger       *repository.TransactionRepository
	Snapshots    *repository.SnapshotRepository
	HistoryStore *repository.HistoryRepository

	Prices       *services.PriceService
	Transactions *services.TransactionService
	History      *services.HistoryRecorder
}

// DefaultSources builds the primary and backup fetchers for every category.
// All fetchers share one HTTP client, and the three Telegram backups share one
// channel download.
func DefaultSources(cfg config.ProviderConfig, client *http.Client, log zerolog.Logger) services.Sources {
	channel := providers.NewTelegramChannel(cfg.TelegramChannelURL, providers.DefaultChannelTTL, client, log)

	return services.Sources{
		FiatPrimary: providers.NewTableScraper("fiat-table", cfg.FiatPageURL, providers.FiatTableSpec(), client, log),
		FiatBackups: []providers.Fetcher{
			providers.NewTelegramFetcher(channel, models.CategoryFiat, log),
			providers.NewFiatAPIFetcher(cfg.FiatAPIURL, cfg.FiatAPIKey, client, log),
		},

		CryptoPrimary: providers.NewTableScraper("crypto-table", cfg.CryptoPageURL, providers.CryptoTableSpec(), client, log),
		CryptoBackups: []providers.Fetcher{
			providers.NewTelegramFetcher(channel, models.CategoryCrypto, log),
			providers.NewCryptoCompareFetcher(cfg.CryptoCompareURL, cfg.CryptoCompareKey, providers.DefaultCryptoCompareSymbols, client, log),
		},
		Missing:       providers.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CoinGeckoDelay, client, log),
		MissingAssets: providers.FrequentlyMissing,

		GoldPrimary: providers.NewTableScraper("gold-table", cfg.GoldPageURL, providers.GoldTableSpec(), client, log),
		GoldBackups: []providers.Fetcher{
			providers.NewTelegramFetcher(channel, models.CategoryGold, log),
			providers.NewGoldProfileFetcher(cfg.GoldProfileURL, "", client, log),
		},
	}
}

// New builds the service graph on an open database. The last persisted
// snapshot, if any, becomes the current one.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, log zerolog.Logger) (*App, error) {
	return NewWithSources(ctx, cfg, db, DefaultSources(cfg.Providers, providers.NewHTTPClient(cfg.FetchTimeout), log), log)
}

// NewWithSources is New with explicit fetchers.
func NewWithSources(ctx context.Context, cfg *config.Config, db *sql.DB, sources services.Sources, log zerolog.Logger) (*App, error) {
	a := &App{
		Config:       cfg,
		Log:          log,
		Users:        repository.NewUserRepository(db),
		Ledger:       repository.NewTransactionRepository(db),
		Snapshots:    repository.NewSnapshotRepository(db),
		HistoryStore: repository.NewHistoryRepository(db),
	}

	aggregator := services.NewAggregator(sources, services.NewResolver(cfg.FetchTimeout, log), log)
	a.Prices = services.NewPriceService(aggregator, a.Snapshots, services.NewRefreshGate(cfg.RefreshCooldown), log)
	if err := a.Prices.Load(ctx); err != nil {
		return nil, err
	}

	a.Transactions = services.NewTransactionService(a.Ledger, a.Prices)
	a.History = services.NewHistoryRecorder(a.Users, a.Ledger, a.HistoryStore, a.Prices, log)
	return a, nil
}

// RegisterJobs adds the background jobs. Empty schedules disable a job.
func (a *App) RegisterJobs(sched *scheduler.Scheduler) error {
	if err := sched.AddJob(a.Config.AutoRefreshSchedule, scheduler.NewPriceRefreshJob(a.Prices, a.Log)); err != nil {
		return err
	}
	if err := sched.AddJob(a.Config.HistorySchedule, scheduler.NewPortfolioHistoryJob(a.History)); err != nil {
		return err
	}
	return sched.AddJob(a.Config.PruneSchedule, scheduler.NewSnapshotPruneJob(a.Snapshots, a.Config.SnapshotRetention, a.Log))
}
