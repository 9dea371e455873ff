package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/repository"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PriceProvider is the snapshot holder the price endpoints talk to.
type PriceProvider interface {
	Current() *models.PriceSnapshot
	Refresh(ctx context.Context, forced bool) models.RefreshResult
}

// HistoryProvider serves and records portfolio history.
type HistoryProvider interface {
	History(ctx context.Context, userID, period string) ([]models.PortfolioHistory, models.PortfolioChartData, error)
	RecordUser(ctx context.Context, userID string) (*models.PortfolioHistory, error)
}

// UserDirectory lists accounts for the admin endpoints.
type UserDirectory interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

// Handlers groups the HTTP handlers and the services they call.
type Handlers struct {
	Transactions *services.TransactionService
	Prices       PriceProvider
	History      HistoryProvider
	Users        UserDirectory
	AdminKey     string
	Log          zerolog.Logger
}

// respondError maps service and repository errors to HTTP statuses.
func (h *Handlers) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrInvalidTransaction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDefaultPrices):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Prices have not been fetched yet"})
	default:
		h.Log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
