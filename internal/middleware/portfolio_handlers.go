package middleware

import (
	"net/http"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/services"
	"github.com/gin-gonic/gin"
)

// GetPortfolioSummary values the caller's ledger against the current snapshot.
func (h *Handlers) GetPortfolioSummary(c *gin.Context) {
	summary, err := h.Transactions.Summary(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err, "Error computing portfolio summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handlers) GetPortfolioPerformance(c *gin.Context) {
	summary, err := h.Transactions.Summary(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err, "Error computing portfolio performance")
		return
	}
	c.JSON(http.StatusOK, services.TopMovers(summary))
}

// GetPortfolioHistory returns daily valuations for ?period=day|week|month|year|all.
func (h *Handlers) GetPortfolioHistory(c *gin.Context) {
	rows, chart, err := h.History.History(c.Request.Context(), c.GetString(userIDKey), c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows, "chart": chart})
}

// RecordPortfolioHistory stores today's valuation right away.
func (h *Handlers) RecordPortfolioHistory(c *gin.Context) {
	entry, err := h.History.RecordUser(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err, "Error recording portfolio history")
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Portfolio has no value to record"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Portfolio history recorded", "entry": entry})
}
