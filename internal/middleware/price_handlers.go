package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type refreshRequest struct {
	Forced bool `json:"forced"`
}

// GetPrices returns the current snapshot.
func (h *Handlers) GetPrices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.Prices.Current()})
}

// RefreshPrices runs a refresh subject to the cooldown. Only admin callers may
// force it.
func (h *Handlers) RefreshPrices(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Forced && !IsAdmin(c, h.AdminKey) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can force a refresh"})
		return
	}

	c.JSON(http.StatusOK, h.Prices.Refresh(c.Request.Context(), req.Forced))
}

// ForceRefreshPrices is the admin refresh, always bypassing the cooldown.
func (h *Handlers) ForceRefreshPrices(c *gin.Context) {
	c.JSON(http.StatusOK, h.Prices.Refresh(c.Request.Context(), true))
}
