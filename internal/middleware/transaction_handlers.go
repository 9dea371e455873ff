package middleware

import (
	"net/http"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateTransaction records a buy for the authenticated user.
func (h *Handlers) CreateTransaction(c *gin.Context) {
	var input models.Transaction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.Transactions.Create(c.Request.Context(), c.GetString(userIDKey), input)
	if err != nil {
		h.respondError(c, err, "Error creating transaction")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Transaction created", "transaction": tx})
}

func (h *Handlers) GetUserTransactions(c *gin.Context) {
	txs, err := h.Transactions.List(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err, "Error loading transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// GetTransactionDetails returns one buy valued at current prices.
func (h *Handlers) GetTransactionDetails(c *gin.Context) {
	details, err := h.Transactions.Details(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Error loading transaction")
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handlers) UpdateTransaction(c *gin.Context) {
	var input models.Transaction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.Transactions.Update(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err, "Error updating transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction updated", "transaction": tx})
}

func (h *Handlers) DeleteTransaction(c *gin.Context) {
	if err := h.Transactions.Delete(c.Request.Context(), c.GetString(userIDKey), c.Param("id")); err != nil {
		h.respondError(c, err, "Error deleting transaction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}
