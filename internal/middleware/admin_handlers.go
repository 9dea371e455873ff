package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetUsers(c *gin.Context) {
	users, err := h.Users.GetAllUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error loading users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}
