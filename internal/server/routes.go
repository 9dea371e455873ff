package routes

import (
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, auth *middleware.Auth, h *middleware.Handlers) {
	router.POST("/signup", auth.Signup)
	router.POST("/login", auth.Login)

	protected := router.Group("/")
	protected.Use(auth.Middleware())
	{
		protected.POST("/transactions", h.CreateTransaction)
		protected.GET("/transactions", h.GetUserTransactions)
		protected.GET("/transactions/:id", h.GetTransactionDetails)
		protected.PUT("/transactions/:id", h.UpdateTransaction)
		protected.DELETE("/transactions/:id", h.DeleteTransaction)

		protected.GET("/prices", h.GetPrices)
		protected.POST("/prices/refresh", h.RefreshPrices)

		protected.GET("/portfolio/summary", h.GetPortfolioSummary)
		protected.GET("/portfolio/performance", h.GetPortfolioPerformance)
		protected.GET("/portfolio/history", h.GetPortfolioHistory)
		protected.POST("/portfolio/history", h.RecordPortfolioHistory)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(h.AdminKey))
	{
		admin.GET("/users", h.GetUsers)
		admin.POST("/prices/refresh", h.ForceRefreshPrices)
	}
}
