package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/app"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/config"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/database"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/logger"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/middleware"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/scheduler"
	routes "github.com/AgusMolinaCode/TomanPortfolio_Api/internal/server"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log.Info().Msg("Starting Toman portfolio API")

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build services")
	}

	sched := scheduler.New(log)
	if err := a.RegisterJobs(sched); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()
	defer sched.Stop()

	// Warm up prices; the cooldown keeps this from hammering sources on restarts
	go a.Prices.Refresh(ctx, false)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, a, log)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// newRouter builds the gin engine with CORS and the full route table.
func newRouter(cfg *config.Config, a *app.App, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Admin-Key"}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	auth := middleware.NewAuth(cfg.JWTSecret, a.Users)
	routes.RegisterRoutes(router, auth, &middleware.Handlers{
		Transactions: a.Transactions,
		Prices:       a.Prices,
		History:      a.History,
		Users:        a.Users,
		AdminKey:     cfg.AdminKey,
		Log:          log,
	})
	return router
}
