package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/api"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/database"
	"github.com/ndewijer/portfolio-tracker/internal/logger"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/scheduler"
	"github.com/ndewijer/portfolio-tracker/internal/service"
	"github.com/ndewijer/portfolio-tracker/internal/version"
	"github.com/ndewijer/portfolio-tracker/internal/yahoo"
)

// refreshTimeout bounds one scheduled refresh of every user.
const refreshTimeout = 30 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger config is part of what failed to load.
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	// Open database connection
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create database directory")
		}
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	realizedRepo := repository.NewRealizedGainLossRepository(db)
	symbolInfoRepo := repository.NewSymbolInfoRepository(db)
	priceHistoryRepo := repository.NewPriceHistoryRepository(db)

	// Create services
	coordinator := service.NewCoordinator()
	marketData := service.NewMarketDataService(
		yahoo.NewFinanceClient(cfg.MarketData.Timeout),
		symbolInfoRepo,
		priceHistoryRepo,
		cfg.MarketData,
		log,
	)
	systemService := service.NewSystemService(db, cfg.Refresh.Enabled)
	userService := service.NewUserService(userRepo, log)
	transactionService := service.NewTransactionService(
		db,
		userRepo,
		transactionRepo,
		positionRepo,
		realizedRepo,
		marketData,
		coordinator,
		log,
	)
	portfolioService := service.NewPortfolioService(
		userRepo,
		transactionRepo,
		positionRepo,
		marketData,
		coordinator,
		log,
	)

	// Nightly refresh
	var sched *scheduler.Scheduler
	if cfg.Refresh.Enabled {
		sched = scheduler.New(log)
		job := scheduler.NewRefreshJob(transactionService, refreshTimeout, log)
		if err := sched.AddJob(cfg.Refresh.Schedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Refresh.Schedule).Msg("invalid refresh schedule")
		}
		sched.Start()
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:       systemService,
		Users:        userService,
		Transactions: transactionService,
		Portfolio:    portfolioService,
	}, cfg, log)

	// Create HTTP server. Refresh requests wait on the market data provider,
	// so writes get more room than reads.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("version", version.Version).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited")
}
