package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/portfolio-tracker/internal/api/middleware"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// Services groups the services the HTTP layer serves.
type Services struct {
	System       *service.SystemService
	Users        *service.UserService
	Transactions *service.TransactionService
	Portfolio    *service.PortfolioService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svc.System)
	userHandler := handlers.NewUserHandler(svc.Users)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", userHandler.Users)
			r.Post("/", userHandler.CreateUser)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", userHandler.GetUser)

				r.Route("/transaction", func(r chi.Router) {
					r.Get("/", transactionHandler.Transactions)
					r.Post("/", transactionHandler.CreateTransaction)
					r.Delete("/", transactionHandler.DeleteAllTransactions)
					r.Post("/upload", transactionHandler.UploadTransactions)

					r.Route("/{transactionId}", func(r chi.Router) {
						r.Use(custommiddleware.ValidateTransactionIDMiddleware)
						r.Get("/", transactionHandler.GetTransaction)
						r.Put("/", transactionHandler.UpdateTransaction)
						r.Delete("/", transactionHandler.DeleteTransaction)
					})
				})

				r.Get("/positions", portfolioHandler.Positions)
				r.Get("/summary", portfolioHandler.Summary)
				r.Get("/history", portfolioHandler.History)
				r.Get("/metrics", portfolioHandler.Metrics)
				r.Get("/allocation", portfolioHandler.Allocation)
				r.Post("/refresh", transactionHandler.Refresh)
			})
		})
	})

	return r
}
