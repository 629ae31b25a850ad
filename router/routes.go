package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/mstgnz/payroute/handler"
	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/infra/metrics"
	"github.com/mstgnz/payroute/infra/middle"
	v1 "github.com/mstgnz/payroute/router/v1"
)

// Service is what the routes need from the payment gateway
type Service interface {
	handler.TransactionProcessor
	handler.ProviderStatusLister
}

// Options configures the mounted routes
type Options struct {
	Service        Service
	Search         handler.SearchPinger
	Log            logger.Logger
	Environment    string
	APIKey         string
	RateLimiter    *middle.RateLimiter
	MetricsEnabled bool
}

// Routes mounts the health, metrics and transaction endpoints on r
func Routes(r chi.Router, opts Options) {
	transactions := handler.NewTransactionHandler(opts.Service, opts.Log)
	health := handler.NewHealthHandler(opts.Service, opts.Search, opts.Environment)

	r.Get("/health", health.CheckHealth)
	if opts.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(middle.RateLimitMiddleware(opts.RateLimiter))
		}
		r.Use(middle.AuthMiddleware(opts.APIKey))
		r.Use(middle.RequestValidationMiddleware())

		r.Post("/app/processTransaction/{provider}", transactions.ProcessTransaction)

		r.Route("/v1", func(r chi.Router) {
			v1.Routes(r, v1.Handlers{Transactions: transactions, Health: health})
		})
	})
}
