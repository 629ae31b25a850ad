package v1

import (
	"github.com/go-chi/chi/v5"

	"github.com/mstgnz/payroute/handler"
)

// Handlers groups the handlers mounted under /v1
type Handlers struct {
	Transactions *handler.TransactionHandler
	Health       *handler.HealthHandler
}

// Routes registers all v1 API routes
func Routes(r chi.Router, h Handlers) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/{provider}", h.Transactions.ProcessTransaction)
	})

	r.Get("/providers", h.Health.ListProviders)
}
