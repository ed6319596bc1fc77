/**
 * @description
 * This file sets up the HTTP router for the settlement-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SettlementRoutes creates and returns a new router for the settlement service.
func SettlementRoutes(h *SettlementHandlers, tellerJWTSecret string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require teller authentication.
	r.Group(func(r chi.Router) {
		r.Use(TellerAuthMiddleware(tellerJWTSecret))

		// Settlement endpoints.
		r.Post("/settlements/deposits", h.DepositHandler)
		r.Post("/settlements/withdrawals", h.WithdrawalHandler)
		r.Post("/settlements/transfers", h.TransferHandler)

		// History lookup for the teller screen.
		r.Get("/settlements/transactions/{accountNumber}", h.TransactionHistoryHandler)
	})

	return r
}
