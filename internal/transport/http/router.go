// Package httptransport assembles the service router: the buyer interaction
// surface, the operator catalog API, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	cataloghandler "passgate/internal/catalog/handler"
	"passgate/internal/gateway"
	"passgate/internal/platform/metrics"
	"passgate/internal/platform/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Gateway       *gateway.Handler
	Catalog       *cataloghandler.Handler
	JWTSigningKey string
	Logger        *slog.Logger
}

// NewRouter wires all endpoints. Buyer routes require an actor identity;
// admin routes require an operator token.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Actor)
		deps.Gateway.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator(deps.JWTSigningKey, deps.Logger))
		deps.Catalog.Register(r)
	})

	return r
}
