package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skupilot/internal/core/port"
)

// Handler is the inbound HTTP adapter. It exposes the decision engine
// and the fallback orchestrator for on-demand invocation; the scheduler
// drives the same use cases on its own cadence. Routes are registered
// on a chi.Router for convenient method handling.
type Handler struct {
	engine    port.IntelligenceUseCase
	executor  port.Orchestrator
	campaigns port.CampaignRepository
	logger    *slog.Logger
	router    chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(engine port.IntelligenceUseCase, executor port.Orchestrator, campaigns port.CampaignRepository, logger *slog.Logger) *Handler {
	h := &Handler{engine: engine, executor: executor, campaigns: campaigns, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/skus/{sku_id}/decisions", h.handleRunDecisions)
		r.Post("/campaigns", h.handleCreateCampaign)
		r.Post("/campaigns/{id}/budget", h.handleBudgetChange)
		r.Post("/campaigns/{id}/pause", h.handlePauseCampaign)
		r.Get("/campaigns/{id}/performance", h.handlePerformance)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
