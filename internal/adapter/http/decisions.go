package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleRunDecisions triggers one decision cycle for a SKU outside the
// scheduler cadence. It expects a {sku_id} path parameter bound by the
// router. The outcome is returned as JSON whether or not any decision
// was executed; an unknown SKU results in HTTP 404.
func (h *Handler) handleRunDecisions(w http.ResponseWriter, r *http.Request) {
	skuID := chi.URLParam(r, "sku_id")
	if skuID == "" {
		http.Error(w, "missing sku_id", http.StatusBadRequest)
		return
	}
	outcome := h.engine.MakeHourlyDecisions(r.Context(), skuID)
	if !outcome.Success && outcome.Message == "SKU not found" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
