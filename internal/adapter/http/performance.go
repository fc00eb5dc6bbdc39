package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skupilot/internal/core/domain"
)

// handlePerformance fetches a fresh multi-source aggregate for one
// campaign. It accepts optional `from` and `to` (RFC3339 timestamps)
// query parameters; without them the window defaults to the last 7
// days. Invalid parameters result in HTTP 400. A campaign with no
// reachable data source results in HTTP 502.
func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	campaign, err := h.campaigns.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("campaign lookup error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if campaign == nil {
		http.NotFound(w, r)
		return
	}

	var (
		q       = r.URL.Query()
		fromStr = q.Get("from")
		toStr   = q.Get("to")
		window  domain.Window
	)
	if fromStr != "" {
		window.Start, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			http.Error(w, "invalid 'from' timestamp", http.StatusBadRequest)
			return
		}
	} else {
		window.Start = time.Now().AddDate(0, 0, -7)
	}
	if toStr != "" {
		window.End, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			http.Error(w, "invalid 'to' timestamp", http.StatusBadRequest)
			return
		}
	} else {
		window.End = time.Now()
	}
	if !window.Start.Before(window.End) {
		http.Error(w, "'from' must be before 'to'", http.StatusBadRequest)
		return
	}

	res := h.executor.AggregatePerformanceData(r.Context(), platformCampaignID(campaign), campaign.Platform, campaign.AccountID, window)
	w.Header().Set("Content-Type", "application/json")
	if !res.Success {
		w.WriteHeader(http.StatusBadGateway)
	}
	if err = json.NewEncoder(w).Encode(res); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
