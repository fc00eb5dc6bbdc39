package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skupilot/internal/core/domain"
)

type budgetChangeReq struct {
	NewBudget float64 `json:"new_budget"`
}

// handleBudgetChange pushes a new budget for a campaign through the
// fallback orchestrator and, when the change is accepted externally,
// persists it. The result reports which path accepted the change; a
// rejected change comes back as HTTP 200 with success=false so callers
// can distinguish "nobody took it" from transport failures.
func (h *Handler) handleBudgetChange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req budgetChangeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.NewBudget <= 0 {
		http.Error(w, "new_budget must be positive", http.StatusBadRequest)
		return
	}

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

	res := h.executor.ExecuteBudgetChange(r.Context(), platformCampaignID(campaign), req.NewBudget, campaign.Platform, campaign.AccountID)
	if res.Success {
		if _, err = h.campaigns.UpdateBudget(r.Context(), campaign.ID, req.NewBudget); err != nil {
			h.logger.Error("budget persistence error", slog.Any("error", err))
		}
	}
	writeJSON(w, h.logger, res)
}

type createCampaignReq struct {
	SKUID      string  `json:"sku_id"`
	AccountID  string  `json:"account_id"`
	Platform   string  `json:"platform"`
	Name       string  `json:"name"`
	Objective  string  `json:"objective"`
	Budget     float64 `json:"budget"`
	BudgetType string  `json:"budget_type"`
}

// handleCreateCampaign creates a campaign on the first capable path.
// New campaigns always start paused on the external platform; activation
// is a separate, deliberate step.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Platform == "" {
		http.Error(w, "name and platform are required", http.StatusBadRequest)
		return
	}

	res := h.executor.CreateCampaignWithFallback(r.Context(), domain.CampaignDraft{
		SKUID:      req.SKUID,
		AccountID:  req.AccountID,
		Platform:   req.Platform,
		Name:       req.Name,
		Objective:  req.Objective,
		Budget:     req.Budget,
		BudgetType: req.BudgetType,
	})
	if res.Success {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(res); err != nil {
			h.logger.Error("encode response error", slog.Any("error", err))
		}
		return
	}
	writeJSON(w, h.logger, res)
}

// handlePauseCampaign pauses a campaign through the first path that
// accepts it and records the status transition.
func (h *Handler) handlePauseCampaign(w http.ResponseWriter, r *http.Request) {
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

	res := h.executor.PauseCampaignWithFallback(r.Context(), platformCampaignID(campaign), campaign.Platform, campaign.AccountID)
	if res.Success {
		if _, err = h.campaigns.UpdateStatus(r.Context(), campaign.ID, domain.CampaignStatusPaused); err != nil {
			h.logger.Error("status persistence error", slog.Any("error", err))
		}
	}
	writeJSON(w, h.logger, res)
}

// platformCampaignID picks the platform-side campaign id, falling back
// to the internal id for campaigns created before external sync.
func platformCampaignID(c *domain.Campaign) string {
	if c.ExternalID != "" {
		return c.ExternalID
	}
	return c.ID
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response error", slog.Any("error", err))
	}
}
