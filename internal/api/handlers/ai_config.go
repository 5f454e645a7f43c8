package handlers

import (
	"context"
	"net/http"

	"github.com/linsalefe/pos-plataform/internal/api"
	"github.com/linsalefe/pos-plataform/internal/domain"
)

type AIConfigService interface {
	Get(ctx context.Context, channelID int64) (*domain.AIConfig, error)
	Update(ctx context.Context, channelID int64, patch domain.AIConfigPatch) (*domain.AIConfig, error)
}

type AIConfigHandler struct {
	svc AIConfigService
}

func NewAIConfigHandler(svc AIConfigService) *AIConfigHandler {
	return &AIConfigHandler{svc: svc}
}

type AIConfigResponse struct {
	ID           int64  `json:"id,omitempty"`
	ChannelID    int64  `json:"channel_id"`
	IsEnabled    bool   `json:"is_enabled"`
	SystemPrompt string `json:"system_prompt"`
	Model        string `json:"model"`
	Temperature  string `json:"temperature"`
	MaxTokens    int    `json:"max_tokens"`
}

// UpdateAIConfigRequest is a partial update. Temperature stays textual on the
// wire and is validated by the service.
type UpdateAIConfigRequest struct {
	IsEnabled    *bool   `json:"is_enabled"`
	SystemPrompt *string `json:"system_prompt"`
	Model        *string `json:"model"`
	Temperature  *string `json:"temperature"`
	MaxTokens    *int    `json:"max_tokens"`
}

func aiConfigToResponse(c *domain.AIConfig) *AIConfigResponse {
	return &AIConfigResponse{
		ID:           c.ID,
		ChannelID:    c.ChannelID,
		IsEnabled:    c.IsEnabled,
		SystemPrompt: c.SystemPrompt,
		Model:        c.EffectiveModel(),
		Temperature:  domain.FormatTemperature(c.Temperature),
		MaxTokens:    c.EffectiveMaxTokens(),
	}
}

func (h *AIConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	channelID, ok := channelParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid channel_id")
		return
	}

	cfg, err := h.svc.Get(r.Context(), channelID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, aiConfigToResponse(cfg))
}

func (h *AIConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	channelID, ok := channelParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid channel_id")
		return
	}

	var req UpdateAIConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.svc.Update(r.Context(), channelID, domain.AIConfigPatch{
		IsEnabled:    req.IsEnabled,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
