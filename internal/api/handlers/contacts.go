package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linsalefe/pos-plataform/internal/api"
	"github.com/linsalefe/pos-plataform/internal/service"
)

type ContactService interface {
	Toggle(ctx context.Context, contactID string, active bool) (*service.ContactState, error)
}

type ContactHandler struct {
	svc ContactService
}

func NewContactHandler(svc ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

type ToggleAIRequest struct {
	AIActive *bool `json:"ai_active"`
}

type ToggleAIResponse struct {
	WAID     string `json:"wa_id"`
	AIActive bool   `json:"ai_active"`
}

func (h *ContactHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		api.Error(w, http.StatusBadRequest, "contact id is required")
		return
	}

	var req ToggleAIRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AIActive == nil {
		api.Error(w, http.StatusBadRequest, "ai_active is required")
		return
	}

	state, err := h.svc.Toggle(r.Context(), contactID, *req.AIActive)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, ToggleAIResponse{WAID: state.ContactID, AIActive: state.AIActive})
}
