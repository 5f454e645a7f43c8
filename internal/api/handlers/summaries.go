package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linsalefe/pos-plataform/internal/api"
)

type SummaryService interface {
	Summarize(ctx context.Context, contactID string) (string, bool, error)
	Save(ctx context.Context, contactID string, channelID int64, summary string) error
}

type SummaryHandler struct {
	svc SummaryService
}

func NewSummaryHandler(svc SummaryService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// SummarizeRequest is optional. A channel id stores the summary on the
// contact's card for that channel.
type SummarizeRequest struct {
	ChannelID int64 `json:"channel_id"`
}

type SummaryResponse struct {
	ContactID string  `json:"contact_id"`
	Summary   *string `json:"summary"`
	Stored    bool    `json:"stored"`
}

func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	if contactID == "" {
		api.Error(w, http.StatusBadRequest, "contact id is required")
		return
	}

	var req SummarizeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, ok, err := h.svc.Summarize(r.Context(), contactID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	resp := SummaryResponse{ContactID: contactID}
	if !ok {
		api.JSON(w, http.StatusOK, resp)
		return
	}
	resp.Summary = &summary

	if req.ChannelID > 0 {
		if err := h.svc.Save(r.Context(), contactID, req.ChannelID, summary); err != nil {
			api.HandleError(w, r, err)
			return
		}
		resp.Stored = true
	}

	api.JSON(w, http.StatusOK, resp)
}
