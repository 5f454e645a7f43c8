package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/linsalefe/pos-plataform/internal/api"
	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/samber/lo"
)

type ReplyService interface {
	Reply(ctx context.Context, in service.ReplyInput) (*service.ReplyResult, error)
	TestChat(ctx context.Context, in service.TestChatInput) (*service.TestChatResult, error)
}

type ChatHandler struct {
	svc              ReplyService
	defaultChannelID int64
}

// NewChatHandler creates a ChatHandler. Test chats without a channel use
// defaultChannelID.
func NewChatHandler(svc ReplyService, defaultChannelID int64) *ChatHandler {
	return &ChatHandler{svc: svc, defaultChannelID: defaultChannelID}
}

type TestChatRequest struct {
	Message             string        `json:"message"`
	ChannelID           int64         `json:"channel_id"`
	ConversationHistory []domain.Turn `json:"conversation_history"`
	LeadName            string        `json:"lead_name"`
	LeadCourse          string        `json:"lead_course"`
}

type TestChatResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	RAGDocs  int    `json:"rag_docs"`
	Outcome  string `json:"outcome"`
}

type ReplyRequest struct {
	ContactID string `json:"contact_id"`
	ChannelID int64  `json:"channel_id"`
	Message   string `json:"message"`
	// Persist defaults to true.
	Persist *bool `json:"persist"`
}

type KnowledgeRef struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

type ReplyResponse struct {
	Response  string         `json:"response"`
	Model     string         `json:"model,omitempty"`
	Outcome   string         `json:"outcome"`
	Knowledge []KnowledgeRef `json:"knowledge"`
}

func (h *ChatHandler) TestChat(w http.ResponseWriter, r *http.Request) {
	var req TestChatRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	for _, turn := range req.ConversationHistory {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			api.Error(w, http.StatusBadRequest, "conversation_history roles must be user or assistant")
			return
		}
	}
	if req.ChannelID <= 0 {
		req.ChannelID = h.defaultChannelID
	}

	result, err := h.svc.TestChat(r.Context(), service.TestChatInput{
		ChannelID:  req.ChannelID,
		Message:    req.Message,
		History:    req.ConversationHistory,
		LeadName:   req.LeadName,
		LeadCourse: req.LeadCourse,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, TestChatResponse{
		Response: result.Text,
		Model:    result.Model,
		RAGDocs:  result.RAGDocs,
		Outcome:  string(result.Outcome),
	})
}

func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContactID == "" {
		api.Error(w, http.StatusBadRequest, "contact_id is required")
		return
	}
	if req.ChannelID <= 0 {
		api.Error(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	result, err := h.svc.Reply(r.Context(), service.ReplyInput{
		ContactID: req.ContactID,
		ChannelID: req.ChannelID,
		Message:   req.Message,
		Persist:   req.Persist == nil || *req.Persist,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, ReplyResponse{
		Response: result.Text,
		Model:    result.Model,
		Outcome:  string(result.Outcome),
		Knowledge: lo.Map(result.KnowledgeDocs, func(c domain.ScoredChunk, _ int) KnowledgeRef {
			return KnowledgeRef{Title: c.Title, Score: c.Score}
		}),
	})
}
