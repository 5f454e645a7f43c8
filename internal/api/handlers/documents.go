package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linsalefe/pos-plataform/internal/api"
	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/samber/lo"
)

// maxUploadMemory is how much of a multipart upload is buffered in memory
// before spilling to disk.
const maxUploadMemory = 4 << 20

type DocumentService interface {
	Upload(ctx context.Context, input service.UploadDocumentInput) (*service.UploadDocumentResult, error)
	List(ctx context.Context, channelID int64) ([]domain.DocumentSummary, error)
	Delete(ctx context.Context, channelID int64, title string) (int64, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type DocumentResponse struct {
	Title       string  `json:"title"`
	Chunks      int     `json:"chunks"`
	TotalTokens int     `json:"total_tokens"`
	CreatedAt   *string `json:"created_at"`
}

type UploadDocumentResponse struct {
	Title          string `json:"title"`
	ChunksSaved    int    `json:"chunks_saved"`
	TotalTokens    int    `json:"total_tokens"`
	ChunksReplaced int64  `json:"chunks_replaced,omitempty"`
	ArchiveKey     string `json:"archive_key,omitempty"`
}

type DeleteDocumentResponse struct {
	Status        string `json:"status"`
	ChunksRemoved int64  `json:"chunks_removed"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	channelID, ok := channelParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid channel_id")
		return
	}

	docs, err := h.svc.List(r.Context(), channelID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, lo.Map(docs, func(d domain.DocumentSummary, _ int) DocumentResponse {
		resp := DocumentResponse{Title: d.Title, Chunks: d.Chunks, TotalTokens: d.TotalTokens}
		if d.CreatedAt != nil {
			resp.CreatedAt = lo.ToPtr(d.CreatedAt.UTC().Format(time.RFC3339))
		}
		return resp
	}))
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	channelID, ok := channelParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid channel_id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	result, err := h.svc.Upload(r.Context(), service.UploadDocumentInput{
		ChannelID:   channelID,
		Title:       title,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, UploadDocumentResponse{
		Title:          result.Title,
		ChunksSaved:    result.ChunksSaved,
		TotalTokens:    result.TotalTokens,
		ChunksReplaced: result.ChunksReplaced,
		ArchiveKey:     result.ArchiveKey,
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	channelID, ok := channelParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid channel_id")
		return
	}
	title := chi.URLParam(r, "title")
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}
	if title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	removed, err := h.svc.Delete(r.Context(), channelID, title)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, DeleteDocumentResponse{Status: "deleted", ChunksRemoved: removed})
}
