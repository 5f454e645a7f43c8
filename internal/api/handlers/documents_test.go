package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/documents/2", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("channelID", "2")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentHandler_List(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	created := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	mockSvc.On("List", mock.Anything, int64(2)).Return([]domain.DocumentSummary{
		{Title: "Preços", Chunks: 3, TotalTokens: 1200, CreatedAt: &created},
		{Title: "Legado", Chunks: 1, TotalTokens: 80},
	}, nil)

	w := httptest.NewRecorder()
	handler.List(w, newRequest(http.MethodGet, "/api/ai/documents/2", "", map[string]string{"channelID": "2"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"title":"Preços","chunks":3,"total_tokens":1200,"created_at":"2026-03-02T12:00:00Z"},
		{"title":"Legado","chunks":1,"total_tokens":80,"created_at":null}
	]`, w.Body.String())
}

func TestDocumentHandler_List_Empty(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("List", mock.Anything, int64(2)).Return([]domain.DocumentSummary{}, nil)

	w := httptest.NewRecorder()
	handler.List(w, newRequest(http.MethodGet, "/api/ai/documents/2", "", map[string]string{"channelID": "2"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestDocumentHandler_Upload(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadDocumentInput) bool {
		return in.ChannelID == 2 && in.Title == "Preços" && in.Filename == "precos.txt" &&
			string(in.Content) == "Mensalidade R$ 499"
	})).Return(&service.UploadDocumentResult{Title: "Preços", ChunksSaved: 1, TotalTokens: 9}, nil)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, map[string]string{"title": " Preços "}, "precos.txt", "Mensalidade R$ 499"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp UploadDocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Preços", resp.Title)
	assert.Equal(t, 1, resp.ChunksSaved)
	assert.Equal(t, 9, resp.TotalTokens)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Upload_MissingTitle(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, nil, "precos.txt", "x"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Upload_MissingFile(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, map[string]string{"title": "Preços"}, "", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Upload_ServiceError(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyDocument)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, map[string]string{"title": "Vazio"}, "vazio.txt", "   "))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Delete(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, int64(2), "Preços e Prazos").Return(int64(4), nil)

	w := httptest.NewRecorder()
	req := newRequest(http.MethodDelete, "/api/ai/documents/2/x", "", map[string]string{
		"channelID": "2",
		"title":     "Pre%C3%A7os%20e%20Prazos",
	})
	handler.Delete(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"deleted","chunks_removed":4}`, w.Body.String())
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Delete_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, int64(2), "Nada").Return(int64(0), domain.ErrDocumentNotFound)

	w := httptest.NewRecorder()
	handler.Delete(w, newRequest(http.MethodDelete, "/api/ai/documents/2/Nada", "", map[string]string{
		"channelID": "2",
		"title":     "Nada",
	}))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
