package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestContactHandler_Toggle(t *testing.T) {
	mockSvc := new(MockContactService)
	handler := NewContactHandler(mockSvc)

	mockSvc.On("Toggle", mock.Anything, "5511999990000", false).
		Return(&service.ContactState{ContactID: "5511999990000", AIActive: false}, nil)

	w := httptest.NewRecorder()
	handler.Toggle(w, newRequest(http.MethodPatch, "/api/ai/contacts/5511999990000/toggle", `{"ai_active":false}`,
		map[string]string{"contactID": "5511999990000"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"wa_id":"5511999990000","ai_active":false}`, w.Body.String())
	mockSvc.AssertExpectations(t)
}

func TestContactHandler_Toggle_MissingFlag(t *testing.T) {
	mockSvc := new(MockContactService)
	handler := NewContactHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Toggle(w, newRequest(http.MethodPatch, "/api/ai/contacts/5511999990000/toggle", `{}`,
		map[string]string{"contactID": "5511999990000"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestContactHandler_Toggle_NotFound(t *testing.T) {
	mockSvc := new(MockContactService)
	handler := NewContactHandler(mockSvc)

	mockSvc.On("Toggle", mock.Anything, "000", true).Return(nil, domain.ErrContactNotFound)

	w := httptest.NewRecorder()
	handler.Toggle(w, newRequest(http.MethodPatch, "/api/ai/contacts/000/toggle", `{"ai_active":true}`,
		map[string]string{"contactID": "000"}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Contato não encontrado")
}
