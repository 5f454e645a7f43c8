package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCalendarHandler_AvailableDates(t *testing.T) {
	mockSvc := new(MockCalendarService)
	handler := NewCalendarHandler(mockSvc, "Victória Amorim")

	mockSvc.On("AvailableDates", mock.Anything, 3).Return([]domain.AvailableDate{
		{Date: "2026-03-02", Weekday: "Segunda", SlotsCount: 20, FirstSlot: "08:00", LastSlot: "17:30"},
	}, nil)

	w := httptest.NewRecorder()
	handler.AvailableDates(w, newRequest(http.MethodGet, "/api/calendar/available-dates?days=3", "", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"date":"2026-03-02","weekday":"Segunda","slots_count":20,"first_slot":"08:00","last_slot":"17:30"}]`, w.Body.String())
	mockSvc.AssertExpectations(t)
}

func TestCalendarHandler_AvailableDates_DefaultDays(t *testing.T) {
	mockSvc := new(MockCalendarService)
	handler := NewCalendarHandler(mockSvc, "Victória Amorim")

	mockSvc.On("AvailableDates", mock.Anything, 0).Return([]domain.AvailableDate{}, nil)

	w := httptest.NewRecorder()
	handler.AvailableDates(w, newRequest(http.MethodGet, "/api/calendar/available-dates", "", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCalendarHandler_AvailableDates_InvalidDays(t *testing.T) {
	mockSvc := new(MockCalendarService)
	handler := NewCalendarHandler(mockSvc, "Victória Amorim")

	w := httptest.NewRecorder()
	handler.AvailableDates(w, newRequest(http.MethodGet, "/api/calendar/available-dates?days=-1", "", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandler_AvailableSlots_NotConfigured(t *testing.T) {
	mockSvc := new(MockCalendarService)
	handler := NewCalendarHandler(mockSvc, "Victória Amorim")

	mockSvc.On("AvailableSlots", mock.Anything, "2026-03-02").Return(nil, domain.ErrCalendarNotEnabled)

	w := httptest.NewRecorder()
	handler.AvailableSlots(w, newRequest(http.MethodGet, "/api/calendar/available-slots/2026-03-02", "",
		map[string]string{"date": "2026-03-02"}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCalendarHandler_Book(t *testing.T) {
	mockSvc := new(MockCalendarService)
	handler := NewCalendarHandler(mockSvc, "Victória Amorim")

	mockSvc.On("Book", mock.Anything, domain.Booking{
		LeadName:  "Maria Souza",
		LeadPhone: "5511999990000",
		Course:    "MBA",
		Date:      "2026-03-02",
		Time:      "10:00",
		Duration:  30 * time.Minute,
	}).Return(&domain.CreatedEvent{ID: "evt1", HTMLLink: "https://calendar.google.com/event?eid=evt1"}, nil)

	body := `{"lead_name":"Maria Souza","lead_phone":"5511999990000","course":"MBA","date":"2026-03-02","time":"10:00","duration":30}`
	w := httptest.NewRecorder()
	handler.Book(w, newRequest(http.MethodPost, "/api/calendar/book", body, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"consultant": "Victória Amorim",
		"date": "2026-03-02",
		"time": "10:00",
		"event_link": "https://calendar.google.com/event?eid=evt1"
	}`, w.Body.String())
	mockSvc.AssertExpectations(t)
}

func TestCalendarHandler_Book_SlotTaken(t *testing.T) {
	mockSvc := new(MockCalendarService)
	handler := NewCalendarHandler(mockSvc, "Victória Amorim")

	mockSvc.On("Book", mock.Anything, mock.Anything).Return(nil, domain.ErrSlotUnavailable)

	body := `{"lead_name":"Maria Souza","date":"2026-03-02","time":"10:00"}`
	w := httptest.NewRecorder()
	handler.Book(w, newRequest(http.MethodPost, "/api/calendar/book", body, nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Horário não disponível")
}
