package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linsalefe/pos-plataform/internal/api"
	"github.com/linsalefe/pos-plataform/internal/domain"
)

type CalendarService interface {
	AvailableDates(ctx context.Context, daysAhead int) ([]domain.AvailableDate, error)
	AvailableSlots(ctx context.Context, date string) ([]domain.TimeSlot, error)
	Book(ctx context.Context, b domain.Booking) (*domain.CreatedEvent, error)
}

type CalendarHandler struct {
	svc        CalendarService
	consultant string
}

// NewCalendarHandler creates a CalendarHandler. consultant is the name
// reported on bookings.
func NewCalendarHandler(svc CalendarService, consultant string) *CalendarHandler {
	return &CalendarHandler{svc: svc, consultant: consultant}
}

type BookRequest struct {
	LeadName  string `json:"lead_name"`
	LeadPhone string `json:"lead_phone"`
	Course    string `json:"course"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	// Duration in minutes, 30 when omitted.
	Duration int `json:"duration"`
}

type BookResponse struct {
	Success    bool   `json:"success"`
	Consultant string `json:"consultant"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	EventLink  string `json:"event_link"`
}

func (h *CalendarHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			api.Error(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	dates, err := h.svc.AvailableDates(r.Context(), days)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, dates)
}

func (h *CalendarHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.svc.AvailableSlots(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, slots)
}

func (h *CalendarHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Duration < 0 {
		api.Error(w, http.StatusBadRequest, "duration must be positive")
		return
	}

	event, err := h.svc.Book(r.Context(), domain.Booking{
		LeadName:  req.LeadName,
		LeadPhone: req.LeadPhone,
		Course:    req.Course,
		Date:      req.Date,
		Time:      req.Time,
		Duration:  time.Duration(req.Duration) * time.Minute,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, BookResponse{
		Success:    true,
		Consultant: h.consultant,
		Date:       req.Date,
		Time:       req.Time,
		EventLink:  event.HTMLLink,
	})
}
