package service

import (
	"context"
	"strings"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
	"github.com/samber/lo"
)

const (
	DefaultBookingDuration = 30 * time.Minute
	DefaultCalendarZone    = "America/Sao_Paulo"
	DefaultDaysAhead       = 5
	MaxDaysAhead           = 30
)

// CalendarService exposes the scheduling calendar of the sales team.
type CalendarService struct {
	scheduler  Scheduler
	calendarID string
	loc        *time.Location
}

// NewCalendarService creates a CalendarService. loc defaults to
// America/Sao_Paulo when nil.
func NewCalendarService(scheduler Scheduler, calendarID string, loc *time.Location) *CalendarService {
	if loc == nil {
		loc = loadLocation(DefaultCalendarZone)
	}
	return &CalendarService{scheduler: scheduler, calendarID: calendarID, loc: loc}
}

func (s *CalendarService) enabled() bool {
	return s != nil && s.scheduler != nil && s.calendarID != ""
}

// AvailableDates lists the next business days with free slots.
func (s *CalendarService) AvailableDates(ctx context.Context, daysAhead int) ([]domain.AvailableDate, error) {
	if !s.enabled() {
		return nil, domain.ErrCalendarNotEnabled
	}
	if daysAhead <= 0 {
		daysAhead = DefaultDaysAhead
	}
	daysAhead = min(daysAhead, MaxDaysAhead)

	ctx, span := telemetry.StartSpan(ctx, "CalendarService.AvailableDates", telemetry.SpanAttributes{Operation: "available_dates"})
	defer span.End()

	dates, err := s.scheduler.AvailableDates(ctx, s.calendarID, daysAhead)
	if err != nil {
		span.SetError(err)
		return nil, upstreamCalendarError("failed to list available dates", err)
	}
	return dates, nil
}

// AvailableSlots lists the free slots of one day.
func (s *CalendarService) AvailableSlots(ctx context.Context, date string) ([]domain.TimeSlot, error) {
	if !s.enabled() {
		return nil, domain.ErrCalendarNotEnabled
	}
	if _, err := time.ParseInLocation(domain.DateLayout, date, s.loc); err != nil {
		return nil, domain.ErrInvalidDate
	}

	ctx, span := telemetry.StartSpan(ctx, "CalendarService.AvailableSlots", telemetry.SpanAttributes{Operation: "available_slots"})
	defer span.End()

	slots, err := s.scheduler.AvailableSlots(ctx, s.calendarID, date)
	if err != nil {
		span.SetError(err)
		return nil, upstreamCalendarError("failed to list available slots", err)
	}
	return slots, nil
}

// Book creates the call event after checking that the slot is still free.
func (s *CalendarService) Book(ctx context.Context, b domain.Booking) (*domain.CreatedEvent, error) {
	if !s.enabled() {
		return nil, domain.ErrCalendarNotEnabled
	}
	if strings.TrimSpace(b.LeadName) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "lead_name is required")
	}
	start, err := domain.ParseSlot(b.Date, b.Time, s.loc)
	if err != nil {
		return nil, err
	}
	if b.Duration <= 0 {
		b.Duration = DefaultBookingDuration
	}

	ctx, span := telemetry.StartSpan(ctx, "CalendarService.Book", telemetry.SpanAttributes{Operation: "book"})
	defer span.End()

	slots, err := s.scheduler.AvailableSlots(ctx, s.calendarID, b.Date)
	if err != nil {
		span.SetError(err)
		return nil, upstreamCalendarError("failed to check availability", err)
	}
	clock := start.Format(domain.TimeLayout)
	if !lo.ContainsBy(slots, func(slot domain.TimeSlot) bool { return slot.Start == clock }) {
		return nil, domain.ErrSlotUnavailable
	}

	event, err := s.scheduler.CreateEvent(ctx, s.calendarID, domain.BookingEvent(b, start))
	if err != nil {
		span.SetError(err)
		return nil, upstreamCalendarError("failed to create event", err)
	}
	return event, nil
}

func upstreamCalendarError(message string, err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, message, err)
}

// loadLocation falls back to a fixed UTC-3 offset when the zone database is
// unavailable. Sao Paulo has not observed daylight saving since 2019.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}
