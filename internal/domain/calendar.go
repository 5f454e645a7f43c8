package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// TimeSlot is a free interval, formatted HH:MM in the calendar's zone.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailableDate is a business day with at least one free slot.
type AvailableDate struct {
	Date       string `json:"date"`
	Weekday    string `json:"weekday"`
	SlotsCount int    `json:"slots_count"`
	FirstSlot  string `json:"first_slot"`
	LastSlot   string `json:"last_slot"`
}

// CalendarEvent is an event to be created on the scheduling calendar.
type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// CreatedEvent is the result of creating an event.
type CreatedEvent struct {
	ID       string `json:"id"`
	HTMLLink string `json:"event_link"`
}

// Booking describes a call booked for a lead.
type Booking struct {
	LeadName  string
	LeadPhone string
	Course    string
	Date      string
	Time      string
	Duration  time.Duration
}

// BookingEvent renders the calendar event for a booking starting at start.
func BookingEvent(b Booking, start time.Time) CalendarEvent {
	duration := b.Duration
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	return CalendarEvent{
		Summary:     fmt.Sprintf("📞 Ligação - %s (%s)", b.LeadName, b.Course),
		Description: fmt.Sprintf("Lead: %s\nTelefone: %s\nCurso: %s\nAgendado pela IA Nat", b.LeadName, b.LeadPhone, b.Course),
		Start:       start,
		End:         start.Add(duration),
	}
}

// ParseSlot parses a date and HH:MM time in loc.
func ParseSlot(date, clock string, loc *time.Location) (time.Time, error) {
	if _, err := time.ParseInLocation(DateLayout, date, loc); err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if _, err := time.ParseInLocation(TimeLayout, clock, loc); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
}
