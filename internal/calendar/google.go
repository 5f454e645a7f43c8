// Package calendar reads availability from and books calls on a Google
// Calendar shared with the sales team.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	openingHour  = 8
	closingHour  = 18
	slotDuration = 30 * time.Minute
	// Weekends are skipped, so the scan looks one extra week ahead.
	scanSlack = 7
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Segunda",
	time.Tuesday:   "Terça",
	time.Wednesday: "Quarta",
	time.Thursday:  "Quinta",
	time.Friday:    "Sexta",
}

// Client talks to the Google Calendar v3 API.
type Client struct {
	svc *gcal.Service
	loc *time.Location
	now func() time.Time
}

// New creates a Client authenticated with a service account credentials file.
func New(ctx context.Context, credentialsFile string, loc *time.Location) (*Client, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return NewWithService(svc, loc), nil
}

// NewWithService wraps an existing service. loc is the zone business hours
// are expressed in.
func NewWithService(svc *gcal.Service, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{svc: svc, loc: loc, now: time.Now}
}

type interval struct {
	start time.Time
	end   time.Time
}

// AvailableSlots returns the free 30 minute slots between 08:00 and 18:00 of
// date.
func (c *Client) AvailableSlots(ctx context.Context, calendarID, date string) ([]domain.TimeSlot, error) {
	day, err := time.ParseInLocation(domain.DateLayout, date, c.loc)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	from, to := businessHours(day)
	busy, err := c.busy(ctx, calendarID, from, to)
	if err != nil {
		return nil, err
	}
	return freeSlots(day, busy), nil
}

// AvailableDates returns up to daysAhead upcoming weekdays, starting
// tomorrow, that still have a free slot. A single free/busy query covers the
// whole range.
func (c *Client) AvailableDates(ctx context.Context, calendarID string, daysAhead int) ([]domain.AvailableDate, error) {
	if daysAhead <= 0 {
		return []domain.AvailableDate{}, nil
	}
	today := c.now().In(c.loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, c.loc)
	days := candidateDays(today, daysAhead+scanSlack)
	if len(days) == 0 {
		return []domain.AvailableDate{}, nil
	}

	from, _ := businessHours(days[0])
	_, to := businessHours(days[len(days)-1])
	busy, err := c.busy(ctx, calendarID, from, to)
	if err != nil {
		return nil, err
	}
	return availableDates(days, busy, daysAhead), nil
}

// CreateEvent inserts event in the calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event domain.CalendarEvent) (*domain.CreatedEvent, error) {
	created, err := c.svc.Events.Insert(calendarID, &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return &domain.CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

func (c *Client) busy(ctx context.Context, calendarID string, from, to time.Time) ([]interval, error) {
	resp, err := c.svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin:  from.Format(time.RFC3339),
		TimeMax:  to.Format(time.RFC3339),
		TimeZone: c.loc.String(),
		Items:    []*gcal.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query free/busy: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %s missing from free/busy response", calendarID)
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("free/busy for %s: %s", calendarID, cal.Errors[0].Reason)
	}

	out := make([]interval, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", p.End, err)
		}
		out = append(out, interval{start: start, end: end})
	}
	return out, nil
}

func businessHours(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	return time.Date(y, m, d, openingHour, 0, 0, 0, loc), time.Date(y, m, d, closingHour, 0, 0, 0, loc)
}

// candidateDays lists the weekdays among the n days after today.
func candidateDays(today time.Time, n int) []time.Time {
	var days []time.Time
	for i := 1; i <= n; i++ {
		day := today.AddDate(0, 0, i)
		if _, ok := weekdayNames[day.Weekday()]; ok {
			days = append(days, day)
		}
	}
	return days
}

// freeSlots splits the business hours of day into slots and drops every
// slot overlapping a busy interval.
func freeSlots(day time.Time, busy []interval) []domain.TimeSlot {
	open, closing := businessHours(day)
	slots := []domain.TimeSlot{}
	for start := open; !start.Add(slotDuration).After(closing); start = start.Add(slotDuration) {
		end := start.Add(slotDuration)
		if overlapsAny(start, end, busy) {
			continue
		}
		slots = append(slots, domain.TimeSlot{
			Start: start.Format(domain.TimeLayout),
			End:   end.Format(domain.TimeLayout),
		})
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []interval) bool {
	for _, b := range busy {
		if start.Before(b.end) && end.After(b.start) {
			return true
		}
	}
	return false
}

func availableDates(days []time.Time, busy []interval, limit int) []domain.AvailableDate {
	out := []domain.AvailableDate{}
	for _, day := range days {
		slots := freeSlots(day, busy)
		if len(slots) == 0 {
			continue
		}
		out = append(out, domain.AvailableDate{
			Date:       day.Format(domain.DateLayout),
			Weekday:    weekdayNames[day.Weekday()],
			SlotsCount: len(slots),
			FirstSlot:  slots[0].Start,
			LastSlot:   slots[len(slots)-1].Start,
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}
