package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const testCalendar = "comercial@example.com"

var saoPaulo = time.FixedZone("-03", -3*60*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, saoPaulo)
}

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, saoPaulo)
}

type fakeCalendar struct {
	busy      []map[string]string
	freebusy  []gcal.FreeBusyRequest
	inserted  []gcal.Event
	failQuery bool
}

func newTestClient(t *testing.T, fake *fakeCalendar) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/freeBusy", func(w http.ResponseWriter, r *http.Request) {
		if fake.failQuery {
			http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
			return
		}
		var req gcal.FreeBusyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		fake.freebusy = append(fake.freebusy, req)
		busy := fake.busy
		if busy == nil {
			busy = []map[string]string{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"kind":      "calendar#freeBusy",
			"calendars": map[string]any{req.Items[0].Id: map[string]any{"busy": busy}},
		})
	})
	mux.HandleFunc("/calendars/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var ev gcal.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		fake.inserted = append(fake.inserted, ev)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "evt-1",
			"htmlLink": "https://calendar.google.com/event?eid=evt-1",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc, err := gcal.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewWithService(svc, saoPaulo)
}

func TestFreeSlots_EmptyDay(t *testing.T) {
	slots := freeSlots(day(2026, time.March, 2), nil)

	require.Len(t, slots, 20)
	assert.Equal(t, domain.TimeSlot{Start: "08:00", End: "08:30"}, slots[0])
	assert.Equal(t, domain.TimeSlot{Start: "17:30", End: "18:00"}, slots[19])
}

func TestFreeSlots_DropsOverlappingSlots(t *testing.T) {
	busy := []interval{
		{start: at(2026, time.March, 2, 10, 15), end: at(2026, time.March, 2, 10, 45)},
		{start: at(2026, time.March, 2, 7, 0), end: at(2026, time.March, 2, 8, 30)},
		{start: at(2026, time.March, 2, 17, 30), end: at(2026, time.March, 2, 19, 0)},
	}

	slots := freeSlots(day(2026, time.March, 2), busy)

	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	assert.Len(t, slots, 16)
	assert.Equal(t, "08:30", starts[0], "a busy block ending at 08:30 leaves 08:30 free")
	assert.NotContains(t, starts, "10:00")
	assert.NotContains(t, starts, "10:30")
	assert.Contains(t, starts, "11:00")
	assert.NotContains(t, starts, "17:30")
}

func TestFreeSlots_BusyInUTC(t *testing.T) {
	busy := []interval{{
		start: time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC),
		end:   time.Date(2026, time.March, 2, 13, 0, 0, 0, time.UTC),
	}}

	slots := freeSlots(day(2026, time.March, 2), busy)

	assert.Len(t, slots, 18)
	for _, s := range slots {
		assert.NotEqual(t, "09:00", s.Start)
		assert.NotEqual(t, "09:30", s.Start)
	}
}

func TestCandidateDays_SkipsWeekends(t *testing.T) {
	days := candidateDays(day(2026, time.February, 27), 4)

	require.Len(t, days, 2)
	assert.Equal(t, "2026-03-02", days[0].Format(domain.DateLayout))
	assert.Equal(t, "2026-03-03", days[1].Format(domain.DateLayout))
}

func TestClient_AvailableSlots(t *testing.T) {
	fake := &fakeCalendar{busy: []map[string]string{
		{"start": "2026-03-02T12:00:00Z", "end": "2026-03-02T13:00:00Z"},
	}}
	client := newTestClient(t, fake)

	slots, err := client.AvailableSlots(context.Background(), testCalendar, "2026-03-02")

	require.NoError(t, err)
	assert.Len(t, slots, 18)
	require.Len(t, fake.freebusy, 1)
	assert.Equal(t, "2026-03-02T08:00:00-03:00", fake.freebusy[0].TimeMin)
	assert.Equal(t, "2026-03-02T18:00:00-03:00", fake.freebusy[0].TimeMax)
	assert.Equal(t, testCalendar, fake.freebusy[0].Items[0].Id)
}

func TestClient_AvailableSlotsInvalidDate(t *testing.T) {
	client := newTestClient(t, &fakeCalendar{})

	_, err := client.AvailableSlots(context.Background(), testCalendar, "02/03/2026")

	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestClient_AvailableSlotsUpstreamError(t *testing.T) {
	client := newTestClient(t, &fakeCalendar{failQuery: true})

	_, err := client.AvailableSlots(context.Background(), testCalendar, "2026-03-02")

	assert.Error(t, err)
}

func TestClient_AvailableDates(t *testing.T) {
	fake := &fakeCalendar{busy: []map[string]string{
		{"start": "2026-03-03T11:00:00Z", "end": "2026-03-03T21:00:00Z"},
		{"start": "2026-03-04T20:30:00Z", "end": "2026-03-04T21:00:00Z"},
	}}
	client := newTestClient(t, fake)
	client.now = func() time.Time { return at(2026, time.February, 27, 10, 0) }

	dates, err := client.AvailableDates(context.Background(), testCalendar, 3)

	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, domain.AvailableDate{
		Date: "2026-03-02", Weekday: "Segunda", SlotsCount: 20, FirstSlot: "08:00", LastSlot: "17:30",
	}, dates[0])
	assert.Equal(t, "2026-03-04", dates[1].Date, "fully booked Tuesday is skipped")
	assert.Equal(t, "Quarta", dates[1].Weekday)
	assert.Equal(t, 19, dates[1].SlotsCount)
	assert.Equal(t, "17:00", dates[1].LastSlot)
	assert.Equal(t, "2026-03-05", dates[2].Date)
	assert.Equal(t, "Quinta", dates[2].Weekday)

	require.Len(t, fake.freebusy, 1, "one query covers the whole range")
	assert.Equal(t, "2026-03-02T08:00:00-03:00", fake.freebusy[0].TimeMin)
	assert.Equal(t, "2026-03-09T18:00:00-03:00", fake.freebusy[0].TimeMax)
}

func TestClient_CreateEvent(t *testing.T) {
	fake := &fakeCalendar{}
	client := newTestClient(t, fake)
	start := at(2026, time.March, 2, 14, 0)

	created, err := client.CreateEvent(context.Background(), testCalendar, domain.BookingEvent(domain.Booking{
		LeadName:  "Maria Souza",
		LeadPhone: "5511999990000",
		Course:    "Saúde Mental",
		Duration:  30 * time.Minute,
	}, start))

	require.NoError(t, err)
	assert.Equal(t, "evt-1", created.ID)
	assert.Equal(t, "https://calendar.google.com/event?eid=evt-1", created.HTMLLink)
	require.Len(t, fake.inserted, 1)
	assert.Equal(t, "📞 Ligação - Maria Souza (Saúde Mental)", fake.inserted[0].Summary)
	assert.Equal(t, "2026-03-02T14:00:00-03:00", fake.inserted[0].Start.DateTime)
	assert.Equal(t, "2026-03-02T14:30:00-03:00", fake.inserted[0].End.DateTime)
}
