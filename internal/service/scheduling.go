package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
)

const (
	schedulingMaxTokens = 100
	defaultLeadName     = "Lead"
	defaultLeadCourse   = "Não informado"
)

const schedulingPrompt = `Analise a resposta do assistente. Se ela confirma um agendamento de reunião/ligação, extraia a data e hora.
O ano atual é %d. Responda APENAS com JSON, sem markdown:
{"agendado": true, "data": "YYYY-MM-DD", "hora": "HH:MM"}
ou
{"agendado": false}`

// Booker books a call on the scheduling calendar.
type Booker interface {
	Book(ctx context.Context, b domain.Booking) (*domain.CreatedEvent, error)
}

// SchedulingDetector asks the model whether a reply confirms a call and
// books it when it does.
type SchedulingDetector struct {
	backend CompletionBackend
	booker  Booker
	model   string
	now     func() time.Time
}

func NewSchedulingDetector(backend CompletionBackend, booker Booker, model string) *SchedulingDetector {
	if model == "" {
		model = domain.DefaultFallbackModel
	}
	return &SchedulingDetector{
		backend: backend,
		booker:  booker,
		model:   model,
		now:     time.Now,
	}
}

// schedulingVerdict is the JSON the classification call must return.
type schedulingVerdict struct {
	Scheduled bool   `json:"agendado"`
	Date      string `json:"data"`
	Time      string `json:"hora"`
}

// DetectAndBook classifies reply and, when it confirms a call, books it for
// the lead. It returns nil when nothing was booked.
func (d *SchedulingDetector) DetectAndBook(ctx context.Context, reply string, lead domain.LeadContext, phone string) (*domain.CreatedEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "SchedulingDetector.DetectAndBook", telemetry.SpanAttributes{
		Model:     d.model,
		Operation: "detect_scheduling",
	})
	defer span.End()

	raw, err := d.backend.Complete(ctx, domain.CompletionRequest{
		Model: d.model,
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: fmt.Sprintf(schedulingPrompt, d.now().Year())},
			{Role: domain.RoleUser, Content: "Resposta do assistente: " + reply},
		},
		MaxTokens: schedulingMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to classify reply: %w", err)
	}

	verdict, err := parseSchedulingVerdict(raw)
	if err != nil {
		return nil, err
	}
	if !verdict.Scheduled || verdict.Date == "" || verdict.Time == "" {
		return nil, nil
	}

	booking := domain.Booking{
		LeadName:  lead.Name,
		LeadPhone: phone,
		Course:    lead.Course,
		Date:      verdict.Date,
		Time:      verdict.Time,
		Duration:  DefaultBookingDuration,
	}
	if booking.LeadName == "" {
		booking.LeadName = defaultLeadName
	}
	if booking.Course == "" {
		booking.Course = defaultLeadCourse
	}

	event, err := d.booker.Book(ctx, booking)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to book %s %s: %w", verdict.Date, verdict.Time, err)
	}
	return event, nil
}

func parseSchedulingVerdict(raw string) (schedulingVerdict, error) {
	var v schedulingVerdict
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &v); err != nil {
		return v, fmt.Errorf("failed to parse scheduling verdict %q: %w", raw, err)
	}
	return v, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
