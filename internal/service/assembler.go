package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/metrics"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
	"github.com/samber/lo"
)

const (
	ChatHistoryLimit    = 10
	SummaryHistoryLimit = 30
)

// AIConfigReader loads channel configurations. A nil config with a nil
// error means the channel was never configured.
type AIConfigReader interface {
	GetAIConfig(ctx context.Context, channelID int64) (*domain.AIConfig, error)
}

// LeadStore resolves what is known about a lead. The boolean reports presence.
type LeadStore interface {
	GetContactName(ctx context.Context, contactID string) (string, bool, error)
	GetLeadCourse(ctx context.Context, contactID string, channelID int64) (string, bool, error)
}

// MessageReader returns the most recent messages of a contact, newest first.
type MessageReader interface {
	RecentMessages(ctx context.Context, contactID string, limit int) ([]domain.Message, error)
}

// KnowledgeSearcher finds relevant knowledge for a query.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, channelID int64, topK int) ([]domain.ScoredChunk, error)
}

// Scheduler is the calendar collaborator.
type Scheduler interface {
	AvailableDates(ctx context.Context, calendarID string, daysAhead int) ([]domain.AvailableDate, error)
	AvailableSlots(ctx context.Context, calendarID, date string) ([]domain.TimeSlot, error)
	CreateEvent(ctx context.Context, calendarID string, event domain.CalendarEvent) (*domain.CreatedEvent, error)
}

// AssemblerConfig tunes the optional prompt sections.
type AssemblerConfig struct {
	CalendarID        string
	CalendarTimeout   time.Duration
	CalendarDaysAhead int
	SlotsPerDay       int
	HistoryLimit      int
	TopK              int
}

// DefaultAssemblerConfig returns the live-chat settings.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		CalendarTimeout:   5 * time.Second,
		CalendarDaysAhead: 3,
		SlotsPerDay:       6,
		HistoryLimit:      ChatHistoryLimit,
		TopK:              DefaultTopK,
	}
}

// AssembleInput identifies the message to answer.
type AssembleInput struct {
	ContactID string
	ChannelID int64
	Message   string
}

// ManualAssembleInput carries caller-supplied lead data and history instead
// of reading them from the stores.
type ManualAssembleInput struct {
	ChannelID int64
	Message   string
	Lead      domain.LeadContext
	History   []domain.Turn
}

// Prompt is an assembled generation request.
type Prompt struct {
	Config    *domain.AIConfig
	Lead      domain.LeadContext
	Knowledge []domain.ScoredChunk
	Messages  []domain.Turn
}

// ContextAssembler builds the message sequence sent to the model. Only the
// configuration is required; lead data, calendar, knowledge and history each
// degrade to absent when their source fails.
type ContextAssembler struct {
	configs   AIConfigReader
	leads     LeadStore
	messages  MessageReader
	knowledge KnowledgeSearcher
	scheduler Scheduler
	cfg       AssemblerConfig
	metrics   *metrics.Metrics
}

// NewContextAssembler creates a ContextAssembler. scheduler may be nil when
// no calendar is configured.
func NewContextAssembler(
	configs AIConfigReader,
	leads LeadStore,
	messages MessageReader,
	knowledge KnowledgeSearcher,
	scheduler Scheduler,
	cfg AssemblerConfig,
	m *metrics.Metrics,
) *ContextAssembler {
	defaults := DefaultAssemblerConfig()
	if cfg.CalendarTimeout <= 0 {
		cfg.CalendarTimeout = defaults.CalendarTimeout
	}
	if cfg.CalendarDaysAhead <= 0 {
		cfg.CalendarDaysAhead = defaults.CalendarDaysAhead
	}
	if cfg.SlotsPerDay <= 0 {
		cfg.SlotsPerDay = defaults.SlotsPerDay
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaults.HistoryLimit
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	return &ContextAssembler{
		configs:   configs,
		leads:     leads,
		messages:  messages,
		knowledge: knowledge,
		scheduler: scheduler,
		cfg:       cfg,
		metrics:   m,
	}
}

// Assemble builds the prompt for an incoming message. It returns
// domain.ErrAIDisabled when the channel is unconfigured or switched off.
func (a *ContextAssembler) Assemble(ctx context.Context, in AssembleInput) (*Prompt, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContextAssembler.Assemble", telemetry.SpanAttributes{
		ChannelID: in.ChannelID,
		ContactID: in.ContactID,
		Operation: "assemble",
	})
	defer span.End()

	cfg, err := a.configs.GetAIConfig(ctx, in.ChannelID)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to load ai config: %w", err)
	}
	if cfg == nil || !cfg.IsEnabled {
		return nil, domain.ErrAIDisabled
	}

	lead := a.lookupLead(ctx, in.ContactID, in.ChannelID)
	return a.build(ctx, cfg, in.ChannelID, in.Message, lead, func() []domain.Turn {
		return a.history(ctx, in.ContactID, a.cfg.HistoryLimit)
	}), nil
}

// AssembleWith builds a prompt from supplied lead data and history. The
// channel's stored configuration is used when present, enabled or not.
func (a *ContextAssembler) AssembleWith(ctx context.Context, in ManualAssembleInput) (*Prompt, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContextAssembler.AssembleWith", telemetry.SpanAttributes{
		ChannelID: in.ChannelID,
		Operation: "assemble_manual",
	})
	defer span.End()

	cfg, err := a.configs.GetAIConfig(ctx, in.ChannelID)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to load ai config: %w", err)
	}
	if cfg == nil {
		cfg = domain.DefaultAIConfig(in.ChannelID)
	}

	return a.build(ctx, cfg, in.ChannelID, in.Message, in.Lead, func() []domain.Turn {
		return lo.Map(in.History, func(t domain.Turn, _ int) domain.Turn {
			if t.Role != domain.RoleUser {
				t.Role = domain.RoleAssistant
			}
			t.Content = domain.RedactContent(t.Content)
			return t
		})
	}), nil
}

func (a *ContextAssembler) build(
	ctx context.Context,
	cfg *domain.AIConfig,
	channelID int64,
	message string,
	lead domain.LeadContext,
	loadHistory func() []domain.Turn,
) *Prompt {
	var system strings.Builder
	system.WriteString(cfg.EffectivePrompt())
	system.WriteString(leadBlock(lead))
	system.WriteString(calendarBlock(a.availability(ctx)))
	knowledge := a.searchKnowledge(ctx, message, channelID)
	system.WriteString(knowledgeBlock(knowledge))
	history := loadHistory()

	messages := make([]domain.Turn, 0, len(history)+2)
	messages = append(messages, domain.Turn{Role: domain.RoleSystem, Content: system.String()})
	messages = append(messages, history...)
	if len(history) == 0 || history[len(history)-1].Content != message {
		messages = append(messages, domain.Turn{Role: domain.RoleUser, Content: message})
	}

	return &Prompt{
		Config:    cfg,
		Lead:      lead,
		Knowledge: knowledge,
		Messages:  messages,
	}
}

func (a *ContextAssembler) lookupLead(ctx context.Context, contactID string, channelID int64) domain.LeadContext {
	var lead domain.LeadContext
	if a.leads == nil {
		return lead
	}
	if name, ok, err := a.leads.GetContactName(ctx, contactID); err != nil {
		a.degrade(ctx, "lead", err)
	} else if ok {
		lead.Name = strings.TrimSpace(name)
	}
	if course, ok, err := a.leads.GetLeadCourse(ctx, contactID, channelID); err != nil {
		a.degrade(ctx, "lead", err)
	} else if ok {
		lead.Course = strings.TrimSpace(course)
	}
	return lead
}

// history returns up to limit turns, oldest first.
func (a *ContextAssembler) history(ctx context.Context, contactID string, limit int) []domain.Turn {
	if a.messages == nil {
		return nil
	}
	msgs, err := a.messages.RecentMessages(ctx, contactID, limit)
	if err != nil {
		a.degrade(ctx, "history", err)
		return nil
	}
	return historyTurns(msgs)
}

func historyTurns(newestFirst []domain.Message) []domain.Turn {
	turns := lo.Map(newestFirst, func(m domain.Message, _ int) domain.Turn { return m.ToTurn() })
	return lo.Reverse(turns)
}

func (a *ContextAssembler) searchKnowledge(ctx context.Context, query string, channelID int64) []domain.ScoredChunk {
	if a.knowledge == nil {
		return nil
	}
	docs, err := a.knowledge.Search(ctx, query, channelID, a.cfg.TopK)
	if err != nil {
		a.degrade(ctx, "knowledge", err)
		return nil
	}
	return docs
}

// dayAvailability is one line of the calendar block.
type dayAvailability struct {
	Date  domain.AvailableDate
	Slots []domain.TimeSlot
}

// availability fetches the next business days and their first free slots
// under a short deadline. Any failure drops the whole section.
func (a *ContextAssembler) availability(ctx context.Context) []dayAvailability {
	if a.scheduler == nil || a.cfg.CalendarID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.CalendarTimeout)
	defer cancel()

	dates, err := a.scheduler.AvailableDates(ctx, a.cfg.CalendarID, a.cfg.CalendarDaysAhead)
	if err != nil {
		a.degrade(ctx, "calendar", err)
		return nil
	}
	days := make([]dayAvailability, 0, len(dates))
	for _, d := range dates {
		slots, err := a.scheduler.AvailableSlots(ctx, a.cfg.CalendarID, d.Date)
		if err != nil {
			a.degrade(ctx, "calendar", err)
			return nil
		}
		if len(slots) > a.cfg.SlotsPerDay {
			slots = slots[:a.cfg.SlotsPerDay]
		}
		days = append(days, dayAvailability{Date: d, Slots: slots})
	}
	return days
}

func (a *ContextAssembler) degrade(ctx context.Context, section string, err error) {
	a.metrics.SectionDegraded(section)
	telemetry.ReportSuppressed(ctx, "assembler."+section, err)
}

// leadBlock renders the known lead fields, or nothing when none is known.
func leadBlock(lead domain.LeadContext) string {
	if lead.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nINFORMAÇÕES DO LEAD ATUAL:\n")
	if lead.Name != "" {
		fmt.Fprintf(&b, "- Nome: %s\n", lead.Name)
	}
	if lead.Course != "" {
		fmt.Fprintf(&b, "- Curso de interesse: %s\n", lead.Course)
	}
	return b.String()
}

// calendarBlock lists the free call slots and forbids offering others.
func calendarBlock(days []dayAvailability) string {
	if len(days) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nAGENDA DISPONÍVEL PARA LIGAÇÃO:\n")
	for _, d := range days {
		starts := lo.Map(d.Slots, func(s domain.TimeSlot, _ int) string { return s.Start })
		fmt.Fprintf(&b, "- %s %s: %s\n", d.Date.Weekday, d.Date.Date, strings.Join(starts, ", "))
	}
	b.WriteString("\nIMPORTANTE: Só ofereça horários que estão nesta lista. Se o lead pedir um horário que não está disponível, informe que não há vaga e sugira os horários livres.\n")
	return b.String()
}

// knowledgeBlock fences the retrieved chunks so the model can tell evidence
// from instructions.
func knowledgeBlock(docs []domain.ScoredChunk) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n---\nINFORMAÇÕES DA BASE DE CONHECIMENTO:\n")
	for _, d := range docs {
		fmt.Fprintf(&b, "\n[%s] (relevância: %.2f)\n%s\n", d.Title, d.Score, d.Content)
	}
	b.WriteString("---\n")
	return b.String()
}
