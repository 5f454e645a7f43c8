package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
	"github.com/samber/lo"
)

const (
	summaryPrompt      = "Resuma esta conversa de atendimento em 2-3 frases objetivas. Inclua: interesse do lead, dúvidas principais, e status final."
	summaryTemperature = 0.3
	summaryMaxTokens   = 200
)

// SummaryStore persists summaries on the conversation cards.
type SummaryStore interface {
	UpdateSummary(ctx context.Context, contactID string, channelID int64, summary string) error
	ListStale(ctx context.Context, limit int) ([]domain.ConversationSummary, error)
}

// SummaryService writes short summaries of lead conversations.
type SummaryService struct {
	messages  MessageReader
	generator *ResponseGenerator
	store     SummaryStore
}

// NewSummaryService creates a SummaryService. store may be nil when
// summaries are only returned, never persisted.
func NewSummaryService(messages MessageReader, generator *ResponseGenerator, store SummaryStore) *SummaryService {
	return &SummaryService{messages: messages, generator: generator, store: store}
}

// Summarize returns a summary of the last turns with the contact. The
// boolean is false when there is no history or the model call failed.
func (s *SummaryService) Summarize(ctx context.Context, contactID string) (string, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "SummaryService.Summarize", telemetry.SpanAttributes{
		ContactID: contactID,
		Operation: "summarize",
	})
	defer span.End()

	msgs, err := s.messages.RecentMessages(ctx, contactID, SummaryHistoryLimit)
	if err != nil {
		span.SetError(err)
		return "", false, fmt.Errorf("failed to load history: %w", err)
	}
	turns := historyTurns(msgs)
	if len(turns) == 0 {
		return "", false, nil
	}

	gen := s.generator.Generate(ctx, GenerateInput{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: summaryPrompt},
			{Role: domain.RoleUser, Content: transcript(turns)},
		},
		Model:       s.generator.FallbackModel(),
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if !gen.HasText() {
		return "", false, nil
	}
	return gen.Text, true, nil
}

// Refresh summarizes the conversation and stores the result on the card.
// It reports whether a summary was stored.
func (s *SummaryService) Refresh(ctx context.Context, contactID string, channelID int64) (bool, error) {
	summary, ok, err := s.Summarize(ctx, contactID)
	if err != nil || !ok {
		return false, err
	}
	if s.store == nil {
		return false, nil
	}
	if err := s.Save(ctx, contactID, channelID, summary); err != nil {
		return false, err
	}
	return true, nil
}

// Save stores summary on the contact's card for channelID.
func (s *SummaryService) Save(ctx context.Context, contactID string, channelID int64, summary string) error {
	if s.store == nil {
		return domain.ErrSummaryNotFound
	}
	if err := s.store.UpdateSummary(ctx, contactID, channelID, summary); err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}
	return nil
}

// RefreshStale refreshes up to limit cards whose conversation moved since
// their last summary. Individual failures are logged and skipped.
func (s *SummaryService) RefreshStale(ctx context.Context, limit int) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	cards, err := s.store.ListStale(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale summaries: %w", err)
	}
	refreshed := 0
	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		ok, err := s.Refresh(ctx, card.ContactID, card.ChannelID)
		if err != nil {
			telemetry.ReportSuppressed(ctx, "summary.refresh", err, "contact_id", card.ContactID)
			continue
		}
		if ok {
			refreshed++
		}
	}
	return refreshed, nil
}

func transcript(turns []domain.Turn) string {
	lines := lo.Map(turns, func(t domain.Turn, _ int) string {
		if t.Role == domain.RoleUser {
			return "Lead: " + t.Content
		}
		return "Atendente: " + t.Content
	})
	return strings.Join(lines, "\n")
}
