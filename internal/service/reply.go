package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/metrics"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
)

const defaultSideEffectTimeout = 30 * time.Second

// ScheduleDetector books calls confirmed by a generated reply.
type ScheduleDetector interface {
	DetectAndBook(ctx context.Context, reply string, lead domain.LeadContext, phone string) (*domain.CreatedEvent, error)
}

// ReplyInput is an inbound lead message to answer.
type ReplyInput struct {
	ContactID string
	ChannelID int64
	Message   string
	// Persist stores the reply as an outbound message and bumps the
	// conversation card.
	Persist bool
}

// ReplyResult is the generated reply. Text is empty for the disabled and
// failed outcomes.
type ReplyResult struct {
	Text          string
	Model         string
	Outcome       domain.GenerationOutcome
	KnowledgeDocs []domain.ScoredChunk
}

// TestChatInput simulates a conversation without touching stored history.
type TestChatInput struct {
	ChannelID  int64
	Message    string
	History    []domain.Turn
	LeadName   string
	LeadCourse string
}

// TestChatResult mirrors what the live pipeline would have answered.
type TestChatResult struct {
	Text    string
	Model   string
	Outcome domain.GenerationOutcome
	RAGDocs int
}

// ReplyService answers lead messages. Side effects run in the background
// after the text is returned and never affect it.
type ReplyService struct {
	assembler *ContextAssembler
	generator *ResponseGenerator
	detector  ScheduleDetector
	tx        TxRunner
	metrics   *metrics.Metrics

	sideEffectTimeout time.Duration
	wg                sync.WaitGroup
	now               func() time.Time
}

// NewReplyService creates a ReplyService. detector and tx may be nil, which
// disables the matching side effect.
func NewReplyService(
	assembler *ContextAssembler,
	generator *ResponseGenerator,
	detector ScheduleDetector,
	tx TxRunner,
	m *metrics.Metrics,
) *ReplyService {
	return &ReplyService{
		assembler:         assembler,
		generator:         generator,
		detector:          detector,
		tx:                tx,
		metrics:           m,
		sideEffectTimeout: defaultSideEffectTimeout,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Reply generates the answer to in.Message. A disabled channel yields the
// disabled outcome with no model call.
func (s *ReplyService) Reply(ctx context.Context, in ReplyInput) (*ReplyResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReplyService.Reply", telemetry.SpanAttributes{
		ChannelID: in.ChannelID,
		ContactID: in.ContactID,
		Operation: "reply",
	})
	defer span.End()

	if strings.TrimSpace(in.Message) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "message is required")
	}

	prompt, err := s.assembler.Assemble(ctx, AssembleInput{
		ContactID: in.ContactID,
		ChannelID: in.ChannelID,
		Message:   in.Message,
	})
	if errors.Is(err, domain.ErrAIDisabled) {
		s.metrics.GenerationOutcome(string(domain.OutcomeDisabled))
		return &ReplyResult{Outcome: domain.OutcomeDisabled}, nil
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	gen := s.generator.Generate(ctx, GenerateInput{
		Messages:    prompt.Messages,
		Model:       prompt.Config.EffectiveModel(),
		Temperature: prompt.Config.Temperature,
		MaxTokens:   prompt.Config.EffectiveMaxTokens(),
	})
	result := &ReplyResult{
		Text:          gen.Text,
		Model:         gen.Model,
		Outcome:       gen.Outcome,
		KnowledgeDocs: prompt.Knowledge,
	}
	if gen.HasText() {
		s.afterReply(ctx, in, prompt.Lead, gen)
	}
	return result, nil
}

// TestChat runs the assembly and generation with caller-supplied lead data
// and history. Nothing is persisted and no call is booked.
func (s *ReplyService) TestChat(ctx context.Context, in TestChatInput) (*TestChatResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReplyService.TestChat", telemetry.SpanAttributes{
		ChannelID: in.ChannelID,
		Operation: "test_chat",
	})
	defer span.End()

	if strings.TrimSpace(in.Message) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "message is required")
	}

	prompt, err := s.assembler.AssembleWith(ctx, ManualAssembleInput{
		ChannelID: in.ChannelID,
		Message:   in.Message,
		Lead: domain.LeadContext{
			Name:   strings.TrimSpace(in.LeadName),
			Course: strings.TrimSpace(in.LeadCourse),
		},
		History: in.History,
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	gen := s.generator.Generate(ctx, GenerateInput{
		Messages:    prompt.Messages,
		Model:       prompt.Config.EffectiveModel(),
		Temperature: prompt.Config.Temperature,
		MaxTokens:   prompt.Config.EffectiveMaxTokens(),
	})
	return &TestChatResult{
		Text:    gen.Text,
		Model:   gen.Model,
		Outcome: gen.Outcome,
		RAGDocs: len(prompt.Knowledge),
	}, nil
}

// Wait blocks until every background side effect has finished.
func (s *ReplyService) Wait() {
	s.wg.Wait()
}

func (s *ReplyService) afterReply(ctx context.Context, in ReplyInput, lead domain.LeadContext, gen domain.Generation) {
	detect := s.detector != nil && gen.Outcome != domain.OutcomeApology
	persist := s.tx != nil && in.Persist
	if !detect && !persist {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
		defer cancel()

		if detect {
			if _, err := s.detector.DetectAndBook(bg, gen.Text, lead, in.ContactID); err != nil {
				s.metrics.SideEffectFailed("scheduling")
				telemetry.ReportSuppressed(bg, "reply.scheduling", err, "contact_id", in.ContactID)
			}
		}
		if persist {
			if err := s.persist(bg, in, lead, gen); err != nil {
				s.metrics.SideEffectFailed("persist")
				telemetry.ReportSuppressed(bg, "reply.persist", err, "contact_id", in.ContactID)
			}
		}
	}()
}

// persist stores the outbound message and bumps the conversation card in one
// transaction.
func (s *ReplyService) persist(ctx context.Context, in ReplyInput, lead domain.LeadContext, gen domain.Generation) error {
	msg := &domain.Message{
		WAMessageID: "ai-" + uuid.NewString(),
		ContactID:   in.ContactID,
		ChannelID:   in.ChannelID,
		Direction:   domain.DirectionOutbound,
		MessageType: "text",
		Content:     gen.Text,
		Timestamp:   s.now(),
		Status:      "sent",
		SentByAI:    true,
	}
	return s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Messages().InsertMessage(ctx, msg); err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}
		if err := repos.Summaries().RecordAIReply(ctx, in.ContactID, in.ChannelID, lead); err != nil {
			return fmt.Errorf("failed to update conversation card: %w", err)
		}
		return nil
	})
}
