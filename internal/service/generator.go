package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/metrics"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
)

// CompletionBackend is the chat completion side of the model provider.
type CompletionBackend interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// GeneratorConfig configures the retry policy.
type GeneratorConfig struct {
	FallbackModel string
	// Timeout bounds each completion call. Zero disables the bound.
	Timeout time.Duration
}

// GenerateInput is one generation run.
type GenerateInput struct {
	Messages    []domain.Turn
	Model       string
	Temperature float32
	MaxTokens   int
}

// ResponseGenerator runs the primary call and the single empty-response
// retry against the fallback model. It never returns an error: transport
// failures become domain.OutcomeFailed and are reported where they happen.
type ResponseGenerator struct {
	backend CompletionBackend
	cfg     GeneratorConfig
	metrics *metrics.Metrics
}

func NewResponseGenerator(backend CompletionBackend, cfg GeneratorConfig, m *metrics.Metrics) *ResponseGenerator {
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = domain.DefaultFallbackModel
	}
	return &ResponseGenerator{backend: backend, cfg: cfg, metrics: m}
}

// FallbackModel is the cheaper model used for retries and auxiliary calls.
func (g *ResponseGenerator) FallbackModel() string {
	return g.cfg.FallbackModel
}

// Generate produces a reply for in.Messages.
func (g *ResponseGenerator) Generate(ctx context.Context, in GenerateInput) domain.Generation {
	ctx, span := telemetry.StartSpan(ctx, "ResponseGenerator.Generate", telemetry.SpanAttributes{
		Model:     in.Model,
		Operation: "generate",
	})
	defer span.End()

	result := g.generate(ctx, in)
	g.metrics.GenerationOutcome(string(result.Outcome))
	return result
}

func (g *ResponseGenerator) generate(ctx context.Context, in GenerateInput) domain.Generation {
	text, err := g.complete(ctx, domain.CompletionRequest{
		Model:       in.Model,
		Messages:    in.Messages,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		telemetry.ReportSuppressed(ctx, "generator.primary", err, "model", in.Model)
		return domain.Generation{Model: in.Model, Outcome: domain.OutcomeFailed}
	}
	if !isBlank(text) {
		return domain.Generation{Text: text, Model: in.Model, Outcome: domain.OutcomePrimary}
	}

	text, err = g.complete(ctx, domain.CompletionRequest{
		Model:       g.cfg.FallbackModel,
		Messages:    retryMessages(in.Messages),
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		telemetry.ReportSuppressed(ctx, "generator.fallback", err, "model", g.cfg.FallbackModel)
	}
	if err != nil || isBlank(text) {
		return domain.Generation{Text: domain.ApologyText, Model: g.cfg.FallbackModel, Outcome: domain.OutcomeApology}
	}
	return domain.Generation{Text: text, Model: g.cfg.FallbackModel, Outcome: domain.OutcomeFallback}
}

func (g *ResponseGenerator) complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}
	defer g.metrics.GenerationTimer(req.Model)()

	text, err := g.backend.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("completion timed out on %s: %w", req.Model, err)
		}
		return "", fmt.Errorf("completion failed on %s: %w", req.Model, err)
	}
	return text, nil
}

// retryMessages copies messages and appends the empty assistant placeholder
// and the nudge turn.
func retryMessages(messages []domain.Turn) []domain.Turn {
	out := slices.Clone(messages)
	return append(out,
		domain.Turn{Role: domain.RoleAssistant, Content: ""},
		domain.Turn{Role: domain.RoleUser, Content: domain.ContinueNudge},
	)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
