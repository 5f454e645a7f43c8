// Package telemetry wires Sentry tracing and error reporting for the lead
// assistant. Every helper is a no-op until Init has run with a DSN.
package telemetry

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	serviceName  = "leadbotd"
	flushTimeout = 5 * time.Second
)

// unsampledRoutes are polled by probes and scrapers.
var unsampledRoutes = map[string]bool{
	"GET /health":  true,
	"GET /metrics": true,
}

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init initializes Sentry with tracing enabled and returns a function that
// flushes pending events. An empty DSN yields a no-op.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serviceName,
		SendDefaultPII:   false,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			return sampleRate(ctx.Span, cfg.TracesSampleRate)
		}),
	})
	if err != nil {
		return func() {}, err
	}

	slog.Info("sentry: tracing initialized",
		slog.String("environment", cfg.Environment),
		slog.Float64("sample_rate", cfg.TracesSampleRate))
	return func() { sentry.Flush(flushTimeout) }, nil
}

func sampleRate(span *sentry.Span, rate float64) float64 {
	if span == nil {
		return rate
	}
	if unsampledRoutes[span.Name] {
		return 0
	}
	var root sentry.SpanID
	if span.ParentSpanID != root {
		if span.Sampled.Bool() {
			return 1
		}
		return 0
	}
	return rate
}

// SpanAttributes are the tags shared by service spans.
type SpanAttributes struct {
	ChannelID int64
	ContactID string
	Model     string
	Operation string
}

// Span wraps sentry.Span. A nil inner span makes every method a no-op.
type Span struct {
	inner *sentry.Span
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError marks the span as errored and captures err.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

// StartSpan opens a child of the span in ctx, or a new transaction when ctx
// carries none.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	if attrs.ChannelID != 0 {
		span.SetTag("channel_id", strconv.FormatInt(attrs.ChannelID, 10))
	}
	if attrs.ContactID != "" {
		span.SetTag("contact", MaskContact(attrs.ContactID))
	}
	if attrs.Model != "" {
		span.SetTag("model", attrs.Model)
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}

	return span.Context(), &Span{inner: span}
}

// MaskContact hides the middle digits of a WhatsApp ID, keeping the country
// and area code and the last four digits: 5511999990000 becomes
// 5511*****0000.
func MaskContact(waID string) string {
	const head, tail = 4, 4
	if len(waID) <= head+tail {
		return strings.Repeat("*", len(waID))
	}
	return waID[:head] + strings.Repeat("*", len(waID)-head-tail) + waID[len(waID)-tail:]
}

// CaptureError captures err on the hub in ctx, falling back to the global
// hub.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// ReportSuppressed records a failure that was absorbed where it happened: a
// structured warning for operators plus a Sentry event.
func ReportSuppressed(ctx context.Context, component string, err error, attrs ...any) {
	if err == nil {
		return
	}
	args := append([]any{slog.String("component", component), slog.String("error", err.Error())}, attrs...)
	slog.WarnContext(ctx, component+": degraded", args...)
	CaptureError(ctx, err)
}
