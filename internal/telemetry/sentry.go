package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

const serviceName = "searchagent"

// SentryConfig holds the configuration for Sentry initialization.
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
}

// InitSentry initializes Sentry with tracing enabled and returns a flush
// function. An empty DSN yields a no-op flush.
func InitSentry(cfg SentryConfig, logger *slog.Logger) func() {
	if cfg.DSN == "" {
		return func() {}
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
		Release:          cfg.Release,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		ServerName:       serviceName,
	})
	if err != nil {
		logger.Warn("sentry: failed to initialize, continuing without it", "error", err)
		return func() {}
	}
	logger.Info("sentry: initialized", "environment", cfg.Environment, "sample_rate", cfg.TracesSampleRate)
	return func() { sentry.Flush(5 * time.Second) }
}

// Span wraps sentry.Span so callers do not depend on sentry directly.
type Span struct {
	inner *sentry.Span
}

// StartSpan starts a child span when ctx already carries one, otherwise a
// new transaction.
func StartSpan(ctx context.Context, op string) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(op)
	} else {
		span = sentry.StartSpan(ctx, op, sentry.WithTransactionName(op))
	}
	return span.Context(), &Span{inner: span}
}

// SetTag attaches a tag to the span.
func (s *Span) SetTag(key, value string) {
	if s != nil && s.inner != nil {
		s.inner.SetTag(key, value)
	}
}

// End finishes the span, marking it failed when err is non-nil.
func (s *Span) End(err error) {
	if s == nil || s.inner == nil {
		return
	}
	if err != nil {
		s.inner.Status = sentry.SpanStatusInternalError
	} else {
		s.inner.Status = sentry.SpanStatusOK
	}
	s.inner.Finish()
}

// CaptureError reports err to Sentry using the hub bound to ctx when present.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
