// Package agent runs the question-answering pipeline: validate, embed, look
// up similar past answers, and on a miss acquire, summarize and remember.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/internal/acquisition"
	"github.com/mohammad-safakhou/searchagent/internal/cache"
	"github.com/mohammad-safakhou/searchagent/internal/helpers"
	"github.com/mohammad-safakhou/searchagent/internal/logging"
	"github.com/mohammad-safakhou/searchagent/internal/store"
	"github.com/mohammad-safakhou/searchagent/internal/summarizer"
	"github.com/mohammad-safakhou/searchagent/internal/telemetry"
)

const DefaultThreshold = 0.8

type Validator interface {
	IsValid(text string) bool
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Cache interface {
	FindNearest(ctx context.Context, vec []float32, threshold float64) (cache.Match, bool, error)
	Store(ctx context.Context, query string, vec []float32, summary string) (store.Record, error)
}

type Acquirer interface {
	Acquire(ctx context.Context, query string) (acquisition.Result, error)
}

type Summarizer interface {
	Entry(ctx context.Context, src acquisition.SourceResult) summarizer.Entry
	Aggregate(entries []summarizer.Entry) string
}

// RecentList is told about every answered query.
type RecentList interface {
	Add(ctx context.Context, query string) error
}

// Indexer is told about every stored record.
type Indexer interface {
	Add(rec store.Record) error
}

// Answer is the result of a run.
type Answer struct {
	ID           string                     `json:"id"`
	Query        string                     `json:"query"`
	Summary      string                     `json:"summary"`
	Cached       bool                       `json:"cached"`
	MatchedQuery string                     `json:"matched_query,omitempty"`
	Score        float64                    `json:"score,omitempty"`
	Entries      []summarizer.Entry         `json:"entries"`
	Sources      []acquisition.SourceResult `json:"-"`
	// StoreErr is set when the answer could not be remembered. The summary
	// is still valid.
	StoreErr error `json:"-"`
}

type Orchestrator struct {
	validator  Validator
	embedder   Embedder
	cache      Cache
	acquirer   Acquirer
	summarizer Summarizer
	threshold  float64
	recent     RecentList
	index      Indexer
	logger     *slog.Logger
	metrics    *telemetry.Metrics
}

type Option func(*Orchestrator)

func WithThreshold(t float64) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

func WithRecent(r RecentList) Option {
	return func(o *Orchestrator) { o.recent = r }
}

func WithIndexer(i Indexer) Option {
	return func(o *Orchestrator) { o.index = i }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func New(v Validator, e Embedder, c Cache, a Acquirer, s Summarizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		validator:  v,
		embedder:   e,
		cache:      c,
		acquirer:   a,
		summarizer: s,
		threshold:  DefaultThreshold,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "agent")
	return o
}

// Ask runs the pipeline without streaming.
func (o *Orchestrator) Ask(ctx context.Context, query string) (Answer, error) {
	return o.Stream(ctx, query, nil)
}

// Stream runs the pipeline and reports progress to emit, which may be nil.
// The stream always ends with exactly one error or done event.
func (o *Orchestrator) Stream(ctx context.Context, query string, emit Emitter) (Answer, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	ans := Answer{ID: uuid.NewString(), Query: query}
	logger := o.logger.With("run_id", ans.ID)
	ctx = logging.With(ctx, logger)

	ctx, span := telemetry.StartSpan(ctx, "agent.run")
	ans, err := o.run(ctx, ans, emit)
	span.End(err)
	if err != nil {
		if !errors.Is(err, ErrInvalidQuery) && !errors.Is(err, context.Canceled) {
			telemetry.CaptureError(ctx, err)
		}
		logger.Info("run ended without an answer", "query", query, "error", err)
		emit(Event{Type: EventError, Message: UserMessage(err)})
		return ans, err
	}
	if o.recent != nil {
		if err := o.recent.Add(ctx, query); err != nil {
			logger.Warn("failed to record recent query", "error", err)
		}
	}
	emit(Event{Type: EventDone})
	return ans, nil
}

func (o *Orchestrator) run(ctx context.Context, ans Answer, emit Emitter) (Answer, error) {
	start := time.Now()
	logger := logging.From(ctx)

	if helpers.IsBlank(ans.Query) || !o.validator.IsValid(ans.Query) {
		return ans, goerr.Wrap(ErrInvalidQuery, "query rejected", goerr.V("query", ans.Query))
	}

	if err := ctx.Err(); err != nil {
		return ans, err
	}

	emit(progress("Checking for similar queries..."))
	vec, err := o.embed(ctx, ans.Query)
	if err != nil {
		return ans, err
	}
	if err := ctx.Err(); err != nil {
		return ans, err
	}

	match, hit, err := o.cache.FindNearest(ctx, vec, o.threshold)
	switch {
	case err != nil:
		o.metrics.CacheLookup("error")
		logger.Warn("cache lookup failed, treating as miss", "error", err)
	case hit:
		o.metrics.CacheLookup("hit")
		defer o.metrics.ObservePipeline("hit", start)
		return o.fromCache(ans, match, emit), nil
	default:
		o.metrics.CacheLookup("miss")
	}
	defer o.metrics.ObservePipeline("miss", start)

	if err := ctx.Err(); err != nil {
		return ans, err
	}
	emit(progress("Searching the web..."))
	actx, span := telemetry.StartSpan(ctx, "agent.acquire")
	res, err := o.acquirer.Acquire(actx, ans.Query)
	span.End(err)
	if err != nil {
		return ans, goerr.Wrap(err, "acquisition interrupted")
	}
	if len(res.Sources) == 0 {
		return ans, goerr.Wrap(ErrNoResults, "every provider came back empty", goerr.V("attempts", len(res.Attempts)))
	}
	ans.Sources = res.Sources
	logger.Info("acquired sources", "provider", res.Provider, "count", len(res.Sources))

	ans.Entries = make([]summarizer.Entry, 0, len(res.Sources))
	for i, src := range res.Sources {
		if err := ctx.Err(); err != nil {
			return ans, err
		}
		emit(progress(fmt.Sprintf("Summarizing result %d of %d...", i+1, len(res.Sources))))
		e := o.summarizer.Entry(ctx, src)
		o.metrics.SummaryEntry(string(e.Outcome))
		ans.Entries = append(ans.Entries, e)
		emit(Event{Type: EventSummary, Title: e.Title, URL: e.URL, Summary: e.Summary})
	}

	// placeholder-only aggregates are still answers; only a blank one is not
	ans.Summary = o.summarizer.Aggregate(ans.Entries)
	if helpers.IsBlank(ans.Summary) {
		return ans, goerr.Wrap(ErrEmptySummary, "aggregate is blank", goerr.V("sources", len(ans.Entries)))
	}

	rec, err := o.cache.Store(ctx, ans.Query, vec, ans.Summary)
	if err != nil {
		o.metrics.StoreFailed()
		telemetry.CaptureError(ctx, err)
		logger.Error("failed to remember answer", "error", err)
		ans.StoreErr = err
		return ans, nil
	}
	if o.index != nil {
		if err := o.index.Add(rec); err != nil {
			logger.Warn("failed to index answer", "error", err)
		}
	}
	return ans, nil
}

func (o *Orchestrator) embed(ctx context.Context, query string) ([]float32, error) {
	ctx, span := telemetry.StartSpan(ctx, "agent.embed")
	vec, err := o.embedder.Embed(ctx, query)
	span.End(err)
	if err != nil {
		if errors.Is(err, ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, goerr.Wrap(errors.Join(ErrEmbeddingUnavailable, err), "embedder failed")
	}
	return vec, nil
}

func (o *Orchestrator) fromCache(ans Answer, m cache.Match, emit Emitter) Answer {
	ans.Cached = true
	ans.Summary = m.Record.Summary
	ans.MatchedQuery = m.Record.Query
	ans.Score = m.Score
	ans.Entries = summarizer.ParseEntries(m.Record.Summary)

	emit(progress(fmt.Sprintf("Found similar past query (similarity %.2f): %s", m.Score, m.Record.Query)))
	for _, e := range ans.Entries {
		emit(Event{Type: EventSummary, Title: e.Title, URL: e.URL, Summary: e.Summary})
	}
	return ans
}
