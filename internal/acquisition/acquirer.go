// Package acquisition turns a query into an ordered batch of page texts:
// search with provider fallback, filter and cap the URLs, then fetch and
// extract each page in isolation.
package acquisition

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/internal/helpers"
	"github.com/mohammad-safakhou/searchagent/internal/logging"
	"github.com/mohammad-safakhou/searchagent/internal/telemetry"
	"github.com/mohammad-safakhou/searchagent/tools/browser"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch/extract"
	"github.com/mohammad-safakhou/searchagent/tools/web_search"
	"github.com/panjf2000/ants/v2"
)

const DefaultMaxResults = 5

// Status classifies one fetched source.
type Status string

const (
	StatusOK              Status = "ok"
	StatusFetchError      Status = "fetch-error"
	StatusExtractionEmpty Status = "extraction-empty"
)

// ScrapeErrorPrefix starts the placeholder text of a failed fetch.
const ScrapeErrorPrefix = "Error scraping: "

// SourceResult is the outcome for one URL. Rank is 1-based search order.
type SourceResult struct {
	Rank   int
	URL    string
	Title  string
	Text   string
	Status Status
}

// Attempt records one provider try.
type Attempt struct {
	Provider string
	State    State
	URLs     int
	Err      error
}

// Result is the acquisition outcome. Sources is empty when every provider
// failed; that is not an error.
type Result struct {
	Provider string
	Final    State
	Attempts []Attempt
	Sources  []SourceResult
}

type Acquirer struct {
	primary    web_search.Searcher
	fallback   web_search.Searcher
	fetcher    web_fetch.WebFetcher
	launcher   browser.Launcher
	maxResults int
	maxChars   int
	disallow   []string
	pool       *ants.Pool
	logger     *slog.Logger
	metrics    *telemetry.Metrics
}

type Option func(*Acquirer)

func WithFallback(s web_search.Searcher) Option {
	return func(a *Acquirer) { a.fallback = s }
}

func WithLauncher(l browser.Launcher) Option {
	return func(a *Acquirer) { a.launcher = l }
}

func WithMaxResults(n int) Option {
	return func(a *Acquirer) { a.maxResults = n }
}

func WithMaxChars(n int) Option {
	return func(a *Acquirer) { a.maxChars = n }
}

// WithDisallow drops URLs on these domains and their subdomains.
func WithDisallow(domains []string) Option {
	return func(a *Acquirer) { a.disallow = domains }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Acquirer) { a.logger = l }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(a *Acquirer) { a.metrics = m }
}

// New builds an Acquirer whose fetches run on a pool of workers goroutines.
// Call Close to release the pool.
func New(primary web_search.Searcher, fetcher web_fetch.WebFetcher, workers int, opts ...Option) (*Acquirer, error) {
	if primary == nil {
		return nil, goerr.New("primary search provider required")
	}
	if fetcher == nil {
		return nil, goerr.New("fetcher required")
	}
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create fetch pool", goerr.V("workers", workers))
	}
	a := &Acquirer{
		primary:    primary,
		fetcher:    fetcher,
		maxResults: DefaultMaxResults,
		maxChars:   extract.DefaultMaxChars,
		pool:       pool,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.maxResults < 1 {
		a.maxResults = DefaultMaxResults
	}
	a.logger = a.logger.With("component", "acquisition")
	return a, nil
}

func (a *Acquirer) Close() {
	a.pool.Release()
}

// Acquire searches for query and fetches up to the configured number of
// result pages. It returns an error only when ctx ends.
func (a *Acquirer) Acquire(ctx context.Context, query string) (Result, error) {
	res, urls := a.search(ctx, query)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if len(urls) == 0 {
		a.logger.Info("no usable results from any provider", "query", query)
		return res, nil
	}
	res.Sources = a.fetchAll(ctx, urls)
	return res, ctx.Err()
}

// search walks the provider machine. The browser session, when a provider
// needs one, lives only for the duration of this call.
func (a *Acquirer) search(ctx context.Context, query string) (Result, []string) {
	var (
		res     Result
		session browser.Page
		opened  bool
	)
	defer func() {
		if session != nil {
			session.Close()
		}
	}()

	state := TryPrimary
	for !state.Terminal() {
		provider := a.providerFor(state)
		if provider == nil {
			state = Next(state, Failed)
			continue
		}
		if provider.NeedsBrowser() && !opened && a.launcher != nil {
			opened = true
			page, err := a.launcher.Open(ctx)
			if err != nil {
				a.logger.Warn("browser session unavailable", "error", err)
			} else {
				session = page
			}
		}

		raw, err := provider.Search(ctx, session, query)
		urls := Filter(raw, provider.Domain(), a.disallow, a.maxResults)
		attempt := Attempt{Provider: provider.Name(), State: state, URLs: len(urls), Err: err}
		res.Attempts = append(res.Attempts, attempt)

		outcome := Found
		switch {
		case err != nil:
			outcome = Failed
			a.metrics.ProviderAttempt(provider.Name(), "error")
			a.logger.Warn("search provider failed", "provider", provider.Name(), "error", err)
		case len(urls) == 0:
			outcome = Failed
			a.metrics.ProviderAttempt(provider.Name(), "empty")
			a.logger.Info("search provider returned no usable urls", "provider", provider.Name(), "raw", len(raw))
		default:
			a.metrics.ProviderAttempt(provider.Name(), "ok")
		}

		state = Next(state, outcome)
		if state == Fetching {
			res.Provider = provider.Name()
			res.Final = state
			return res, urls
		}
		if ctx.Err() != nil {
			break
		}
	}
	res.Final = Exhausted
	return res, nil
}

func (a *Acquirer) providerFor(s State) web_search.Searcher {
	switch s {
	case TryPrimary:
		return a.primary
	case TryFallback:
		return a.fallback
	default:
		return nil
	}
}

// Filter keeps well-formed absolute http(s) URLs that are not on exclude or
// any disallowed domain, drops duplicates and keeps the first max in order.
func Filter(raw []string, exclude string, disallow []string, max int) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, max)
	for _, r := range raw {
		if len(out) == max {
			break
		}
		u, ok := helpers.AbsoluteHTTPURL(r)
		if !ok {
			continue
		}
		host := u.Hostname()
		if exclude != "" && helpers.HostMatches(host, exclude) {
			continue
		}
		if blocked(host, disallow) {
			continue
		}
		key, err := helpers.CanonicalURL(u.String())
		if err != nil {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u.String())
	}
	return out
}

func blocked(host string, domains []string) bool {
	for _, d := range domains {
		if helpers.HostMatches(host, d) {
			return true
		}
	}
	return false
}

// fetchAll fetches every URL on the pool and returns results in rank order.
// len(result) == len(urls) always.
func (a *Acquirer) fetchAll(ctx context.Context, urls []string) []SourceResult {
	results := make([]SourceResult, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		rank := i + 1
		err := a.pool.Submit(func() {
			defer wg.Done()
			results[rank-1] = a.fetchOne(ctx, rank, u)
		})
		if err != nil {
			wg.Done()
			results[i] = failed(rank, u, err)
		}
	}
	wg.Wait()
	for _, r := range results {
		a.metrics.SourceFetched(string(r.Status))
	}
	return results
}

func (a *Acquirer) fetchOne(ctx context.Context, rank int, url string) (sr SourceResult) {
	defer func() {
		if r := recover(); r != nil {
			sr = failed(rank, url, goerr.New("panic during fetch", goerr.V("panic", r)))
		}
	}()

	doc, err := a.fetcher.Exec(ctx, url)
	if err != nil {
		a.logger.Warn("fetch failed", "url", url, "error", err)
		return failed(rank, url, err)
	}
	ext, err := extract.Extract(doc.HTML, url, a.maxChars)
	if err != nil {
		return failed(rank, url, err)
	}
	sr = SourceResult{Rank: rank, URL: url, Title: ext.Title, Text: ext.Text, Status: StatusOK}
	if ext.Text == "" {
		sr.Status = StatusExtractionEmpty
	}
	a.logger.Debug("fetched source", "url", url, "method", ext.Method, "chars", len(ext.Text))
	return sr
}

func failed(rank int, url string, err error) SourceResult {
	return SourceResult{
		Rank:   rank,
		URL:    url,
		Title:  url,
		Text:   ScrapeErrorPrefix + err.Error(),
		Status: StatusFetchError,
	}
}
