// Package web_search turns a query into candidate result URLs. Providers
// are either browser-driven (scrape a results page) or API-backed.
package web_search

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/tools/browser"
	"github.com/mohammad-safakhou/searchagent/tools/web_search/brave"
	"github.com/mohammad-safakhou/searchagent/tools/web_search/duckduckgo"
	"github.com/mohammad-safakhou/searchagent/tools/web_search/google"
	"github.com/mohammad-safakhou/searchagent/tools/web_search/serper"
)

// Searcher returns raw candidate URLs in rank order. Filtering is the
// caller's job; Domain names the host whose links are navigation, not
// results.
type Searcher interface {
	Name() string
	Domain() string
	// NeedsBrowser reports whether Search requires a non-nil page.
	NeedsBrowser() bool
	Search(ctx context.Context, page browser.Page, query string) ([]string, error)
}

type Provider string

const (
	DuckDuckGoProvider Provider = "duckduckgo"
	GoogleProvider     Provider = "google"
	SerperProvider     Provider = "serper"
	BraveProvider      Provider = "brave"
)

var ErrUnsupportedProvider = goerr.New("unsupported search provider")

// Options carries what the individual providers need.
type Options struct {
	Wait         time.Duration
	BraveAPIKey  string
	SerperAPIKey string
	HTTPClient   *http.Client
}

func NewWebSearcher(provider Provider, opts Options) (Searcher, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Wait}
	}
	switch provider {
	case DuckDuckGoProvider:
		return duckduckgo.Search{Wait: opts.Wait}, nil
	case GoogleProvider:
		return google.Search{Wait: opts.Wait}, nil
	case SerperProvider:
		if opts.SerperAPIKey == "" {
			return nil, goerr.New("serper api key not set")
		}
		return serper.Search{ApiKey: opts.SerperAPIKey, Client: client}, nil
	case BraveProvider:
		if opts.BraveAPIKey == "" {
			return nil, goerr.New("brave api key not set")
		}
		return brave.Search{ApiKey: opts.BraveAPIKey, Client: client}, nil
	default:
		return nil, goerr.Wrap(ErrUnsupportedProvider, "unknown provider", goerr.V("provider", string(provider)))
	}
}
