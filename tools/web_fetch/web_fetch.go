// Package web_fetch downloads result pages. Extraction of readable text
// lives in the extract subpackage.
package web_fetch

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/tools/browser"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch/chromedp"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch/httpfetch"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch/models"
)

const DefaultTimeout = 10 * time.Second

// WebFetcher retrieves one page. A returned error means the page could not
// be used; status codes of 400 and above are errors.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Document, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

var ErrUnsupportedFetcher = goerr.New("unsupported fetcher type")

type Options struct {
	Timeout   time.Duration
	UserAgent string
	Launcher  browser.Launcher
}

func NewWebFetcher(fetcherType FetcherType, opts Options) (WebFetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	switch fetcherType {
	case HTTPFetcherType, "":
		return httpfetch.New(opts.Timeout, opts.UserAgent), nil
	case ChromedpFetcherType:
		if opts.Launcher == nil {
			return nil, goerr.New("chromedp fetcher requires a browser launcher")
		}
		return &chromedp.Fetch{Timeout: opts.Timeout, Launcher: opts.Launcher}, nil
	default:
		return nil, goerr.Wrap(ErrUnsupportedFetcher, "unknown fetcher", goerr.V("type", string(fetcherType)))
	}
}
