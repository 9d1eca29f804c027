package duckduckgo

import (
	"context"
	"net/url"
	"time"

	"github.com/mohammad-safakhou/searchagent/tools/browser"
)

const (
	endpoint = "https://duckduckgo.com/"
	// Selector matches result titles on both the JS and the HTML-only layouts.
	Selector = `a[data-testid="result-title-a"], a.result__a`
)

type Search struct {
	Wait time.Duration
}

func (Search) Name() string       { return "duckduckgo" }
func (Search) Domain() string     { return "duckduckgo.com" }
func (Search) NeedsBrowser() bool { return true }

// URL builds the results page address for q.
func URL(q string) string {
	v := url.Values{}
	v.Set("q", q)
	v.Set("t", "h_")
	v.Set("ia", "web")
	return endpoint + "?" + v.Encode()
}

func (s Search) Search(ctx context.Context, page browser.Page, q string) ([]string, error) {
	if page == nil {
		return nil, browser.ErrNoSession
	}
	return page.Links(ctx, URL(q), Selector, s.Wait)
}
