package google

import (
	"context"
	"net/url"
	"time"

	"github.com/mohammad-safakhou/searchagent/tools/browser"
)

// Selector targets result headings; the page resolves each to its anchor.
const Selector = "a h3"

type Search struct {
	Wait time.Duration
}

func (Search) Name() string       { return "google" }
func (Search) Domain() string     { return "google.com" }
func (Search) NeedsBrowser() bool { return true }

func URL(q string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

func (s Search) Search(ctx context.Context, page browser.Page, q string) ([]string, error) {
	if page == nil {
		return nil, browser.ErrNoSession
	}
	return page.Links(ctx, URL(q), Selector, s.Wait)
}
