// Package browser owns the headless Chrome session used for browser-driven
// search and rendering.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNoSession is returned by browser-driven callers handed a nil Page.
var ErrNoSession = goerr.New("browser session not available")

// anchorsJS resolves every match of a selector to its enclosing anchor href.
const anchorsJS = `Array.from(document.querySelectorAll(%s)).map(e => e.closest('a')).filter(Boolean).map(a => a.href)`

// AnchorsScript returns the script Links evaluates for selector.
func AnchorsScript(selector string) string {
	lit, _ := json.Marshal(selector)
	return fmt.Sprintf(anchorsJS, lit)
}

// Page is one browser tab.
type Page interface {
	// Links loads target, waits for selector to appear and returns the href
	// of the anchor enclosing every match, in document order.
	Links(ctx context.Context, target, selector string, wait time.Duration) ([]string, error)
	// HTML loads target and returns the rendered document.
	HTML(ctx context.Context, target string, wait time.Duration) (string, error)
	Close()
}

// Launcher opens pages. Callers must Close what they open.
type Launcher interface {
	Open(ctx context.Context) (Page, error)
}

// Chrome launches a local Chrome through chromedp.
type Chrome struct {
	Headless  bool
	UserAgent string
}

func (c Chrome) Open(ctx context.Context) (Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.Headless),
	)
	if c.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.UserAgent))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	bctx, cancelBrowser := chromedp.NewContext(actx)
	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(bctx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, goerr.Wrap(err, "failed to start browser")
	}
	return &chromePage{ctx: bctx, cancel: func() { cancelBrowser(); cancelAlloc() }}, nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// scoped derives a run context from the tab that also ends with ctx.
func (p *chromePage) scoped(ctx context.Context, wait time.Duration) (context.Context, func()) {
	rctx, cancel := context.WithTimeout(p.ctx, wait)
	stop := context.AfterFunc(ctx, cancel)
	return rctx, func() { stop(); cancel() }
}

func (p *chromePage) Links(ctx context.Context, target, selector string, wait time.Duration) ([]string, error) {
	rctx, done := p.scoped(ctx, wait)
	defer done()

	var hrefs []string
	err := chromedp.Run(rctx,
		chromedp.Navigate(target),
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.Evaluate(AnchorsScript(selector), &hrefs),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "browser search failed", goerr.V("url", target), goerr.V("selector", selector))
	}
	return hrefs, nil
}

func (p *chromePage) HTML(ctx context.Context, target string, wait time.Duration) (string, error) {
	rctx, done := p.scoped(ctx, wait)
	defer done()

	var html string
	err := chromedp.Run(rctx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", goerr.Wrap(err, "browser render failed", goerr.V("url", target))
	}
	return html, nil
}

func (p *chromePage) Close() {
	p.cancel()
}
