package httpfetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch/models"
)

// maxBody caps how much of a page is read.
const maxBody = 8 << 20

type Fetch struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

func New(timeout time.Duration, userAgent string) *Fetch {
	return &Fetch{
		Timeout:   timeout,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (f *Fetch) Exec(ctx context.Context, url string) (models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	t0 := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Document{URL: url}, goerr.Wrap(err, "invalid request")
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.Client.Do(req)
	if err != nil {
		return models.Document{URL: url}, goerr.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	doc := models.Document{URL: url, Status: resp.StatusCode}
	if resp.StatusCode >= http.StatusBadRequest {
		return doc, goerr.New(resp.Status, goerr.V("status", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return doc, goerr.Wrap(err, "failed to read body")
	}
	doc.HTML = string(body)
	doc.RenderMS = int(time.Since(t0) / time.Millisecond)
	return doc, nil
}
