package chromedp

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/tools/browser"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch/models"
)

// Fetch renders each page in its own browser tab, for sites that build
// their content with JavaScript.
type Fetch struct {
	Timeout  time.Duration
	Launcher browser.Launcher
}

func (f *Fetch) Exec(ctx context.Context, url string) (models.Document, error) {
	if strings.TrimSpace(url) == "" {
		return models.Document{}, goerr.New("invalid url")
	}
	t0 := time.Now()

	page, err := f.Launcher.Open(ctx)
	if err != nil {
		return models.Document{URL: url}, err
	}
	defer page.Close()

	html, err := page.HTML(ctx, url, f.Timeout)
	if err != nil {
		return models.Document{URL: url}, err
	}
	return models.Document{
		URL:      url,
		Status:   200,
		HTML:     html,
		RenderMS: int(time.Since(t0) / time.Millisecond),
	}, nil
}
