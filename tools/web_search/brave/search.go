package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/tools/browser"
)

const DefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

type Search struct {
	ApiKey   string
	Endpoint string
	Client   *http.Client
}

func (Search) Name() string       { return "brave" }
func (Search) Domain() string     { return "search.brave.com" }
func (Search) NeedsBrowser() bool { return false }

func (s Search) Search(ctx context.Context, _ browser.Page, q string) ([]string, error) {
	// https://api.search.brave.com/app/documentation/web-search
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?q=%s&count=20", endpoint, url.QueryEscape(q)), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build brave request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.ApiKey)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "brave request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, goerr.New("brave returned an error status", goerr.V("status", resp.StatusCode))
	}

	var raw struct {
		Web struct {
			Results []struct {
				URL string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode brave response")
	}
	out := make([]string, 0, len(raw.Web.Results))
	for _, r := range raw.Web.Results {
		out = append(out, r.URL)
	}
	return out, nil
}
