package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/tools/browser"
)

const DefaultEndpoint = "https://google.serper.dev/search"

type Search struct {
	ApiKey   string
	Endpoint string
	Client   *http.Client
}

func (Search) Name() string       { return "serper" }
func (Search) Domain() string     { return "serper.dev" }
func (Search) NeedsBrowser() bool { return false }

func (s Search) Search(ctx context.Context, _ browser.Page, q string) ([]string, error) {
	// https://serper.dev/ docs
	body, err := json.Marshal(map[string]any{"q": q, "num": 20})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode serper request")
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build serper request")
	}
	req.Header.Set("X-API-KEY", s.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "serper request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, goerr.New("serper returned an error status", goerr.V("status", resp.StatusCode))
	}

	var raw struct {
		Organic []struct {
			Link string `json:"link"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode serper response")
	}
	out := make([]string, 0, len(raw.Organic))
	for _, r := range raw.Organic {
		out = append(out, r.Link)
	}
	return out, nil
}
