package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammad-safakhou/searchagent/config"
	"github.com/mohammad-safakhou/searchagent/internal/acquisition"
	"github.com/mohammad-safakhou/searchagent/internal/agent"
	"github.com/mohammad-safakhou/searchagent/internal/store"
)

func fakeModelAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[1,0,0]}],"model":"m"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func memoryConfig(baseURL string) *config.Config {
	return &config.Config{
		General:   config.GeneralConfig{LogLevel: "error"},
		Server:    config.ServerConfig{Address: ":0"},
		Embedding: config.EmbeddingConfig{Provider: config.ProviderOpenAI, Model: "m", Dimensions: 3, BaseURL: baseURL},
		Summarizer: config.SummarizerConfig{
			Provider: config.ProviderOpenAI, Model: "m", BaseURL: baseURL,
			MaxInputChars: 1024, MinLength: 30, MaxLength: 120,
		},
		Cache: config.CacheConfig{Backend: config.BackendMemory, Threshold: 0.8},
		Acquisition: config.AcquisitionConfig{
			Primary: "duckduckgo", Fallback: "google", MaxResults: 5,
			SearchTimeout: time.Second, FetchTimeout: time.Second, MaxChars: 5000,
		},
		Recent: config.RecentConfig{Capacity: 3, Backend: config.BackendMemory},
	}
}

func TestBuildAppAnswersFromMemory(t *testing.T) {
	srv := fakeModelAPI(t)
	ctx := context.Background()

	a, err := buildApp(ctx, memoryConfig(srv.URL+"/v1"), io.Discard)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.store.Append(ctx, store.Record{
		Query:     "what is go",
		Embedding: []float32{1, 0, 0},
		Summary:   "- [Go](https://go.dev)\n  A programming language.\n",
	})
	require.NoError(t, err)

	ans, err := a.agent.Ask(ctx, "what is golang")
	require.NoError(t, err)
	assert.True(t, ans.Cached)
	assert.Equal(t, "what is go", ans.MatchedQuery)
	assert.InDelta(t, 1.0, ans.Score, 1e-9)

	items, err := a.recent.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"what is golang"}, items)
}

func TestBuildAppRejectsUnknownProvider(t *testing.T) {
	cfg := memoryConfig("http://127.0.0.1:1/v1")
	cfg.Acquisition.Primary = "altavista"

	_, err := buildApp(context.Background(), cfg, io.Discard)
	require.Error(t, err)
}

func TestHistoryCommandEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"general": {"log_level": "error"},
		"embedding": {"api_key": "test"},
		"cache": {"backend": "memory"},
		"recent": {"backend": "memory"}
	}`), 0o600))

	var out bytes.Buffer
	root := newRootCMD()
	root.SetArgs([]string{"history", "-c", path})
	root.SetOut(&out)
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "no remembered queries")
}

func TestExitCodeAndDescribe(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{agent.ErrInvalidQuery, exitInvalid, agent.MsgInvalidQuery},
		{agent.ErrNoResults, exitNoAnswer, agent.MsgNoResults},
		{agent.ErrEmptySummary, exitNoAnswer, agent.MsgEmptySummary},
		{agent.ErrEmbeddingUnavailable, exitUnavailable, agent.MsgEmbedding},
		{errors.New("read config: no such file"), exitFailure, "read config: no such file"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, exitCode(tc.err), tc.err.Error())
		assert.Equal(t, tc.msg, describe(tc.err), tc.err.Error())
	}
}

type fakeStreamer struct {
	events []agent.Event
	ans    agent.Answer
}

func (f fakeStreamer) Stream(_ context.Context, _ string, emit agent.Emitter) (agent.Answer, error) {
	for _, ev := range f.events {
		emit(ev)
	}
	return f.ans, nil
}

func TestRunAskAndPrint(t *testing.T) {
	s := fakeStreamer{
		events: []agent.Event{
			{Type: agent.EventProgress, Message: "Searching the web..."},
			{Type: agent.EventSummary, Title: "Go", URL: "https://go.dev", Summary: "A language."},
		},
		ans: agent.Answer{
			Summary: "- [Go](https://go.dev)\n  A language.\n",
			Sources: []acquisition.SourceResult{
				{Rank: 1, URL: "https://go.dev", Title: "Go", Text: "Go is an open source language.", Status: acquisition.StatusOK},
				{Rank: 2, URL: "https://x.test", Title: "https://x.test", Text: acquisition.ScrapeErrorPrefix + "502", Status: acquisition.StatusFetchError},
			},
		},
	}

	ans, err := runAsk(context.Background(), s, "what is go", io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	printAnswer(&out, ans, true)
	got := out.String()
	assert.Contains(t, got, "- [Go](https://go.dev)")
	assert.Contains(t, got, "Sources")
	assert.Contains(t, got, "https://x.test")
	assert.Contains(t, got, "Error scraping: 502")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview(" a \n b\tc ", 10))
	assert.Equal(t, "héllo...", preview("héllo world", 5))
	assert.Equal(t, strings.Repeat("x", 3), preview("xxx", 3))
}
