package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req["model"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.25,0.5,1]}],"model":"text-embedding-3-small"}`))
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(120), req["max_completion_tokens"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"A short summary."}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedAndComplete(t *testing.T) {
	t.Parallel()
	srv := fakeAPI(t)
	c, err := New(Config{
		APIKey:         "test",
		BaseURL:        srv.URL + "/v1",
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
	})
	require.NoError(t, err)

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5, 1}, vec)

	out, err := c.Complete(context.Background(), "summarize", 120, 0)
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)
}

func TestAPIError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{APIKey: "k", BaseURL: srv.URL, EmbeddingModel: "m", ChatModel: "m"})
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
	_, err = c.Complete(context.Background(), "x", 10, 0)
	assert.Error(t, err)
}

func TestNewRequiresKeyOrBaseURL(t *testing.T) {
	t.Parallel()
	_, err := New(Config{})
	assert.Error(t, err)
}
