// Package ollama runs embeddings and summaries against a local Ollama server
// through langchaingo.
package ollama

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type Config struct {
	ServerURL string
	Model     string
}

type Client struct {
	llm      *ollama.LLM
	embedder embeddings.Embedder
	model    string
}

func New(cfg Config) (*Client, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ollama client", goerr.V("model", cfg.Model))
	}
	emb, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ollama embedder", goerr.V("model", cfg.Model))
	}
	return &Client{llm: llm, embedder: emb, model: cfg.Model}, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(err, "ollama embedding failed", goerr.V("model", c.model))
	}
	return vec, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", goerr.Wrap(err, "ollama generation failed", goerr.V("model", c.model))
	}
	return out, nil
}
