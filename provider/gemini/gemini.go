// Package gemini uses the Gemini API for embeddings and summaries.
package gemini

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

type Config struct {
	APIKey     string
	Model      string
	Dimensions int
}

type Client struct {
	client     *genai.Client
	model      string
	dimensions int
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, goerr.New("gemini api key not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}
	return &Client{client: client, model: cfg.Model, dimensions: cfg.Dimensions}, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{}
	if c.dimensions > 0 {
		d := int32(c.dimensions)
		cfg.OutputDimensionality = &d
	}
	resp, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "gemini embedding failed", goerr.V("model", c.model))
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, goerr.New("no embedding returned", goerr.V("model", c.model))
	}
	return resp.Embeddings[0].Values, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	temp := float32(temperature)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     &temp,
	})
	if err != nil {
		return "", goerr.Wrap(err, "gemini generation failed", goerr.V("model", c.model))
	}
	return resp.Text(), nil
}
