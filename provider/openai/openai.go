// Package openai talks to OpenAI-compatible embedding and chat endpoints.
package openai

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Dimensions     int
}

// Client implements both embedding and completion.
type Client struct {
	api            *openai.Client
	embeddingModel string
	chatModel      string
	dimensions     int
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" && cfg.BaseURL == "" {
		return nil, goerr.New("openai api key not set")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		api:            openai.NewClientWithConfig(oc),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		dimensions:     cfg.Dimensions,
	}, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(c.embeddingModel),
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "openai embedding request failed", goerr.V("model", c.embeddingModel))
	}
	if len(resp.Data) == 0 {
		return nil, goerr.New("no embedding data returned", goerr.V("model", c.embeddingModel))
	}
	return resp.Data[0].Embedding, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: maxTokens,
		Temperature:         float32(temperature),
	})
	if err != nil {
		return "", goerr.Wrap(err, "openai chat request failed", goerr.V("model", c.chatModel))
	}
	if len(resp.Choices) == 0 {
		return "", goerr.New("no completion choices returned", goerr.V("model", c.chatModel))
	}
	return resp.Choices[0].Message.Content, nil
}
