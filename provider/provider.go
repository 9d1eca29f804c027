// Package provider builds the embedding and summarization models from
// configuration. Models are created once at startup and injected into the
// agent.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/config"
	"github.com/mohammad-safakhou/searchagent/provider/gemini"
	"github.com/mohammad-safakhou/searchagent/provider/ollama"
	"github.com/mohammad-safakhou/searchagent/provider/openai"
)

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer produces text for a prompt within an output token budget.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Bounds are the generation limits for one summary, in tokens.
type Bounds struct {
	MinLength   int
	MaxLength   int
	Temperature float64
}

// SummaryModel turns page text into a short summary using a Completer.
type SummaryModel struct {
	completer Completer
	bounds    Bounds
}

func NewSummaryModel(c Completer, b Bounds) *SummaryModel {
	return &SummaryModel{completer: c, bounds: b}
}

func (m *SummaryModel) Summarize(ctx context.Context, text string) (string, error) {
	out, err := m.completer.Complete(ctx, SummaryPrompt(text, m.bounds), m.bounds.MaxLength, m.bounds.Temperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SummaryPrompt asks for a plain summary between the configured bounds,
// stated in tokens like the completion cap.
func SummaryPrompt(text string, b Bounds) string {
	return fmt.Sprintf("Summarize the following web page content in %d to %d tokens. "+
		"Reply with the summary text only, no preamble.\n\n%s", b.MinLength, b.MaxLength, text)
}

// NewEmbedder creates the configured embedding backend.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			EmbeddingModel: cfg.Model,
			Dimensions:     cfg.Dimensions,
		})
	case config.ProviderOllama:
		return ollama.New(ollama.Config{ServerURL: cfg.BaseURL, Model: cfg.Model})
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{APIKey: cfg.APIKey, Model: cfg.Model, Dimensions: cfg.Dimensions})
	default:
		return nil, goerr.New("unsupported embedding provider", goerr.V("provider", cfg.Provider))
	}
}

// NewSummarizer creates the configured summarization backend.
func NewSummarizer(ctx context.Context, cfg config.SummarizerConfig) (*SummaryModel, error) {
	var (
		c   Completer
		err error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err = openai.New(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, ChatModel: cfg.Model})
	case config.ProviderOllama:
		c, err = ollama.New(ollama.Config{ServerURL: cfg.BaseURL, Model: cfg.Model})
	case config.ProviderGemini:
		c, err = gemini.New(ctx, gemini.Config{APIKey: cfg.APIKey, Model: cfg.Model})
	default:
		return nil, goerr.New("unsupported summarizer provider", goerr.V("provider", cfg.Provider))
	}
	if err != nil {
		return nil, err
	}
	return NewSummaryModel(c, Bounds{
		MinLength:   cfg.MinLength,
		MaxLength:   cfg.MaxLength,
		Temperature: cfg.Temperature,
	}), nil
}
