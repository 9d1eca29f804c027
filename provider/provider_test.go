package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammad-safakhou/searchagent/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct{ mock.Mock }

func (m *mockCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, prompt, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

func TestSummaryModel(t *testing.T) {
	t.Parallel()
	c := &mockCompleter{}
	b := Bounds{MinLength: 30, MaxLength: 120, Temperature: 0.2}
	c.On("Complete", mock.Anything, SummaryPrompt("page text", b), 120, 0.2).Return("  the gist \n", nil)

	out, err := NewSummaryModel(c, b).Summarize(context.Background(), "page text")
	require.NoError(t, err)
	assert.Equal(t, "the gist", out)
	c.AssertExpectations(t)
}

func TestSummaryModelError(t *testing.T) {
	t.Parallel()
	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("rate limited"))

	_, err := NewSummaryModel(c, Bounds{MaxLength: 10}).Summarize(context.Background(), "x")
	assert.EqualError(t, err, "rate limited")
}

func TestSummaryPromptCarriesBounds(t *testing.T) {
	t.Parallel()
	p := SummaryPrompt("body", Bounds{MinLength: 30, MaxLength: 120})
	assert.Contains(t, p, "30 to 120 tokens")
	assert.Contains(t, p, "\n\nbody")
}

func TestFactoriesRejectUnknownProvider(t *testing.T) {
	t.Parallel()
	_, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "mystery"})
	assert.Error(t, err)
	_, err = NewSummarizer(context.Background(), config.SummarizerConfig{Provider: "mystery"})
	assert.Error(t, err)
}

func TestFactoriesBuildOpenAI(t *testing.T) {
	t.Parallel()
	e, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.NotNil(t, e)

	s, err := NewSummarizer(context.Background(), config.SummarizerConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "m", MaxLength: 120})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestGeminiRequiresKey(t *testing.T) {
	t.Parallel()
	_, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: config.ProviderGemini, Model: "text-embedding-004"})
	assert.Error(t, err)
}
