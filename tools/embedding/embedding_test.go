package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendFunc func(ctx context.Context, text string) ([]float32, error)

func (f backendFunc) Embed(ctx context.Context, text string) ([]float32, error) { return f(ctx, text) }

func fixed(vec []float32, err error) backendFunc {
	return func(context.Context, string) ([]float32, error) { return vec, err }
}

func TestEmbed(t *testing.T) {
	t.Parallel()
	e := NewEmbedding(fixed([]float32{1, 2, 3}, nil), 3)
	vec, err := e.Embed(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, 3, e.Dimensions())
}

func TestEmbedFailures(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		backend backendFunc
		input   string
	}{
		"backend error":   {fixed(nil, errors.New("503")), "q"},
		"empty vector":    {fixed([]float32{}, nil), "q"},
		"wrong dimension": {fixed([]float32{1, 2}, nil), "q"},
		"nan":             {fixed([]float32{1, float32(math.NaN()), 3}, nil), "q"},
		"blank input":     {fixed([]float32{1, 2, 3}, nil), "  "},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewEmbedding(tc.backend, 3).Embed(context.Background(), tc.input)
			assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
		})
	}
}

func TestEmbedKeepsBackendCause(t *testing.T) {
	t.Parallel()
	_, err := NewEmbedding(fixed(nil, context.Canceled), 3).Embed(context.Background(), "q")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedAnyDimensionWhenUnpinned(t *testing.T) {
	t.Parallel()
	vec, err := NewEmbedding(fixed([]float32{0.5}, nil), 0).Embed(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, vec, 1)
}
