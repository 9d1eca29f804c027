// Package embedding wraps a model backend with the checks every query vector
// must pass before it reaches the cache.
package embedding

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrEmbeddingUnavailable covers a failing backend and unusable vectors.
var ErrEmbeddingUnavailable = goerr.New("embedding unavailable")

// Backend is the raw model call.
type Backend interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Embedding struct {
	backend    Backend
	dimensions int
}

// NewEmbedding wraps backend. A positive dimensions rejects vectors of any
// other length.
func NewEmbedding(backend Backend, dimensions int) *Embedding {
	return &Embedding{backend: backend, dimensions: dimensions}
}

func (e *Embedding) Dimensions() int { return e.dimensions }

// Embed returns the vector for text. Every failure wraps
// ErrEmbeddingUnavailable; a backend failure also keeps its own cause.
func (e *Embedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(ErrEmbeddingUnavailable, "empty input")
	}
	vec, err := e.backend.Embed(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrEmbeddingUnavailable, err), "backend failed")
	}
	if len(vec) == 0 {
		return nil, goerr.Wrap(ErrEmbeddingUnavailable, "backend returned an empty vector")
	}
	if e.dimensions > 0 && len(vec) != e.dimensions {
		return nil, goerr.Wrap(ErrEmbeddingUnavailable, "unexpected vector length",
			goerr.V("want", e.dimensions), goerr.V("got", len(vec)))
	}
	for _, f := range vec {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, goerr.Wrap(ErrEmbeddingUnavailable, "vector contains non-finite values")
		}
	}
	return vec, nil
}
