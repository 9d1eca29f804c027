// Package cache implements the semantic dedup cache: a nearest-neighbour
// lookup over remembered query embeddings backed by an append-only store.
//
// The reference lookup is a linear scan, O(n·d) per query. Stores that
// implement store.NearestSearcher can answer from an index instead when the
// cache is built WithIndex.
package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/internal/logging"
	"github.com/mohammad-safakhou/searchagent/internal/store"
)

// ErrDimensionMismatch is returned when a vector does not have the
// configured embedding dimension, or the dimension already in the store.
var ErrDimensionMismatch = goerr.New("embedding dimension mismatch")

// Match is a cache hit.
type Match struct {
	Record store.Record
	Score  float64
}

type SimilarityCache struct {
	store    store.RecordStore
	dim      int
	useIndex bool
	logger   *slog.Logger

	// without a configured dim, the first record fixes it
	mu     sync.Mutex
	pinned int
	loaded bool
}

type Option func(*SimilarityCache)

// WithDimensions pins the embedding dimension every stored vector must have.
func WithDimensions(n int) Option {
	return func(c *SimilarityCache) { c.dim = n }
}

// WithIndex answers lookups through the store's native nearest search when
// it has one.
func WithIndex() Option {
	return func(c *SimilarityCache) { c.useIndex = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *SimilarityCache) { c.logger = l }
}

func New(st store.RecordStore, opts ...Option) *SimilarityCache {
	c := &SimilarityCache{store: st, logger: logging.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cache")
	return c
}

func (c *SimilarityCache) checkDim(vec []float32) error {
	if len(vec) == 0 {
		return goerr.Wrap(ErrDimensionMismatch, "empty vector")
	}
	if c.dim > 0 && len(vec) != c.dim {
		return goerr.Wrap(ErrDimensionMismatch, "unexpected vector length",
			goerr.V("want", c.dim), goerr.V("got", len(vec)))
	}
	return nil
}

// FindNearest returns the stored record most similar to vec whose score is
// at least threshold. Ties at the best score go to the earliest record.
// Errors come from the backing store; callers may treat them as a miss.
func (c *SimilarityCache) FindNearest(ctx context.Context, vec []float32, threshold float64) (Match, bool, error) {
	if err := c.checkDim(vec); err != nil {
		return Match{}, false, err
	}
	if c.useIndex {
		if ns, ok := c.store.(store.NearestSearcher); ok {
			rec, score, found, err := ns.Nearest(ctx, vec)
			if err != nil {
				return Match{}, false, goerr.Wrap(err, "nearest search failed")
			}
			if !found || score < threshold {
				return Match{}, false, nil
			}
			return Match{Record: rec, Score: score}, true, nil
		}
	}

	records, err := c.store.ScanAll(ctx)
	if err != nil {
		return Match{}, false, goerr.Wrap(err, "failed to scan records")
	}
	var (
		best    Match
		found   bool
		skipped int
	)
	for _, rec := range records {
		if len(rec.Embedding) != len(vec) {
			skipped++
			continue
		}
		score := CosineSimilarity(vec, rec.Embedding)
		if score < threshold {
			continue
		}
		// strict > keeps the earliest record on ties
		if !found || score > best.Score {
			best = Match{Record: rec, Score: score}
			found = true
		}
	}
	if skipped > 0 {
		c.logger.Warn("skipped records with a different embedding dimension",
			"skipped", skipped, "dimension", len(vec))
	}
	return best, found, nil
}

// Store appends a new record. It never updates or deduplicates existing ones.
// Every stored vector shares one dimension: the configured one, or else the
// dimension of the first record in the store.
func (c *SimilarityCache) Store(ctx context.Context, query string, vec []float32, summary string) (store.Record, error) {
	if err := c.checkDim(vec); err != nil {
		return store.Record{}, err
	}
	if c.dim == 0 {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.checkPinned(ctx, len(vec)); err != nil {
			return store.Record{}, err
		}
	}
	rec, err := c.store.Append(ctx, store.Record{Query: query, Embedding: vec, Summary: summary})
	if err != nil {
		return store.Record{}, goerr.Wrap(err, "failed to append record", goerr.V("query", query))
	}
	if c.dim == 0 && c.pinned == 0 {
		c.pinned = len(vec)
	}
	return rec, nil
}

// checkPinned compares n with the stored dimension, reading it from the
// store once. Callers hold c.mu.
func (c *SimilarityCache) checkPinned(ctx context.Context, n int) error {
	if !c.loaded {
		records, err := c.store.ScanAll(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to read stored dimension")
		}
		for _, rec := range records {
			if len(rec.Embedding) > 0 {
				c.pinned = len(rec.Embedding)
				break
			}
		}
		c.loaded = true
	}
	if c.pinned > 0 && n != c.pinned {
		return goerr.Wrap(ErrDimensionMismatch, "vector does not match stored records",
			goerr.V("want", c.pinned), goerr.V("got", n))
	}
	return nil
}
