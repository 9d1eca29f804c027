// Package history keeps a keyword index over remembered queries so past
// answers can be browsed by text, independently of the embedding cache.
package history

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/internal/store"
)

// Hit is one search result.
type Hit struct {
	ID      int64   `json:"id"`
	Query   string  `json:"query"`
	Summary string  `json:"summary"`
	Score   float64 `json:"score"`
}

type document struct {
	Query   string `json:"query"`
	Summary string `json:"summary"`
}

// Index is an in-memory bleve index of stored records.
type Index struct {
	mu    sync.RWMutex
	bleve bleve.Index
	recs  map[string]store.Record
}

func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create history index")
	}
	return &Index{bleve: idx, recs: make(map[string]store.Record)}, nil
}

// Rebuild indexes every record currently in st.
func Rebuild(ctx context.Context, st store.RecordStore) (*Index, error) {
	idx, err := New()
	if err != nil {
		return nil, err
	}
	recs, err := st.ScanAll(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan records for history")
	}
	batch := idx.bleve.NewBatch()
	for _, rec := range recs {
		id := strconv.FormatInt(rec.ID, 10)
		if err := batch.Index(id, document{Query: rec.Query, Summary: rec.Summary}); err != nil {
			return nil, goerr.Wrap(err, "failed to batch record", goerr.V("id", rec.ID))
		}
		idx.recs[id] = rec
	}
	if err := idx.bleve.Batch(batch); err != nil {
		return nil, goerr.Wrap(err, "failed to index records")
	}
	return idx, nil
}

func (x *Index) Add(rec store.Record) error {
	id := strconv.FormatInt(rec.ID, 10)
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.bleve.Index(id, document{Query: rec.Query, Summary: rec.Summary}); err != nil {
		return goerr.Wrap(err, "failed to index record", goerr.V("id", rec.ID))
	}
	x.recs[id] = rec
	return nil
}

// Search runs a match query against query text and summaries. An empty term
// lists the newest records.
func (x *Index) Search(term string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	if strings.TrimSpace(term) == "" {
		return x.newest(limit), nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(term), limit, 0, false)
	res, err := x.bleve.Search(req)
	if err != nil {
		return nil, goerr.Wrap(err, "history search failed", goerr.V("term", term))
	}
	out := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		rec, ok := x.recs[h.ID]
		if !ok {
			continue
		}
		out = append(out, Hit{ID: rec.ID, Query: rec.Query, Summary: rec.Summary, Score: h.Score})
	}
	return out, nil
}

func (x *Index) newest(limit int) []Hit {
	out := make([]Hit, 0, len(x.recs))
	for _, rec := range x.recs {
		out = append(out, Hit{ID: rec.ID, Query: rec.Query, Summary: rec.Summary})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.recs)
}

func (x *Index) Close() error {
	return x.bleve.Close()
}
