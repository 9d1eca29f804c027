package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pgvector/pgvector-go"
)

// Postgres stores records in the results table. The raw embedding is kept as
// a little-endian blob; a pgvector copy backs Nearest.
type Postgres struct {
	DB *sql.DB
}

// NewPostgres opens and pings a Postgres connection.
func NewPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) Append(ctx context.Context, rec Record) (Record, error) {
	if len(rec.Embedding) == 0 {
		return Record{}, goerr.New("embedding must not be empty", goerr.V("query", rec.Query))
	}
	err := p.DB.QueryRowContext(ctx, `
INSERT INTO results (query, embedding, embedding_vec, summary)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at
`, rec.Query, EncodeEmbedding(rec.Embedding), pgvector.NewVector(rec.Embedding), rec.Summary).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return Record{}, goerr.Wrap(err, "failed to insert record", goerr.V("query", rec.Query))
	}
	return rec, nil
}

func (p *Postgres) ScanAll(ctx context.Context) ([]Record, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT id, query, embedding, summary, created_at FROM results ORDER BY id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan records")
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate records")
	}
	return out, nil
}

// Nearest returns the record with the smallest cosine distance among those
// sharing vec's dimension.
func (p *Postgres) Nearest(ctx context.Context, vec []float32) (Record, float64, bool, error) {
	if len(vec) == 0 {
		return Record{}, 0, false, goerr.New("vector must not be empty")
	}
	row := p.DB.QueryRowContext(ctx, `
SELECT id, query, embedding, summary, created_at, 1 - (embedding_vec <=> $1) AS score
FROM results
WHERE vector_dims(embedding_vec) = $2
ORDER BY embedding_vec <=> $1, id
LIMIT 1
`, pgvector.NewVector(vec), len(vec))
	var (
		rec   Record
		blob  []byte
		score float64
	)
	err := row.Scan(&rec.ID, &rec.Query, &blob, &rec.Summary, &rec.CreatedAt, &score)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, 0, false, nil
	}
	if err != nil {
		return Record{}, 0, false, goerr.Wrap(err, "failed to query nearest record")
	}
	if rec.Embedding, err = DecodeEmbedding(blob); err != nil {
		return Record{}, 0, false, goerr.Wrap(err, "corrupt embedding", goerr.V("id", rec.ID))
	}
	return rec, score, true, nil
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec  Record
		blob []byte
	)
	if err := rows.Scan(&rec.ID, &rec.Query, &blob, &rec.Summary, &rec.CreatedAt); err != nil {
		return Record{}, goerr.Wrap(err, "failed to scan record")
	}
	vec, err := DecodeEmbedding(blob)
	if err != nil {
		return Record{}, goerr.Wrap(err, "corrupt embedding", goerr.V("id", rec.ID))
	}
	rec.Embedding = vec
	return rec, nil
}
