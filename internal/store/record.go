package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Record is one remembered answer: the original query, its embedding and the
// aggregated summary. Records are append-only and ordered by ID.
type Record struct {
	ID        int64
	Query     string
	Embedding []float32
	Summary   string
	CreatedAt time.Time
}

// RecordStore persists records. Append assigns the next ID; ScanAll returns
// every record in insertion order.
type RecordStore interface {
	Append(ctx context.Context, rec Record) (Record, error)
	ScanAll(ctx context.Context) ([]Record, error)
	Close() error
}

// NearestSearcher is implemented by stores that can answer a cosine
// nearest-neighbour query natively. Ties resolve to the lowest ID.
type NearestSearcher interface {
	Nearest(ctx context.Context, vec []float32) (rec Record, score float64, found bool, err error)
}

// EncodeEmbedding packs vec as little-endian 32-bit floats.
func EncodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeEmbedding unpacks a little-endian float32 blob.
func DecodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
