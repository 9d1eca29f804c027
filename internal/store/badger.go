package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"
)

const (
	recordPrefix             = "record/"
	recordSequence           = "seq/record"
	defaultSequenceBandwidth = 100
)

// Badger is an embedded RecordStore. Keys are the record prefix followed by
// the big-endian ID, so prefix iteration yields insertion order.
type Badger struct {
	db  *badger.DB
	seq *badger.Sequence
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// badgerRecord is the stored value layout.
type badgerRecord struct {
	Query     string    `json:"query"`
	Embedding []byte    `json:"embedding"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenBadger opens (creating if needed) a badger database at dir, or an
// in-memory one when inMemory is set.
func OpenBadger(dir string, inMemory bool, logger *slog.Logger) (*Badger, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create badger dir", goerr.V("dir", dir))
		}
		opts = badger.DefaultOptions(dir)
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = &badgerLoggerAdapter{logger: logger.With("component", "badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open badger", goerr.V("dir", dir))
	}
	seq, err := db.GetSequence([]byte(recordSequence), defaultSequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to open record sequence")
	}
	return &Badger{db: db, seq: seq}, nil
}

func recordKey(id int64) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], uint64(id))
	return key
}

func (b *Badger) Append(_ context.Context, rec Record) (Record, error) {
	n, err := b.seq.Next()
	if err != nil {
		return Record{}, goerr.Wrap(err, "failed to allocate record id")
	}
	// sequences start at 0; IDs start at 1 like the SQL backends.
	rec.ID = int64(n) + 1
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	val, err := json.Marshal(badgerRecord{
		Query:     rec.Query,
		Embedding: EncodeEmbedding(rec.Embedding),
		Summary:   rec.Summary,
		CreatedAt: rec.CreatedAt,
	})
	if err != nil {
		return Record{}, goerr.Wrap(err, "failed to encode record")
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.ID), val)
	}); err != nil {
		return Record{}, goerr.Wrap(err, "failed to write record", goerr.V("id", rec.ID))
	}
	rec.Embedding = append([]float32(nil), rec.Embedding...)
	return rec, nil
}

func (b *Badger) ScanAll(ctx context.Context) ([]Record, error) {
	var out []Record
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := int64(binary.BigEndian.Uint64(item.Key()[len(recordPrefix):]))
			var stored badgerRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err != nil {
				return goerr.Wrap(err, "failed to decode record", goerr.V("id", id))
			}
			vec, err := DecodeEmbedding(stored.Embedding)
			if err != nil {
				return goerr.Wrap(err, "corrupt embedding", goerr.V("id", id))
			}
			out = append(out, Record{
				ID:        id,
				Query:     stored.Query,
				Embedding: vec,
				Summary:   stored.Summary,
				CreatedAt: stored.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Badger) Close() error {
	if err := b.seq.Release(); err != nil {
		_ = b.db.Close()
		return goerr.Wrap(err, "failed to release record sequence")
	}
	return b.db.Close()
}
