package recent

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

// Redis is a List shared across processes, stored as a capped redis list.
type Redis struct {
	client   *redis.Client
	key      string
	capacity int
}

func NewRedis(client *redis.Client, key string, capacity int) *Redis {
	if capacity < 1 {
		capacity = 1
	}
	return &Redis{client: client, key: key, capacity: capacity}
}

func (r *Redis) Add(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, r.key, 0, query)
		pipe.LPush(ctx, r.key, query)
		pipe.LTrim(ctx, r.key, 0, int64(r.capacity-1))
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to record recent query", goerr.V("key", r.key))
	}
	return nil
}

func (r *Redis) Items(ctx context.Context) ([]string, error) {
	items, err := r.client.LRange(ctx, r.key, 0, int64(r.capacity-1)).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read recent queries", goerr.V("key", r.key))
	}
	return items, nil
}
