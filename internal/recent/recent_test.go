package recent

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseList checks ordering, dedup and eviction for any List.
func exerciseList(t *testing.T, l List) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		require.NoError(t, l.Add(ctx, fmt.Sprintf("q%d", i)))
	}
	items, err := l.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q4", "q3", "q2"}, items, "capacity 3 evicts the oldest")

	require.NoError(t, l.Add(ctx, "q2"))
	items, err = l.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q2", "q4", "q3"}, items, "re-adding moves to front")

	require.NoError(t, l.Add(ctx, "   "))
	items, err = l.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestDeque(t *testing.T) {
	t.Parallel()
	exerciseList(t, NewDeque(3))
}

func TestDequeItemsIsACopy(t *testing.T) {
	t.Parallel()
	d := NewDeque(2)
	require.NoError(t, d.Add(context.Background(), "a"))
	items, _ := d.Items(context.Background())
	items[0] = "mutated"
	again, _ := d.Items(context.Background())
	assert.Equal(t, []string{"a"}, again)
}

func TestRedis(t *testing.T) {
	t.Parallel()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseList(t, NewRedis(client, "searchagent:recent", 3))
}

func TestRedisFailure(t *testing.T) {
	t.Parallel()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	srv.Close()

	l := NewRedis(client, "k", 3)
	assert.Error(t, l.Add(context.Background(), "q"))
	_, err := l.Items(context.Background())
	assert.Error(t, err)
}
