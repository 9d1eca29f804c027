//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPgvector(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:0.8.1-pg17",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "searchagent",
			"POSTGRES_PASSWORD": "searchagent",
			"POSTGRES_DB":       "searchagent",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://searchagent:searchagent@%s:%s/searchagent?sslmode=disable", host, port.Port())
}

func TestPostgresIntegration(t *testing.T) {
	ctx := context.Background()
	dsn := startPgvector(ctx, t)

	require.NoError(t, Migrate("", dsn, "up", 0))
	// a second run is a no-op
	require.NoError(t, Migrate("", dsn, "up", 0))

	st, err := NewPostgres(ctx, dsn, 5*time.Second)
	require.NoError(t, err)
	defer st.Close()

	exerciseAppendOnly(t, st)

	// two identical vectors tie; the earlier id wins
	rec, score, found, err := st.Nearest(ctx, []float32{1, 0})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), rec.ID)
	assert.InDelta(t, 1.0, score, 1e-6)

	// vectors of another dimension are ignored
	_, _, found, err = st.Nearest(ctx, []float32{1, 0, 0})
	require.NoError(t, err)
	assert.False(t, found)
}
