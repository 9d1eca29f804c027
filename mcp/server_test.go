package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mohammad-safakhou/searchagent/internal/agent"
	"github.com/mohammad-safakhou/searchagent/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askerFunc func(ctx context.Context, q string) (agent.Answer, error)

func (f askerFunc) Ask(ctx context.Context, q string) (agent.Answer, error) { return f(ctx, q) }

func connect(t *testing.T, a Asker) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverT, clientT := mcpsdk.NewInMemoryTransports()

	server := NewServer(a, "test", logging.Discard())
	ss, err := server.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestAskWebTool(t *testing.T) {
	t.Parallel()
	cs := connect(t, askerFunc(func(_ context.Context, q string) (agent.Answer, error) {
		assert.Equal(t, "tallest mountain", q)
		return agent.Answer{ID: "r1", Summary: "- [Everest](https://e.example)\n  8849 m.\n", Cached: true, MatchedQuery: "highest mountain", Score: 0.93}, nil
	}))

	tools, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, ToolName, tools.Tools[0].Name)

	res, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      ToolName,
		Arguments: map[string]any{"query": "tallest mountain"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Everest")

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out AskResult
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Cached)
	assert.Equal(t, "highest mountain", out.MatchedQuery)
	assert.InDelta(t, 0.93, out.Score, 1e-9)
}

func TestAskWebToolError(t *testing.T) {
	t.Parallel()
	cs := connect(t, askerFunc(func(context.Context, string) (agent.Answer, error) {
		return agent.Answer{}, agent.ErrNoResults
	}))

	res, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      ToolName,
		Arguments: map[string]any{"query": "zzzz"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	text := res.Content[0].(*mcpsdk.TextContent)
	assert.Equal(t, agent.MsgNoResults, text.Text)
}
