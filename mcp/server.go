// Package mcp serves the agent as a Model Context Protocol tool so other
// assistants can ask web questions over stdio.
package mcp

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mohammad-safakhou/searchagent/internal/agent"
	"github.com/mohammad-safakhou/searchagent/internal/logging"
)

const ToolName = "ask_web"

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, query string) (agent.Answer, error)
}

type AskParams struct {
	Query string `json:"query" jsonschema:"The web search question to answer"`
}

type AskResult struct {
	ID           string  `json:"id"`
	Summary      string  `json:"summary"`
	Cached       bool    `json:"cached"`
	MatchedQuery string  `json:"matched_query,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// NewServer registers the ask_web tool backed by a.
func NewServer(a Asker, version string, logger *slog.Logger) *mcpsdk.Server {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "mcp")

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "searchagent",
		Version: version,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolName,
		Description: "Answer a web search question with short summaries of the top result pages. Similar past questions are answered from memory.",
	}, func(ctx context.Context, _ *mcpsdk.CallToolRequest, in AskParams) (*mcpsdk.CallToolResult, AskResult, error) {
		ans, err := a.Ask(ctx, in.Query)
		if err != nil {
			logger.Info("ask_web failed", "query", in.Query, "error", err)
			return &mcpsdk.CallToolResult{
				IsError: true,
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: agent.UserMessage(err)}},
			}, AskResult{}, nil
		}
		if ans.StoreErr != nil {
			logger.Warn("answer not remembered", "error", ans.StoreErr)
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: ans.Summary}},
		}, AskResult{
			ID:           ans.ID,
			Summary:      ans.Summary,
			Cached:       ans.Cached,
			MatchedQuery: ans.MatchedQuery,
			Score:        ans.Score,
		}, nil
	})
	return server
}

// ServeStdio runs the server on stdin/stdout until ctx ends or the client
// disconnects.
func ServeStdio(ctx context.Context, server *mcpsdk.Server) error {
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server stopped")
	}
	return nil
}
