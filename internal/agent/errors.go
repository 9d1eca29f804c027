package agent

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/tools/embedding"
)

var (
	// ErrInvalidQuery means the input was rejected before any work ran.
	ErrInvalidQuery = goerr.New("invalid query")
	// ErrEmbeddingUnavailable aborts the run; nothing is stored.
	ErrEmbeddingUnavailable = embedding.ErrEmbeddingUnavailable
	// ErrNoResults means every search provider came back empty.
	ErrNoResults = goerr.New("no web results")
	// ErrEmptySummary means no source produced a usable summary.
	ErrEmptySummary = goerr.New("empty summary")
)

// User-facing messages for the run-halting errors.
const (
	MsgInvalidQuery = "❌ This is not a valid query. Please enter a web search question."
	MsgNoResults    = "❌ No web results found. Please try a different query."
	MsgEmptySummary = "❌ Summary could not be generated. The web pages may have had little or no readable content."
	MsgEmbedding    = "❌ Could not embed the query. Please try again later."
	MsgInternal     = "❌ Something went wrong while answering. Please try again."
)

// UserMessage maps err to the text shown to the person asking.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return MsgInvalidQuery
	case errors.Is(err, ErrNoResults):
		return MsgNoResults
	case errors.Is(err, ErrEmptySummary):
		return MsgEmptySummary
	case errors.Is(err, ErrEmbeddingUnavailable):
		return MsgEmbedding
	default:
		return MsgInternal
	}
}
