// Package summarizer condenses fetched sources into per-source entries and
// renders them as one markdown aggregate.
package summarizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/searchagent/internal/acquisition"
	"github.com/mohammad-safakhou/searchagent/internal/helpers"
)

const (
	DefaultMaxInputChars = 1024

	NoContentText    = "No readable content found."
	NoSummariesText  = "No summaries could be generated."
	ModelErrorPrefix = "Error summarizing: "
)

// Outcome says how an entry's summary was produced.
type Outcome string

const (
	OutcomeSummarized  Outcome = "summarized"
	OutcomeNoContent   Outcome = "no-content"
	OutcomeFetchFailed Outcome = "fetch-failed"
	OutcomeModelFailed Outcome = "model-failed"
)

// Entry is the summary of one source.
type Entry struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Summary string  `json:"summary"`
	Outcome Outcome `json:"outcome"`
}

// Model is the text-to-summary backend.
type Model interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Summarizer struct {
	model         Model
	maxInputChars int
}

func New(model Model, maxInputChars int) *Summarizer {
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &Summarizer{model: model, maxInputChars: maxInputChars}
}

// Entry summarizes one source. Failures are folded into the entry; the model
// is only called for sources with readable text.
func (s *Summarizer) Entry(ctx context.Context, src acquisition.SourceResult) Entry {
	e := Entry{Title: src.Title, URL: src.URL}
	if e.Title == "" {
		e.Title = src.URL
	}
	switch {
	case src.Status == acquisition.StatusFetchError:
		e.Summary, e.Outcome = helpers.CollapseSpace(src.Text), OutcomeFetchFailed
	case helpers.IsBlank(src.Text):
		e.Summary, e.Outcome = NoContentText, OutcomeNoContent
	default:
		out, err := s.model.Summarize(ctx, helpers.TruncateRunes(src.Text, s.maxInputChars))
		if err != nil {
			e.Summary, e.Outcome = ModelErrorPrefix+helpers.CollapseSpace(err.Error()), OutcomeModelFailed
		} else if helpers.IsBlank(out) {
			e.Summary, e.Outcome = NoContentText, OutcomeNoContent
		} else {
			// one line per summary keeps the aggregate parseable
			e.Summary, e.Outcome = helpers.CollapseSpace(out), OutcomeSummarized
		}
	}
	return e
}

// Summarize runs Entry over every source in order.
func (s *Summarizer) Summarize(ctx context.Context, sources []acquisition.SourceResult) []Entry {
	out := make([]Entry, len(sources))
	for i, src := range sources {
		out[i] = s.Entry(ctx, src)
	}
	return out
}

// Format renders one entry.
func Format(e Entry) string {
	return fmt.Sprintf("- [%s](%s)\n  %s\n", e.Title, e.URL, e.Summary)
}

// Aggregate joins formatted entries with a blank line. It never returns an
// empty string.
func Aggregate(entries []Entry) string {
	if len(entries) == 0 {
		return NoSummariesText
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = Format(e)
	}
	return strings.Join(parts, "\n")
}

// Aggregate joins entries the same way as the package-level Aggregate.
func (s *Summarizer) Aggregate(entries []Entry) string {
	return Aggregate(entries)
}

var entryPattern = regexp.MustCompile(`(?m)^- \[(.*)\]\((\S*)\)\n  (.*)$`)

// ParseEntries recovers entries from an aggregate. Outcomes are inferred
// from the placeholder texts.
func ParseEntries(aggregate string) []Entry {
	matches := entryPattern.FindAllStringSubmatch(aggregate, -1)
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		e := Entry{Title: m[1], URL: m[2], Summary: m[3], Outcome: OutcomeSummarized}
		switch {
		case m[3] == NoContentText:
			e.Outcome = OutcomeNoContent
		case strings.HasPrefix(m[3], acquisition.ScrapeErrorPrefix):
			e.Outcome = OutcomeFetchFailed
		case strings.HasPrefix(m[3], ModelErrorPrefix):
			e.Outcome = OutcomeModelFailed
		}
		out = append(out, e)
	}
	return out
}
