// Package query decides whether free text is a web search question.
package query

import (
	"regexp"
	"strings"
)

// taskKeywords mark inputs that ask the agent to perform an action rather
// than look something up.
var taskKeywords = []string{"add", "walk", "remind", "call", "email", "set alarm", "buy", "order", "schedule"}

var taskPattern = buildPattern(taskKeywords)

func buildPattern(words []string) *regexp.Regexp {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// IsValid reports whether text looks like a search question. Empty input
// and inputs naming a task keyword as a whole word are rejected.
func IsValid(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return !taskPattern.MatchString(text)
}

// Validator adapts IsValid to the predicate the agent expects.
type Validator struct{}

func (Validator) IsValid(text string) bool { return IsValid(text) }
