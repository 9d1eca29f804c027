package helpers

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainOnce   sync.Once
	plainPolicy *bluemonday.Policy
)

func plain() *bluemonday.Policy {
	plainOnce.Do(func() { plainPolicy = bluemonday.StrictPolicy() })
	return plainPolicy
}

// SanitizeHTMLStrict strips all markup from s and trims it. Scraped titles and
// model output pass through here before they reach a browser.
func SanitizeHTMLStrict(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(plain().Sanitize(s))
}
