package helpers

import (
	"errors"
	"net/url"
	"path"
	"sort"
	"strings"
)

var trackingQueryParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"dclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"igshid":       {},
}

// AbsoluteHTTPURL parses raw and reports whether it is a well-formed absolute
// http(s) URL with a host.
func AbsoluteHTTPURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

// HostMatches reports whether host equals domain or is one of its subdomains.
// Both sides are compared case-insensitively with a leading "www." ignored.
func HostMatches(host, domain string) bool {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSuffix(host, ".")), "www.")
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// CanonicalURL normalises a URL string for comparison.
// It lowercases scheme/host, removes default ports, strips fragments,
// cleans path segments, removes tracking query parameters (utm_*, fbclid, etc.)
// and sorts remaining query parameters deterministically.
func CanonicalURL(raw string) (string, error) {
	parsed, ok := AbsoluteHTTPURL(raw)
	if !ok {
		return "", errors.New("not an absolute http(s) url")
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)

	host := strings.ToLower(parsed.Hostname())
	if port := parsed.Port(); port != "" {
		if !(parsed.Scheme == "http" && port == "80") && !(parsed.Scheme == "https" && port == "443") {
			host = host + ":" + port
		}
	}
	parsed.Host = host

	if parsed.Path == "" {
		parsed.Path = "/"
	}
	cleanPath := path.Clean(parsed.Path)
	if cleanPath == "." {
		cleanPath = "/"
	}
	if cleanPath != "/" && strings.HasSuffix(parsed.Path, "/") {
		cleanPath += "/"
	}
	parsed.Path = cleanPath
	parsed.RawPath = ""
	parsed.Fragment = ""

	query := parsed.Query()
	for key := range query {
		if _, drop := trackingQueryParams[strings.ToLower(key)]; drop {
			query.Del(key)
		}
	}
	if len(query) == 0 {
		parsed.RawQuery = ""
		return parsed.String(), nil
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		values := append([]string(nil), query[key]...)
		sort.Strings(values)
		for _, value := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			if value != "" {
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(value))
			}
		}
	}
	parsed.RawQuery = b.String()
	return parsed.String(), nil
}
