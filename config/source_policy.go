package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SourcePolicyConfig lists domains that search results are never fetched from.
// Entries match the domain itself and any subdomain.
type SourcePolicyConfig struct {
	Disallow []string `mapstructure:"disallow" json:"disallow"`
}

// Normalize lowercases entries, strips schemes and "www." and removes duplicates.
func (c SourcePolicyConfig) Normalize() SourcePolicyConfig {
	return SourcePolicyConfig{Disallow: sanitizeDomainList(c.Disallow)}
}

// Validate ensures every entry is a bare host name.
func (c SourcePolicyConfig) Validate() error {
	for _, raw := range c.Disallow {
		host := normalizeHost(raw)
		if host == "" {
			return fmt.Errorf("acquisition.source_policy.disallow entry must not be empty")
		}
		if strings.ContainsAny(host, "/?# ") {
			return fmt.Errorf("acquisition.source_policy.disallow entry %q is not a host name", raw)
		}
	}
	return nil
}

func sanitizeDomainList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		host := normalizeHost(raw)
		if host == "" {
			continue
		}
		seen[host] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for host := range seen {
		out = append(out, host)
	}
	sort.Strings(out)
	return out
}

func normalizeHost(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if u, err := url.Parse(value); err == nil && u.Host != "" {
			return strings.TrimPrefix(u.Hostname(), "www.")
		}
	}
	return strings.TrimPrefix(value, "www.")
}
