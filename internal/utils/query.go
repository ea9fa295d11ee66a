package utils

import (
	"net/url"
	"strings"
)

// ParseQueryList collects a list parameter given either repeated or
// comma-separated, or both:
//
//	?category=hospital,clinic           → ["hospital","clinic"]
//	?category=hospital&category=clinic  → ["hospital","clinic"]
//
// Blank entries and repeats are dropped; first occurrence order is kept.
func ParseQueryList(q url.Values, key string) []string {
	values := q[key]
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
