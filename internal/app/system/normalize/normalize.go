// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username trims a login name. Usernames are case-sensitive.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status or enum value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CaseID uppercases and trims a case identifier.
func CaseID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// StationCode uppercases and trims a station code.
func StationCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Tags lowercases, trims and de-duplicates tags, dropping empties.
// Order of first appearance is kept.
func Tags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// QueryParam trims a raw query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
