// Package listview implements the shared list screen behavior: free-text
// search across a fixed set of string fields, equality filters on
// categorical fields, and an offset cursor that resets whenever the filter
// set changes. The free-text search deliberately operates on the fetched
// page only, mirroring the platform dashboards; responses mark this with
// searchScope "page".
package listview

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Search  string            `json:"search"`
	Filters map[string]string `json:"filters,omitempty"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// Page is the pagination envelope shared with the upstream API.
type Page struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// ParseParams reads list parameters from a query string. Filter keys are the
// categorical fields the caller accepts; empty values are dropped.
func ParseParams(query url.Values, filterKeys ...string) Params {
	p := Params{
		Search: strings.TrimSpace(query.Get("search")),
		Limit:  parseIntWithDefault(query.Get("limit"), DefaultLimit),
		Offset: parseIntWithDefault(query.Get("offset"), 0),
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	for _, key := range filterKeys {
		value := strings.TrimSpace(query.Get(key))
		if value == "" {
			continue
		}
		if p.Filters == nil {
			p.Filters = make(map[string]string)
		}
		p.Filters[key] = value
	}
	return p
}

// ParseParamsWithReset parses the current list parameters and applies the
// cursor-reset rule against the previously applied view, which travels in
// the same query string under the "prev." prefix (prev.search, prev.<key>).
// Requests that carry no prev.* keys are plain pagination and keep their
// offset.
func ParseParamsWithReset(query url.Values, filterKeys ...string) Params {
	current := ParseParams(query, filterKeys...)
	prev, ok := previousParams(query, filterKeys...)
	if !ok {
		return current
	}
	return current.Normalize(prev)
}

func previousParams(query url.Values, filterKeys ...string) (Params, bool) {
	prev := Params{}
	present := query.Has("prev.search")
	prev.Search = strings.TrimSpace(query.Get("prev.search"))
	for _, key := range filterKeys {
		if !query.Has("prev." + key) {
			continue
		}
		present = true
		value := strings.TrimSpace(query.Get("prev." + key))
		if value == "" {
			continue
		}
		if prev.Filters == nil {
			prev.Filters = make(map[string]string)
		}
		prev.Filters[key] = value
	}
	return prev, present
}

// Normalize resets the offset to the first page whenever the search text or
// any filter changed relative to the previously applied params.
func (p Params) Normalize(prev Params) Params {
	if p.Search != prev.Search || !equalFilters(p.Filters, prev.Filters) {
		p.Offset = 0
	}
	return p
}

func equalFilters(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for key, value := range a {
		if b[key] != value {
			return false
		}
	}
	return true
}

// Apply filters the fetched page in place of a server-side search:
// case-insensitive substring match across searchFields plus exact matches on
// the categorical filters.
func Apply[T any](rows []T, searchFields func(T) []string, filterFields func(T) map[string]string, p Params) []T {
	out := make([]T, 0, len(rows))
	needle := strings.ToLower(strings.TrimSpace(p.Search))
	for _, row := range rows {
		if needle != "" && !matchesSearch(searchFields(row), needle) {
			continue
		}
		if !matchesFilters(filterFields(row), p.Filters) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func matchesSearch(fields []string, needle string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func matchesFilters(fields map[string]string, filters map[string]string) bool {
	for key, expected := range filters {
		if !strings.EqualFold(fields[key], expected) {
			return false
		}
	}
	return true
}

func parseIntWithDefault(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
