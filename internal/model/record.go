package model

import "sort"

// FieldValue is one merged output field together with the scraper that
// contributed it.
type FieldValue struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// SourceError records one scraper failure encountered while verifying a
// lead. Errors are kept in configured scraper order.
type SourceError struct {
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ConsolidatedRecord is the merged per-lead output: the original lead, the
// fields discovered by scrapers (first configured source wins per field),
// and every per-source error hit along the way. Exactly one exists per
// input lead on a completed run.
type ConsolidatedRecord struct {
	Lead   Lead                  `json:"lead"`
	Fields map[string]FieldValue `json:"fields,omitempty"`
	Errors []SourceError         `json:"errors,omitempty"`
}

// Value returns the merged value for a field key, or "" when no scraper
// filled it.
func (r ConsolidatedRecord) Value(key string) string {
	return r.Fields[key].Value
}

// Source returns the scraper that contributed a field, or "" when the
// field is unfilled.
func (r ConsolidatedRecord) Source(key string) string {
	return r.Fields[key].Source
}

// FieldKeys returns the discovered field keys in sorted order for
// deterministic rendering.
func (r ConsolidatedRecord) FieldKeys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sources returns the distinct scrapers that contributed at least one
// field, in sorted order.
func (r ConsolidatedRecord) Sources() []string {
	seen := make(map[string]struct{}, len(r.Fields))
	for _, fv := range r.Fields {
		seen[fv.Source] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
