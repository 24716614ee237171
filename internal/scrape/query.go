package scrape

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldName strips diacritics and collapses whitespace so names survive
// people-search query encoding ("José  García" -> "Jose Garcia").
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(folded), " ")
}

// slugify lowercases a query fragment and joins its words with dashes, the
// path form the people-search sites use ("Jose Garcia" -> "jose-garcia").
func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// setNumbered writes values into fields under base, base_2, base_3, ...
// skipping blanks and duplicates.
func setNumbered(fields map[string]string, base string, values []string) {
	n := 0
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		n++
		if n == 1 {
			fields[base] = v
			continue
		}
		fields[fmt.Sprintf("%s_%d", base, n)] = v
	}
}
