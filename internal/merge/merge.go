// Package merge consolidates per-scraper verification results into one
// record per lead. Precedence follows config order: the first scraper to
// produce a non-empty value for a field owns it, later scrapers only fill
// fields still missing.
package merge

import (
	"strings"

	"github.com/sells-group/leadverify/internal/model"
	"github.com/sells-group/leadverify/internal/scrape"
)

// Record consolidates results for one lead. Results must arrive in config
// order; failed results contribute their error and nothing else.
func Record(lead model.Lead, results []scrape.Result) model.ConsolidatedRecord {
	rec := model.ConsolidatedRecord{
		Lead:   lead,
		Fields: make(map[string]model.FieldValue),
	}

	for _, res := range results {
		if res.Err != nil {
			rec.Errors = append(rec.Errors, model.SourceError{
				Source:  res.Source,
				Kind:    string(res.Err.Kind),
				Message: res.Err.Message,
			})
			continue
		}
		for key, value := range res.Fields {
			if _, taken := rec.Fields[key]; taken {
				continue
			}
			// Whitespace never claims a field.
			if strings.TrimSpace(value) == "" {
				continue
			}
			rec.Fields[key] = model.FieldValue{Value: value, Source: res.Source}
		}
	}
	return rec
}
