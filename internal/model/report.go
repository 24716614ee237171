package model

import "time"

// ScraperStats aggregates invocation outcomes for one scraper across a run.
type ScraperStats struct {
	Name        string `json:"name"`
	Invocations int64  `json:"invocations"`
	Errors      int64  `json:"errors"`
}

// RunReport is the complete output of one verification run: one record per
// input lead (input order preserved) plus run-level metadata.
type RunReport struct {
	RunID     string               `json:"run_id"`
	Mode      string               `json:"mode"`
	StartedAt time.Time            `json:"started_at"`
	ElapsedMS int64                `json:"elapsed_ms"`
	Records   []ConsolidatedRecord `json:"records"`
	Scrapers  []ScraperStats       `json:"scrapers"` // configured order
}

// TotalErrors sums the per-scraper error counters.
func (r *RunReport) TotalErrors() int64 {
	var n int64
	for _, s := range r.Scrapers {
		n += s.Errors
	}
	return n
}

// LeadsWithErrors counts records carrying at least one source error.
func (r *RunReport) LeadsWithErrors() int {
	n := 0
	for _, rec := range r.Records {
		if len(rec.Errors) > 0 {
			n++
		}
	}
	return n
}
