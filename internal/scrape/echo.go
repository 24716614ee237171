package scrape

import (
	"context"
	"strings"

	"github.com/sells-group/leadverify/internal/model"
)

// EchoName is the registry identifier of the bundled reference scraper.
const EchoName = "echo"

// EchoScraper returns the contact fields already present on the lead. It
// performs no I/O and exists to exercise the engine end to end; with the
// include_metadata option it also surfaces the lead's metadata columns.
type EchoScraper struct {
	includeMetadata bool
}

// NewEchoScraper builds the reference scraper.
func NewEchoScraper(opts Options) (Scraper, error) {
	return &EchoScraper{
		includeMetadata: opts.Bool("include_metadata", false),
	}, nil
}

func (e *EchoScraper) Name() string         { return EchoName }
func (e *EchoScraper) Parallelizable() bool { return true }

func (e *EchoScraper) Verify(_ context.Context, lead model.Lead) (*Result, error) {
	fields := make(map[string]string)
	if v := strings.TrimSpace(lead.Phone); v != "" {
		fields[model.FieldPhone] = v
	}
	if v := strings.TrimSpace(lead.Email); v != "" {
		fields[model.FieldEmail] = v
	}
	if e.includeMetadata {
		for k, v := range lead.Metadata {
			if v = strings.TrimSpace(v); v != "" {
				fields[k] = v
			}
		}
	}
	return &Result{Fields: fields}, nil
}
