// Package scrape defines the verification source contract, the bundled
// scraper implementations, and the config-driven factory that binds each
// enabled scraper to its rate limiter for a run.
package scrape

import (
	"context"
	"time"

	"github.com/sells-group/leadverify/internal/model"
)

// Result holds what one scraper discovered for one lead. An empty field
// map means the lookup completed but found nothing.
type Result struct {
	Source string            `json:"source"`
	Fields map[string]string `json:"fields,omitempty"`
	Err    *Error            `json:"error,omitempty"`
	At     time.Time         `json:"at"`
}

// Scraper is one pluggable verification source. Implementations must
// tolerate repeated calls across different leads and report failures as
// classified errors rather than panicking; simultaneous calls on a single
// instance only happen when it declares Parallelizable.
type Scraper interface {
	Verify(ctx context.Context, lead model.Lead) (*Result, error)
	Name() string
}

// Parallelizable marks scraper implementations whose Verify is safe for
// simultaneous calls on one instance. Instances that do not implement it
// are serialized behind a mutex.
type Parallelizable interface {
	Parallelizable() bool
}
