package orchestrator

import (
	"errors"
	"fmt"

	"github.com/sells-group/leadverify/internal/model"
)

var (
	// ErrInvalidMode rejects run modes other than sequential and concurrent.
	ErrInvalidMode = errors.New("invalid run mode")

	// ErrWorkerPoolExhausted rejects concurrent runs configured with no
	// worker capacity.
	ErrWorkerPoolExhausted = errors.New("worker pool exhausted")
)

// AbortedError reports a run cancelled by its abort-on-error policy. It
// identifies the lead and scraper that triggered the abort and wraps the
// classified scrape error.
type AbortedError struct {
	Lead   model.Lead
	Source string
	Err    error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("run aborted: scraper %s failed on lead %d: %v", e.Source, e.Lead.Index, e.Err)
}

func (e *AbortedError) Unwrap() error { return e.Err }
