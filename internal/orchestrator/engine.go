// Package orchestrator runs batches of leads through the configured
// scrapers and consolidates the results. A run visits every scraper for
// every lead, either strictly in order (sequential mode) or with a bounded
// worker pool that processes whole leads in parallel (concurrent mode);
// output order always matches input order.
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadverify/internal/merge"
	"github.com/sells-group/leadverify/internal/model"
	"github.com/sells-group/leadverify/internal/scrape"
)

// Mode selects how a run schedules its scraper calls.
type Mode string

const (
	// ModeSequential visits (lead, scraper) pairs one at a time, leads in
	// input order and scrapers in config order within each lead.
	ModeSequential Mode = "sequential"

	// ModeConcurrent processes leads in parallel across a bounded worker
	// pool. Each lead is handled by one worker, which still calls the
	// lead's scrapers in config order.
	ModeConcurrent Mode = "concurrent"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeConcurrent:
		return Mode(s), nil
	}
	return "", eris.Wrapf(ErrInvalidMode, "mode %q", s)
}

// Options configure a run.
type Options struct {
	Mode         Mode
	MaxWorkers   int // pool size in concurrent mode, ignored otherwise
	RaiseOnError bool
	OnProgress   func(completed, total int)
}

// Engine executes verification runs over a fixed set of scraper instances.
type Engine struct {
	instances []*scrape.Instance
	opts      Options
	stats     []*scraperStats
}

type scraperStats struct {
	name        string
	invocations atomic.Int64
	errors      atomic.Int64
}

// New validates the options and builds an engine. Unknown modes and a
// concurrent pool smaller than one worker are rejected here so that a bad
// run configuration fails before any lead is processed.
func New(instances []*scrape.Instance, opts Options) (*Engine, error) {
	if _, err := ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}
	if opts.Mode == ModeConcurrent && opts.MaxWorkers < 1 {
		return nil, eris.Wrapf(ErrWorkerPoolExhausted, "max_workers %d", opts.MaxWorkers)
	}

	stats := make([]*scraperStats, len(instances))
	for i, inst := range instances {
		stats[i] = &scraperStats{name: inst.Name()}
	}
	return &Engine{instances: instances, opts: opts, stats: stats}, nil
}

// Run verifies every lead against every configured scraper and returns one
// consolidated record per lead, in input order. Under the abort-on-error
// policy the first scrape failure cancels the run and no report is
// returned; otherwise failures are recorded on the affected lead and the
// run continues. Context cancellation aborts the run regardless of policy.
func (e *Engine) Run(ctx context.Context, leads []model.Lead) (*model.RunReport, error) {
	start := time.Now()
	report := &model.RunReport{
		RunID:     uuid.NewString(),
		Mode:      string(e.opts.Mode),
		StartedAt: start.UTC(),
		Records:   make([]model.ConsolidatedRecord, len(leads)),
	}
	for _, st := range e.stats {
		st.invocations.Store(0)
		st.errors.Store(0)
	}

	log := zap.L().With(zap.String("run_id", report.RunID))
	log.Info("orchestrator: run started",
		zap.String("mode", report.Mode),
		zap.Int("leads", len(leads)),
		zap.Int("scrapers", len(e.instances)),
	)

	var err error
	switch e.opts.Mode {
	case ModeSequential:
		err = e.runSequential(ctx, leads, report.Records)
	case ModeConcurrent:
		err = e.runConcurrent(ctx, leads, report.Records)
	}
	if err != nil {
		log.Warn("orchestrator: run aborted", zap.Error(err))
		return nil, err
	}

	report.ElapsedMS = time.Since(start).Milliseconds()
	for _, st := range e.stats {
		report.Scrapers = append(report.Scrapers, model.ScraperStats{
			Name:        st.name,
			Invocations: st.invocations.Load(),
			Errors:      st.errors.Load(),
		})
	}

	log.Info("orchestrator: run finished",
		zap.Int("records", len(report.Records)),
		zap.Int64("errors", report.TotalErrors()),
		zap.Int64("duration_ms", report.ElapsedMS),
	)
	return report, nil
}

func (e *Engine) runSequential(ctx context.Context, leads []model.Lead, records []model.ConsolidatedRecord) error {
	for i, lead := range leads {
		rec, err := e.verifyLead(ctx, lead)
		if err != nil {
			return err
		}
		records[i] = rec
		e.progress(i+1, len(leads))
	}
	return nil
}

// indexedRecord carries a finished record back to the collector along with
// its slot in the input order.
type indexedRecord struct {
	idx int
	rec model.ConsolidatedRecord
}

func (e *Engine) runConcurrent(ctx context.Context, leads []model.Lead, records []model.ConsolidatedRecord) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.MaxWorkers)

	// Workers hand finished records to a single collector, which re-indexes
	// them into input order. The buffer holds every record so workers never
	// block on the channel.
	out := make(chan indexedRecord, len(leads))
	done := make(chan struct{})
	go func() {
		defer close(done)
		completed := 0
		for item := range out {
			records[item.idx] = item.rec
			completed++
			e.progress(completed, len(leads))
		}
	}()

	for i, lead := range leads {
		g.Go(func() error {
			rec, err := e.verifyLead(gctx, lead)
			if err != nil {
				return err
			}
			out <- indexedRecord{idx: i, rec: rec}
			return nil
		})
	}

	err := g.Wait()
	close(out)
	<-done
	return err
}

// verifyLead calls every scraper for one lead, in config order, and merges
// the results. A scrape failure either aborts (abort-on-error policy) or
// becomes an error entry on the lead's record.
func (e *Engine) verifyLead(ctx context.Context, lead model.Lead) (model.ConsolidatedRecord, error) {
	results := make([]scrape.Result, 0, len(e.instances))

	for i, inst := range e.instances {
		if err := ctx.Err(); err != nil {
			return model.ConsolidatedRecord{}, err
		}

		e.stats[i].invocations.Add(1)
		res, err := inst.Verify(ctx, lead)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return model.ConsolidatedRecord{}, cerr
			}

			e.stats[i].errors.Add(1)
			serr := scrape.Classify(inst.Name(), err)
			if e.opts.RaiseOnError {
				return model.ConsolidatedRecord{}, &AbortedError{Lead: lead, Source: inst.Name(), Err: serr}
			}

			zap.L().Warn("orchestrator: scraper failed",
				zap.String("scraper", inst.Name()),
				zap.Int("lead", lead.Index),
				zap.String("kind", string(serr.Kind)),
				zap.Error(err),
			)
			results = append(results, scrape.Result{Source: inst.Name(), Err: serr, At: time.Now()})
			continue
		}
		if res != nil {
			results = append(results, *res)
		}
	}

	return merge.Record(lead, results), nil
}

func (e *Engine) progress(completed, total int) {
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(completed, total)
	}
}
