package scrape

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadverify/internal/model"
	"github.com/sells-group/leadverify/internal/ratelimit"
)

// Instance is a scraper bound to its run configuration: the config
// identifier it reports as its source, its rate limiter, and a mutex when
// the implementation is not safe for simultaneous calls.
type Instance struct {
	name    string
	impl    Scraper
	limiter *ratelimit.Limiter
	mu      *sync.Mutex // nil when the implementation is Parallelizable
}

// Name returns the config identifier this instance reports as its source.
func (s *Instance) Name() string { return s.name }

// Verify admits the call through the rate limiter, invokes the scraper,
// and applies the pacing delay before returning. Successful results are
// stamped with the instance's source identifier and an invocation time.
func (s *Instance) Verify(ctx context.Context, lead model.Lead) (*Result, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if s.mu != nil {
		s.mu.Lock()
	}
	res, err := s.impl.Verify(ctx, lead)
	if s.mu != nil {
		s.mu.Unlock()
	}

	if err == nil && res != nil {
		res.Source = s.name
		if res.At.IsZero() {
			res.At = time.Now()
		}
	}

	// The pacing hold applies after every invocation, failed ones included.
	if perr := s.limiter.Pace(ctx); perr != nil && err == nil {
		err = perr
	}
	return res, err
}

// Build instantiates the enabled configs in order, binding each scraper to
// its own rate limiter. Disabled entries are skipped without being
// constructed; unknown identifiers, duplicates, and rejected options fail
// fast with invalid_config errors.
func Build(reg *Registry, configs []Config) ([]*Instance, error) {
	instances := make([]*Instance, 0, len(configs))
	seen := make(map[string]struct{}, len(configs))

	for _, cfg := range configs {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		if !cfg.IsEnabled() {
			zap.L().Debug("scrape: skipping disabled scraper", zap.String("scraper", cfg.Name))
			continue
		}
		if _, dup := seen[cfg.Name]; dup {
			return nil, NewError(cfg.Name, KindInvalidConfig, "duplicate scraper identifier")
		}
		seen[cfg.Name] = struct{}{}

		ctor, err := reg.Get(cfg.Name)
		if err != nil {
			return nil, err
		}
		impl, err := ctor(cfg.Options)
		if err != nil {
			if KindOf(err) != "" {
				return nil, err
			}
			return nil, WrapError(cfg.Name, KindInvalidConfig, err)
		}

		inst := &Instance{
			name:    cfg.Name,
			impl:    impl,
			limiter: ratelimit.New(cfg.RateLimitPerMinute, cfg.Delay()),
		}
		if p, ok := impl.(Parallelizable); !ok || !p.Parallelizable() {
			inst.mu = &sync.Mutex{}
		}
		instances = append(instances, inst)

		zap.L().Debug("scrape: built scraper",
			zap.String("scraper", cfg.Name),
			zap.Int("rate_limit_per_minute", cfg.RateLimitPerMinute),
			zap.Float64("delay_seconds", cfg.DelaySeconds),
		)
	}
	return instances, nil
}
