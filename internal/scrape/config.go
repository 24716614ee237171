package scrape

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Options is the free-form constructor options mapping from a scraper's
// config entry. Typed getters tolerate the loose scalar types YAML
// produces.
type Options map[string]any

// String returns the option as a string, or def when absent.
func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return def
	}
}

// Bool returns the option as a bool, accepting bool and string forms.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// Float returns the option as a float64, accepting numeric and string forms.
func (o Options) Float(key string, def float64) float64 {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// Int returns the option as an int, accepting numeric and string forms.
func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

// Config declares one scraper for a run: which implementation to build,
// whether it participates, its constructor options, and its pacing. Config
// order in the file defines merge precedence.
type Config struct {
	Name               string  `yaml:"name"`
	Enabled            *bool   `yaml:"enabled,omitempty"`
	Options            Options `yaml:"options,omitempty"`
	DelaySeconds       float64 `yaml:"delay_seconds,omitempty"`
	RateLimitPerMinute int     `yaml:"rate_limit_per_minute,omitempty"`
}

// IsEnabled reports whether the entry participates in the run. Entries are
// enabled unless explicitly switched off.
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Delay returns the fixed pacing hold applied after every invocation.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

func (c Config) validate() error {
	if c.Name == "" {
		return NewError("config", KindInvalidConfig, "scraper entry is missing a name")
	}
	if c.DelaySeconds < 0 {
		return NewError(c.Name, KindInvalidConfig, "delay_seconds must not be negative")
	}
	if c.RateLimitPerMinute < 0 {
		return NewError(c.Name, KindInvalidConfig, "rate_limit_per_minute must not be negative")
	}
	return nil
}

// LoadConfigs reads the ordered scraper list from a YAML file.
func LoadConfigs(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read config %s", path)
	}

	// The YAML has a top-level "scrapers" key.
	var wrapper struct {
		Scrapers []Config `yaml:"scrapers"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "scrape: parse config %s", path)
	}

	if len(wrapper.Scrapers) == 0 {
		return nil, eris.Errorf("scrape: config %s declares no scrapers", path)
	}
	for _, cfg := range wrapper.Scrapers {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}
	return wrapper.Scrapers, nil
}
