package scrape

// Constructor builds a scraper implementation from its config options.
// Constructors reject unusable options with invalid_config errors so bad
// configuration fails before any lead is processed.
type Constructor func(opts Options) (Scraper, error)

// Registry maps scraper identifiers to constructors.
type Registry struct {
	ctors map[string]Constructor
	order []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry. Constructors are registered
// incrementally as scraper implementations are added.
func NewRegistry() *Registry {
	return &Registry{
		ctors: make(map[string]Constructor),
	}
}

// Register adds a constructor under an identifier. Re-registering an
// identifier replaces the constructor and keeps its original position.
func (r *Registry) Register(name string, ctor Constructor) {
	if _, ok := r.ctors[name]; !ok {
		r.order = append(r.order, name)
	}
	r.ctors[name] = ctor
}

// Get returns the constructor for an identifier.
func (r *Registry) Get(name string) (Constructor, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, NewError(name, KindInvalidConfig, "unknown scraper identifier")
	}
	return ctor, nil
}

// Names returns all registered identifiers in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Default returns a registry with every bundled scraper registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(EchoName, NewEchoScraper)
	r.Register(FastPeopleSearchName, NewFastPeopleSearchScraper)
	r.Register(TruePeopleSearchName, NewTruePeopleSearchScraper)
	return r
}
