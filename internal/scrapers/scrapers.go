package scrapers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jobscout/jobscout/internal/domain/models"
)

const maxResultsPerSource = 50

// Query describes one fetch against a single listing site.
type Query struct {
	Keyword    string
	Location   string
	MaxResults int
}

func (q Query) Validate() error {

	if q.Keyword == "" {
		return fmt.Errorf("keyword must not be empty")
	}

	if q.MaxResults < 1 {
		return fmt.Errorf("max results must be at least 1")
	}

	if q.MaxResults > maxResultsPerSource {
		return fmt.Errorf("max results must not exceed %d", maxResultsPerSource)
	}

	return nil
}

// Source retrieves raw postings from one external listing site. Fetch never
// panics past its boundary: network, parse and rate-limit failures come back
// as an error value. Postings extracted before a failure are returned
// alongside the error.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query Query) ([]models.RawPosting, error)
}

// Registry is a string-keyed open set of sources. New sites register here
// without the aggregation layer knowing about them.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

func (r *Registry) Register(source Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.Name()] = source
}

func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[name]
	return source, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry registers the built-in sources, each rate limited to
// maxRequestsPerSecond against its site.
func NewDefaultRegistry(maxRequestsPerSecond float32) *Registry {

	registry := NewRegistry()

	naukri := NewNaukriScraper()
	naukri.SetRateLimit(maxRequestsPerSecond)
	registry.Register(naukri)

	linkedin := NewLinkedInScraper()
	linkedin.SetRateLimit(maxRequestsPerSecond)
	registry.Register(linkedin)

	unstop := NewUnstopScraper()
	unstop.SetRateLimit(maxRequestsPerSecond)
	registry.Register(unstop)

	return registry
}
