package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jobscout/jobscout/internal/domain/models"
	"github.com/jobscout/jobscout/internal/events"
	"github.com/jobscout/jobscout/internal/logger"
	"github.com/jobscout/jobscout/internal/metrics"
	"github.com/jobscout/jobscout/internal/scrapers"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrAllSourcesFailed is returned when every requested source errored.
// The accompanying result still carries the per-source detail.
var ErrAllSourcesFailed = errors.New("all requested sources failed")

type sourceRegistry interface {
	Get(name string) (scrapers.Source, bool)
	Names() []string
}

type jobWriter interface {
	Upsert(ctx context.Context, jobs []models.Job) (int, error)
}

type AggregationRequest struct {
	Keyword      string
	Location     string
	MaxPerSource int
	Sources      []string
	Persist      bool
}

func (r AggregationRequest) validate() error {
	if r.Keyword == "" {
		return fmt.Errorf("keyword must not be empty")
	}
	if r.MaxPerSource < 1 {
		return fmt.Errorf("max per source must be at least 1")
	}
	return nil
}

type AggregationResult struct {
	Keyword         string
	Location        string
	Jobs            []models.Job
	PerSourceCounts map[string]int
	PerSourceErrors map[string]string

	// TotalJobs counts deduplicated jobs returned by this run;
	// InsertedCount counts identity keys that did not exist before.
	// Re-scraped duplicates show up in the first but not the second.
	TotalJobs     int
	InsertedCount int
	Persisted     bool
	Elapsed       time.Duration
}

// Aggregator fans one logical query out to the requested sources
// concurrently and funnels everything through canonicalization, intra-run
// deduplication and, optionally, the store.
type Aggregator struct {
	registry      sourceRegistry
	jobs          jobWriter
	bus           EventBus.Bus
	sourceTimeout time.Duration

	// defaultSources are used when a request names none; empty means every
	// registered source
	defaultSources []string
}

func NewAggregator(registry sourceRegistry, jobs jobWriter, bus EventBus.Bus,
	sourceTimeout time.Duration, defaultSources []string) *Aggregator {

	return &Aggregator{
		registry:       registry,
		jobs:           jobs,
		bus:            bus,
		sourceTimeout:  sourceTimeout,
		defaultSources: defaultSources,
	}
}

type sourceResult struct {
	postings []models.RawPosting
	err      error
}

func (a *Aggregator) Aggregate(ctx context.Context, req AggregationRequest) (*AggregationResult, error) {

	if err := req.validate(); err != nil {
		return nil, err
	}

	sources := req.Sources
	if len(sources) == 0 {
		sources = a.defaultSources
	}
	if len(sources) == 0 {
		sources = a.registry.Names()
	}

	start := time.Now()
	results := a.fetchAll(ctx, req, sources)

	result := &AggregationResult{
		Keyword:         req.Keyword,
		Location:        req.Location,
		PerSourceCounts: map[string]int{},
		PerSourceErrors: map[string]string{},
	}

	scrapedAt := time.Now().UTC()
	var canonical []models.Job
	failed := 0

	for i, name := range sources {
		res := results[i]

		if res.err != nil {
			failed++
			result.PerSourceErrors[name] = res.err.Error()
			metrics.SourceErrorsCounter.WithLabelValues(name).Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeScraper).
				Errorf("source %v failed for keyword %q: %v", name, req.Keyword, res.err)
		}
		if len(res.postings) > 0 {
			result.PerSourceCounts[name] = len(res.postings)
			metrics.ScrapedJobsCounter.WithLabelValues(name).Add(float64(len(res.postings)))
		}

		for _, raw := range res.postings {
			canonical = append(canonical, Canonicalize(raw, req.Keyword, scrapedAt))
		}
	}

	result.Jobs = Deduplicate(canonical)
	result.TotalJobs = len(result.Jobs)

	if failed == len(sources) {
		result.Elapsed = time.Since(start)
		return result, ErrAllSourcesFailed
	}

	if req.Persist && len(result.Jobs) > 0 {
		inserted, err := a.jobs.Upsert(ctx, result.Jobs)
		if err != nil {
			result.Elapsed = time.Since(start)
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to persist %v jobs for keyword %q: %v", len(result.Jobs), req.Keyword, err)
			return result, errors.Wrap(err, "persisting scraped jobs")
		}

		result.InsertedCount = inserted
		result.Persisted = true
		metrics.InsertedJobsCounter.Add(float64(inserted))
		a.bus.Publish(events.JobsPersistedTopic, events.JobsPersisted{
			Keyword:   req.Keyword,
			Sources:   sources,
			TotalJobs: result.TotalJobs,
			Inserted:  inserted,
		})
	}

	result.Elapsed = time.Since(start)
	metrics.AggregationDuration.Observe(result.Elapsed.Seconds())

	log.Infof("aggregated %v jobs for keyword %q from %v sources (%v failed) in %v",
		result.TotalJobs, req.Keyword, len(sources), failed, result.Elapsed)

	return result, nil
}

// fetchAll runs one goroutine per source with an independent timeout and
// joins on all of them. Results are indexed by the position of the source
// in the request, so merge order never depends on completion order.
func (a *Aggregator) fetchAll(ctx context.Context, req AggregationRequest, sources []string) []sourceResult {

	results := make([]sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, name := range sources {

		source, ok := a.registry.Get(name)
		if !ok {
			results[i].err = fmt.Errorf("unknown source: %v", name)
			continue
		}

		wg.Add(1)
		go func(i int, source scrapers.Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()

			postings, err := source.Fetch(fetchCtx, scrapers.Query{
				Keyword:    req.Keyword,
				Location:   req.Location,
				MaxResults: req.MaxPerSource,
			})
			results[i] = sourceResult{postings: postings, err: err}
		}(i, source)
	}
	wg.Wait()

	return results
}
