package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jobscout/jobscout/internal/domain/models"
	"github.com/jobscout/jobscout/internal/scrapers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	name     string
	postings []models.RawPosting
	err      error
	delay    time.Duration
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, _ scrapers.Query) ([]models.RawPosting, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.postings, f.err
}

type fakeRegistry struct {
	sources map[string]scrapers.Source
}

func newFakeRegistry(sources ...*fakeSource) *fakeRegistry {
	registry := &fakeRegistry{sources: map[string]scrapers.Source{}}
	for _, source := range sources {
		registry.sources[source.name] = source
	}
	return registry
}

func (r *fakeRegistry) Get(name string) (scrapers.Source, bool) {
	source, ok := r.sources[name]
	return source, ok
}

func (r *fakeRegistry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}

type fakeWriter struct {
	mu       sync.Mutex
	received []models.Job
	inserted int
	err      error
}

func (w *fakeWriter) Upsert(_ context.Context, jobs []models.Job) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return 0, w.err
	}
	w.received = append(w.received, jobs...)
	return w.inserted, nil
}

func postings(source string, count int) []models.RawPosting {
	var result []models.RawPosting
	for i := 0; i < count; i++ {
		result = append(result, models.RawPosting{
			Title:  fmt.Sprintf("Python Developer %d", i),
			Source: source,
			URL:    fmt.Sprintf("https://%s.example.com/job/%d", source, i),
		})
	}
	return result
}

func Test_Aggregate_PartialFailureReturnsSuccesses(t *testing.T) {

	registry := newFakeRegistry(
		&fakeSource{name: "naukri", postings: postings("naukri", 8)},
		&fakeSource{name: "linkedin", err: errors.New("blocked")},
		&fakeSource{name: "unstop", postings: postings("unstop", 5)},
	)
	writer := &fakeWriter{inserted: 13}
	aggregator := NewAggregator(registry, writer, EventBus.New(), time.Second, nil)

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python developer",
		MaxPerSource: 10,
		Sources:      []string{"naukri", "linkedin", "unstop"},
		Persist:      true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 13, result.TotalJobs)
	assert.Equal(t, 8, result.PerSourceCounts["naukri"])
	assert.Equal(t, 5, result.PerSourceCounts["unstop"])
	assert.NotContains(t, result.PerSourceCounts, "linkedin")
	assert.Contains(t, result.PerSourceErrors["linkedin"], "blocked")
	assert.Equal(t, 13, result.InsertedCount)
	assert.True(t, result.Persisted)
	assert.Len(t, writer.received, 13)
}

func Test_Aggregate_MergeOrderFollowsRequestOrder(t *testing.T) {

	registry := newFakeRegistry(
		&fakeSource{name: "naukri", postings: postings("naukri", 2), delay: 50 * time.Millisecond},
		&fakeSource{name: "unstop", postings: postings("unstop", 2)},
	)
	aggregator := NewAggregator(registry, &fakeWriter{}, EventBus.New(), time.Second, nil)

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
		Sources:      []string{"naukri", "unstop"},
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"naukri", "naukri", "unstop", "unstop"},
		[]string{result.Jobs[0].Source, result.Jobs[1].Source, result.Jobs[2].Source, result.Jobs[3].Source})
}

func Test_Aggregate_AllSourcesFailed(t *testing.T) {

	registry := newFakeRegistry(
		&fakeSource{name: "naukri", err: errors.New("timeout")},
		&fakeSource{name: "linkedin", err: errors.New("blocked")},
	)
	aggregator := NewAggregator(registry, &fakeWriter{}, EventBus.New(), time.Second, nil)

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
		Sources:      []string{"naukri", "linkedin"},
	})

	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.NotNil(t, result)
	assert.Len(t, result.PerSourceErrors, 2)
	assert.Zero(t, result.TotalJobs)
}

func Test_Aggregate_UnknownSourceIsPerSourceError(t *testing.T) {

	registry := newFakeRegistry(&fakeSource{name: "naukri", postings: postings("naukri", 1)})
	aggregator := NewAggregator(registry, &fakeWriter{}, EventBus.New(), time.Second, nil)

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
		Sources:      []string{"naukri", "monster"},
	})

	assert.NoError(t, err)
	assert.Contains(t, result.PerSourceErrors["monster"], "unknown source")
	assert.Equal(t, 1, result.TotalJobs)
}

func Test_Aggregate_SlowSourceHitsOwnTimeout(t *testing.T) {

	registry := newFakeRegistry(
		&fakeSource{name: "naukri", postings: postings("naukri", 2)},
		&fakeSource{name: "linkedin", postings: postings("linkedin", 2), delay: 200 * time.Millisecond},
	)
	aggregator := NewAggregator(registry, &fakeWriter{}, EventBus.New(), 20*time.Millisecond, nil)

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
		Sources:      []string{"naukri", "linkedin"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.TotalJobs)
	assert.Contains(t, result.PerSourceErrors, "linkedin")
}

func Test_Aggregate_CrossSourceDuplicatesCollapse(t *testing.T) {

	shared := models.RawPosting{
		Title:  "Python Developer",
		Source: "naukri",
		URL:    "https://example.com/job/1",
	}
	dup := shared
	dup.URL = "https://example.com/job/1?refid=feed"

	registry := newFakeRegistry(
		&fakeSource{name: "naukri", postings: []models.RawPosting{shared, dup}},
	)
	aggregator := NewAggregator(registry, &fakeWriter{}, EventBus.New(), time.Second, nil)

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
		Sources:      []string{"naukri"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.TotalJobs)
	assert.Equal(t, 2, result.PerSourceCounts["naukri"])
}

func Test_Aggregate_ConfiguredDefaultSourcesUsed(t *testing.T) {

	naukri := &fakeSource{name: "naukri", postings: postings("naukri", 2)}
	linkedin := &fakeSource{name: "linkedin", postings: postings("linkedin", 2)}
	registry := newFakeRegistry(naukri, linkedin)

	aggregator := NewAggregator(registry, &fakeWriter{}, EventBus.New(), time.Second,
		[]string{"naukri"})

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.TotalJobs)
	assert.Contains(t, result.PerSourceCounts, "naukri")
	assert.NotContains(t, result.PerSourceCounts, "linkedin")
	assert.NotContains(t, result.PerSourceErrors, "linkedin")

	// an explicit source list still overrides the configured default
	result, err = aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
		Sources:      []string{"linkedin"},
	})

	assert.NoError(t, err)
	assert.Contains(t, result.PerSourceCounts, "linkedin")
	assert.NotContains(t, result.PerSourceCounts, "naukri")
}

func Test_Aggregate_PersistOff_NothingWritten(t *testing.T) {

	writer := &fakeWriter{inserted: 99}
	registry := newFakeRegistry(&fakeSource{name: "naukri", postings: postings("naukri", 3)})
	aggregator := NewAggregator(registry, writer, EventBus.New(), time.Second, nil)

	result, err := aggregator.Aggregate(context.Background(), AggregationRequest{
		Keyword:      "python",
		MaxPerSource: 5,
		Sources:      []string{"naukri"},
	})

	assert.NoError(t, err)
	assert.False(t, result.Persisted)
	assert.Zero(t, result.InsertedCount)
	assert.Empty(t, writer.received)
}
