package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/jobscout/jobscout/internal/domain/models"
	"github.com/jobscout/jobscout/internal/events"
	"github.com/jobscout/jobscout/internal/metrics"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultKeywords is the curated list scraped when a background run is
// started without explicit keywords.
var DefaultKeywords = []string{
	"software developer",
	"data scientist",
	"python developer",
	"full stack developer",
	"frontend developer",
	"backend developer",
	"machine learning engineer",
	"data analyst",
	"devops engineer",
	"ui ux designer",
	"product manager",
	"business analyst",
	"cybersecurity engineer",
	"cloud engineer",
	"mobile app developer",
}

const (
	runStateIdle int32 = iota
	runStateActive
)

type aggregatorService interface {
	Aggregate(ctx context.Context, req AggregationRequest) (*AggregationResult, error)
}

// BackgroundScraper drives batch aggregation over a keyword list. At most
// one run is in flight per process; the idle→active transition is a
// compare-and-swap, so concurrent starters race safely and losers are
// rejected with the active run's status.
type BackgroundScraper struct {
	aggregator          aggregatorService
	bus                 EventBus.Bus
	cron                *cron.Cron
	defaultKeywords     []string
	defaultMaxPerSource int

	state atomic.Int32

	statusMu sync.Mutex
	current  models.ScrapeRun
}

func NewBackgroundScraper(aggregator aggregatorService, bus EventBus.Bus,
	defaultKeywords []string, defaultMaxPerSource int) *BackgroundScraper {

	if len(defaultKeywords) == 0 {
		defaultKeywords = DefaultKeywords
	}

	return &BackgroundScraper{
		aggregator:          aggregator,
		bus:                 bus,
		defaultKeywords:     defaultKeywords,
		defaultMaxPerSource: defaultMaxPerSource,
	}
}

// ScheduleCron starts a cron cadence that kicks off a default background
// run. A tick that finds a run still active is skipped, not queued.
func (b *BackgroundScraper) ScheduleCron(spec string) error {

	b.cron = cron.New()
	_, err := b.cron.AddFunc(spec, func() {
		if _, accepted := b.Start(nil, b.defaultMaxPerSource, true); !accepted {
			log.Info("scheduled scrape skipped, a run is already active")
		}
	})
	if err != nil {
		return err
	}

	b.cron.Start()
	log.Infof("background scraping scheduled with spec %q", spec)
	return nil
}

func (b *BackgroundScraper) StopCron() {
	if b.cron != nil {
		b.cron.Stop()
	}
}

// Start begins a background run over the given keywords (default curated
// list when empty). Returns accepted=false with the active run's status
// when one is already in flight. With async=true the call returns right
// after accepting; otherwise it blocks and returns the completed run.
func (b *BackgroundScraper) Start(keywords []string, maxPerSource int, async bool) (models.ScrapeRun, bool) {

	if len(keywords) == 0 {
		keywords = b.defaultKeywords
	}
	if maxPerSource < 1 {
		maxPerSource = b.defaultMaxPerSource
	}

	// the winner publishes its status under the same lock losers read it
	// through, so a rejected Start always sees the active run
	b.statusMu.Lock()
	if !b.state.CompareAndSwap(runStateIdle, runStateActive) {
		current := b.current
		b.statusMu.Unlock()
		return current, false
	}

	run := models.ScrapeRun{
		ID:           uuid.NewString(),
		Keywords:     keywords,
		MaxPerSource: maxPerSource,
		StartedAt:    time.Now(),
		Running:      true,
	}
	b.current = run
	b.statusMu.Unlock()

	log.Infof("background run %v started: %v keywords, max %v per source",
		run.ID, len(keywords), maxPerSource)

	if async {
		go b.runBatch(run)
		return run, true
	}

	return b.runBatch(run), true
}

// Status returns a snapshot of the active (or most recent) run.
func (b *BackgroundScraper) Status() models.ScrapeRun {
	b.statusMu.Lock()
	defer b.statusMu.Unlock()
	return b.current
}

func (b *BackgroundScraper) setStatus(run models.ScrapeRun) {
	b.statusMu.Lock()
	defer b.statusMu.Unlock()
	b.current = run
}

// runBatch processes keywords sequentially so a batch never multiplies the
// per-source request pressure. A failing keyword is recorded and the batch
// moves on; the single-flight slot is always released.
func (b *BackgroundScraper) runBatch(run models.ScrapeRun) models.ScrapeRun {

	defer b.state.Store(runStateIdle)

	for _, keyword := range run.Keywords {

		outcome := models.KeywordOutcome{Keyword: keyword}

		result, err := b.aggregator.Aggregate(context.Background(), AggregationRequest{
			Keyword:      keyword,
			MaxPerSource: run.MaxPerSource,
			Persist:      true,
		})

		if err != nil {
			outcome.Error = err.Error()
			log.Errorf("background run %v: keyword %q failed: %v", run.ID, keyword, err)
		}
		if result != nil {
			outcome.Scraped = result.TotalJobs
			outcome.Saved = result.InsertedCount
		}

		run.Outcomes = append(run.Outcomes, outcome)
		run.KeywordsDone++
		run.TotalScraped += outcome.Scraped
		run.TotalSaved += outcome.Saved
		run.Elapsed = time.Since(run.StartedAt)
		run.ElapsedSecond = run.Elapsed.Seconds()
		b.setStatus(run)
	}

	run.Running = false
	run.Elapsed = time.Since(run.StartedAt)
	run.ElapsedSecond = run.Elapsed.Seconds()
	b.setStatus(run)

	metrics.BackgroundRunDuration.Observe(run.Elapsed.Seconds())
	b.bus.Publish(events.BackgroundRunCompletedTopic, events.BackgroundRunCompleted{Run: run})

	log.Infof("background run %v completed: scraped %v, saved %v, took %v",
		run.ID, run.TotalScraped, run.TotalSaved, run.Elapsed)

	return run
}
