package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/jobscout/jobscout/internal/api"
	"github.com/jobscout/jobscout/internal/config"
	"github.com/jobscout/jobscout/internal/events"
	"github.com/jobscout/jobscout/internal/logger"
	"github.com/jobscout/jobscout/internal/metrics"
	"github.com/jobscout/jobscout/internal/repositories"
	"github.com/jobscout/jobscout/internal/scrapers"
	"github.com/jobscout/jobscout/internal/services"
	log "github.com/sirupsen/logrus"
)

func subscribeEventLoggers(bus EventBus.Bus) {

	err := bus.Subscribe(events.JobsPersistedTopic, func(event events.JobsPersisted) {
		log.Infof("persisted %v jobs for keyword %q (%v new)",
			event.TotalJobs, event.Keyword, event.Inserted)
	})
	if err != nil {
		log.Fatalf("can't subscribe to %v: %v", events.JobsPersistedTopic, err)
	}

	err = bus.Subscribe(events.BackgroundRunCompletedTopic, func(event events.BackgroundRunCompleted) {
		log.Infof("background run %v finished: %v keywords, scraped %v, saved %v",
			event.Run.ID, event.Run.KeywordsDone, event.Run.TotalScraped, event.Run.TotalSaved)
	})
	if err != nil {
		log.Fatalf("can't subscribe to %v: %v", events.BackgroundRunCompletedTopic, err)
	}
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	dbContext, err := repositories.NewDbContext(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	jobs := repositories.NewCachedJobs(repositories.NewJobsRepository(dbContext.DB))

	bus := EventBus.New()
	subscribeEventLoggers(bus)

	registry := scrapers.NewDefaultRegistry(cfg.Scraper.MaxRequestsPerSecond)
	aggregator := services.NewAggregator(registry, jobs, bus, cfg.Scraper.SourceTimeout, cfg.Scraper.Sources)
	matcher := services.NewMatcher(jobs)

	background := services.NewBackgroundScraper(aggregator, bus,
		cfg.Scraper.BackgroundKeywords, cfg.Scraper.BackgroundMaxPerSource)
	defer background.StopCron()

	if cfg.Scraper.BackgroundCron != "" {
		if err = background.ScheduleCron(cfg.Scraper.BackgroundCron); err != nil {
			log.Fatalf("can't schedule background scraping: %v", err)
		}
	}

	service := api.NewService(aggregator, matcher, background, jobs, cfg.Scraper.DefaultMaxPerSource)

	health := service.Health(ctx)
	log.Infof("startup health: %v (%v)", health.Status, health.Message)

	<-ctx.Done()

	log.Info("Shutting down services...")
	log.Info("Services stopped.")
}
