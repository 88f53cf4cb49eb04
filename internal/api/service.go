package api

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jobscout/jobscout/internal/domain/models"
	"github.com/jobscout/jobscout/internal/logger"
	"github.com/jobscout/jobscout/internal/repositories"
	"github.com/jobscout/jobscout/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSource  = "naukri"
	defaultLimit   = 50
	maxSearchLimit = 100
)

type aggregator interface {
	Aggregate(ctx context.Context, req services.AggregationRequest) (*services.AggregationResult, error)
}

type matcher interface {
	Recommend(ctx context.Context, skills []string, domain, location string) ([]models.MatchResult, error)
}

type backgroundScraper interface {
	Start(keywords []string, maxPerSource int, async bool) (models.ScrapeRun, bool)
	Status() models.ScrapeRun
}

type jobReader interface {
	Search(ctx context.Context, filter repositories.JobFilter, limit int) ([]models.Job, error)
	ByID(ctx context.Context, id int) (*models.Job, error)
	ByDomain(ctx context.Context, domain string, limit int) ([]models.Job, error)
	Recent(ctx context.Context, limit int) ([]models.Job, error)
	Stats(ctx context.Context) (models.JobStats, error)
}

// Service is the transport-agnostic application facade. It validates
// requests, applies defaults and maps results onto response shapes; every
// wire adapter (HTTP, CLI, bot) goes through it.
type Service struct {
	aggregator aggregator
	matcher    matcher
	background backgroundScraper
	jobs       jobReader

	defaultMaxPerSource int
	validate            *validator.Validate
}

func NewService(aggregator aggregator, matcher matcher, background backgroundScraper,
	jobs jobReader, defaultMaxPerSource int) *Service {

	return &Service{
		aggregator:          aggregator,
		matcher:             matcher,
		background:          background,
		jobs:                jobs,
		defaultMaxPerSource: defaultMaxPerSource,
		validate:            validator.New(),
	}
}

// ScrapeSingleSource runs one source for one keyword and persists the
// result. The source defaults to naukri.
func (s *Service) ScrapeSingleSource(ctx context.Context, req ScrapeSingleSourceRequest) (*ScrapeAllSourcesResponse, error) {

	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}

	source := req.Source
	if source == "" {
		source = defaultSource
	}

	return s.aggregate(ctx, services.AggregationRequest{
		Keyword:      req.Keyword,
		Location:     req.Location,
		MaxPerSource: s.maxPerSource(req.MaxJobs),
		Sources:      []string{source},
		Persist:      true,
	})
}

// ScrapeAllSources fans the keyword out to the requested sources (all
// registered ones when none are named). Persistence is on unless the
// caller explicitly turns it off.
func (s *Service) ScrapeAllSources(ctx context.Context, req ScrapeAllSourcesRequest) (*ScrapeAllSourcesResponse, error) {

	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}

	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}

	return s.aggregate(ctx, services.AggregationRequest{
		Keyword:      req.Keyword,
		Location:     req.Location,
		MaxPerSource: s.maxPerSource(req.MaxPerSource),
		Sources:      req.Sources,
		Persist:      persist,
	})
}

func (s *Service) aggregate(ctx context.Context, req services.AggregationRequest) (*ScrapeAllSourcesResponse, error) {

	result, err := s.aggregator.Aggregate(ctx, req)
	if err != nil && !errors.Is(err, services.ErrAllSourcesFailed) {
		if result != nil {
			// scraping succeeded, only the save failed; hand the jobs back
			resp := toScrapeResponse(result)
			resp.Success = false
			return resp, errors.Wrap(ErrPersistence, err.Error())
		}
		return nil, err
	}

	resp := toScrapeResponse(result)
	resp.Success = err == nil
	return resp, nil
}

func toScrapeResponse(result *services.AggregationResult) *ScrapeAllSourcesResponse {
	return &ScrapeAllSourcesResponse{
		Keyword:         result.Keyword,
		Location:        result.Location,
		TotalJobs:       result.TotalJobs,
		Jobs:            result.Jobs,
		PerSourceCounts: result.PerSourceCounts,
		PerSourceErrors: result.PerSourceErrors,
		Persisted:       result.Persisted,
		InsertedCount:   result.InsertedCount,
		ElapsedSeconds:  result.Elapsed.Seconds(),
	}
}

// SearchJobs queries the store only; it never triggers scraping.
func (s *Service) SearchJobs(ctx context.Context, req SearchJobsRequest) (*JobsResponse, error) {

	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}

	jobs, err := s.jobs.Search(ctx, repositories.JobFilter{
		Keyword:  req.Keyword,
		Location: req.Location,
		Domain:   req.Domain,
		Source:   req.Source,
	}, clampLimit(req.Limit))
	if err != nil {
		return nil, err
	}

	return &JobsResponse{Success: true, Count: len(jobs), Jobs: jobs}, nil
}

func (s *Service) JobsByDomain(ctx context.Context, domain string, limit int) (*JobsResponse, error) {

	if domain == "" {
		return nil, errors.Wrap(ErrValidation, "domain must not be empty")
	}
	if limit < 0 {
		return nil, errors.Wrap(ErrValidation, "limit must be positive")
	}

	jobs, err := s.jobs.ByDomain(ctx, domain, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return &JobsResponse{Success: true, Count: len(jobs), Jobs: jobs}, nil
}

// JobByID fetches one stored job. Not-found surfaces as
// repositories.ErrJobNotFound, not a validation failure.
func (s *Service) JobByID(ctx context.Context, id int) (*models.Job, error) {

	if id < 1 {
		return nil, errors.Wrap(ErrValidation, "id must be positive")
	}
	return s.jobs.ByID(ctx, id)
}

func (s *Service) RecentJobs(ctx context.Context, limit int) (*JobsResponse, error) {

	if limit < 0 {
		return nil, errors.Wrap(ErrValidation, "limit must be positive")
	}

	jobs, err := s.jobs.Recent(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return &JobsResponse{Success: true, Count: len(jobs), Jobs: jobs}, nil
}

func (s *Service) JobStats(ctx context.Context) (*StatsResponse, error) {

	stats, err := s.jobs.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{Success: true, Stats: stats}, nil
}

// Recommend ranks stored jobs against the candidate's skills.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {

	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}

	matches, err := s.matcher.Recommend(ctx, req.Skills, req.Domain, req.Location)
	if err != nil {
		return nil, err
	}

	return &RecommendResponse{Success: true, TotalJobs: len(matches), Jobs: matches}, nil
}

// StartBackgroundScrape kicks off a batch run. A rejected start (another
// run already active) is a normal outcome, not an error.
func (s *Service) StartBackgroundScrape(ctx context.Context, req BackgroundScrapeRequest) (*BackgroundScrapeResponse, error) {

	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}

	run, accepted := s.background.Start(req.Keywords, s.maxPerSource(req.MaxPerSource), req.Async)
	if !accepted {
		return &BackgroundScrapeResponse{
			Accepted: false,
			Message:  "a background run is already active",
			RunID:    run.ID,
		}, nil
	}

	resp := &BackgroundScrapeResponse{
		Accepted:     true,
		RunID:        run.ID,
		KeywordCount: len(run.Keywords),
	}

	if req.Async {
		resp.Message = "background scraping started"
		return resp, nil
	}

	resp.Message = "background scraping completed"
	resp.TotalScraped = run.TotalScraped
	resp.TotalSaved = run.TotalSaved
	resp.ElapsedSeconds = run.ElapsedSecond
	return resp, nil
}

// BackgroundStatus reports the active or most recent background run.
func (s *Service) BackgroundStatus() models.ScrapeRun {
	return s.background.Status()
}

// Health probes the store with a cheap read.
func (s *Service) Health(ctx context.Context) HealthResponse {

	if _, err := s.jobs.Recent(ctx, 1); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("health check failed: %v", err)
		return HealthResponse{Status: "degraded", Message: err.Error()}
	}
	return HealthResponse{Status: "ok", Message: "job store reachable"}
}

func (s *Service) maxPerSource(requested int) int {
	if requested < 1 {
		return s.defaultMaxPerSource
	}
	return requested
}

// clampLimit applies the default for an omitted limit and caps explicit
// ones. Negative limits are rejected before this point.
func clampLimit(limit int) int {
	if limit == 0 {
		return defaultLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
