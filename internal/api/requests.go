package api

import "github.com/jobscout/jobscout/internal/domain/models"

type ScrapeSingleSourceRequest struct {
	Keyword  string `json:"keyword" validate:"required"`
	Location string `json:"location"`
	// Source defaults to "naukri" when empty.
	Source  string `json:"source"`
	MaxJobs int    `json:"max_jobs" validate:"omitempty,gte=1,lte=50"`
}

type ScrapeAllSourcesRequest struct {
	Keyword      string   `json:"keyword" validate:"required"`
	Location     string   `json:"location"`
	MaxPerSource int      `json:"max_per_source" validate:"omitempty,gte=1,lte=50"`
	Sources      []string `json:"sources"`
	// Persist defaults to true when omitted.
	Persist *bool `json:"persist"`
}

type SearchJobsRequest struct {
	Keyword  string `json:"keyword"`
	Location string `json:"location"`
	Domain   string `json:"domain"`
	Source   string `json:"source"`
	Limit    int    `json:"limit" validate:"omitempty,gte=1"`
}

type RecommendRequest struct {
	Skills   []string `json:"skills"`
	Domain   string   `json:"domain"`
	Location string   `json:"location"`
}

type BackgroundScrapeRequest struct {
	Keywords     []string `json:"keywords"`
	MaxPerSource int      `json:"max_per_source" validate:"omitempty,gte=1,lte=50"`
	Async        bool     `json:"async"`
}

type JobsResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Jobs    []models.Job `json:"jobs"`
}

type ScrapeAllSourcesResponse struct {
	Success         bool              `json:"success"`
	Keyword         string            `json:"keyword"`
	Location        string            `json:"location,omitempty"`
	TotalJobs       int               `json:"total_jobs"`
	Jobs            []models.Job      `json:"jobs"`
	PerSourceCounts map[string]int    `json:"per_source_counts"`
	PerSourceErrors map[string]string `json:"per_source_errors,omitempty"`
	Persisted       bool              `json:"persisted"`
	InsertedCount   int               `json:"inserted_count"`
	ElapsedSeconds  float64           `json:"elapsed_seconds"`
}

type StatsResponse struct {
	Success bool            `json:"success"`
	Stats   models.JobStats `json:"stats"`
}

type RecommendResponse struct {
	Success   bool                 `json:"success"`
	TotalJobs int                  `json:"total_jobs"`
	Jobs      []models.MatchResult `json:"jobs"`
}

type BackgroundScrapeResponse struct {
	Accepted       bool    `json:"accepted"`
	Message        string  `json:"message"`
	RunID          string  `json:"run_id,omitempty"`
	KeywordCount   int     `json:"keyword_count,omitempty"`
	TotalScraped   int     `json:"total_scraped,omitempty"`
	TotalSaved     int     `json:"total_saved,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
