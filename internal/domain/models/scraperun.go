package models

import "time"

// KeywordOutcome records how a single keyword fared inside a background run.
type KeywordOutcome struct {
	Keyword string `json:"keyword"`
	Scraped int    `json:"scraped"`
	Saved   int    `json:"saved"`
	Error   string `json:"error,omitempty"`
}

// ScrapeRun is the mutable status of one background scraping batch.
type ScrapeRun struct {
	ID            string           `json:"id"`
	Keywords      []string         `json:"keywords"`
	MaxPerSource  int              `json:"max_per_source"`
	Outcomes      []KeywordOutcome `json:"outcomes,omitempty"`
	KeywordsDone  int              `json:"keywords_done"`
	TotalScraped  int              `json:"total_scraped"`
	TotalSaved    int              `json:"total_saved"`
	StartedAt     time.Time        `json:"started_at"`
	Elapsed       time.Duration    `json:"-"`
	ElapsedSecond float64          `json:"elapsed_seconds"`
	Running       bool             `json:"running"`
}
