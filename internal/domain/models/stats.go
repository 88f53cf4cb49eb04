package models

// JobStats summarizes the stored corpus.
type JobStats struct {
	TotalJobs      int64            `json:"total_jobs"`
	CountsBySource map[string]int64 `json:"counts_by_source"`
	CountsByDomain map[string]int64 `json:"counts_by_domain"`
}
