package events

import "github.com/jobscout/jobscout/internal/domain/models"

var JobsPersistedTopic = "JobsPersistedEvent"

// JobsPersisted fires after an aggregation stored its canonical jobs.
type JobsPersisted struct {
	Keyword   string
	Sources   []string
	TotalJobs int
	Inserted  int
}

var BackgroundRunCompletedTopic = "BackgroundRunCompletedEvent"

// BackgroundRunCompleted fires when a background batch releases the
// single-flight slot, whether or not its keywords succeeded.
type BackgroundRunCompleted struct {
	Run models.ScrapeRun
}
