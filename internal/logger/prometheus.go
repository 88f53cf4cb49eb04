package logger

import (
	"github.com/jobscout/jobscout/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// metricsHook feeds every error-level entry into the errors counter,
// labeled with the error_type field set at the log site.
type metricsHook struct{}

func (h *metricsHook) Fire(entry *log.Entry) error {
	errorType := "unclassified"
	if value, ok := entry.Data[ErrorTypeField].(string); ok && value != "" {
		errorType = value
	}

	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func (h *metricsHook) Levels() []log.Level {
	return []log.Level{
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

func addMetricsHook() {
	log.AddHook(&metricsHook{})
}
