package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	ScrapedJobsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_scraped_jobs_total",
			Help: "Total number of postings returned by each source.",
		},
		[]string{"source"},
	)
	SourceErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_source_errors_total",
			Help: "Total number of failed source fetches.",
		},
		[]string{"source"},
	)
	InsertedJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_inserted_jobs_total",
			Help: "Total number of newly stored canonical jobs.",
		},
	)
	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscout_aggregation_duration_seconds",
			Help:    "Duration of each multi-source aggregation in seconds.",
			Buckets: []float64{5, 15, 30, 60, 120, 300},
		},
	)
	BackgroundRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscout_background_run_duration_seconds",
			Help:    "Duration of each background scraping batch in seconds.",
			Buckets: []float64{60, 300, 900, 1800, 3600},
		},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(ScrapedJobsCounter)
	prometheus.MustRegister(SourceErrorsCounter)
	prometheus.MustRegister(InsertedJobsCounter)
	prometheus.MustRegister(AggregationDuration)
	prometheus.MustRegister(BackgroundRunDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
