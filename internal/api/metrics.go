// SPDX-License-Identifier: MIT

package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docsmith_build_duration_seconds",
		Help:    "Duration of build operations in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 10), // 10ms .. ~5.1s
	})

	pagesPlanned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docsmith_pages",
		Help: "Number of pages planned during the last build",
	})

	symbolsUnresolved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docsmith_symbols_unresolved",
		Help: "Number of unresolved symbols in the last build",
	})

	lastBuildTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docsmith_last_build_timestamp",
		Help: "Timestamp of the last successful build (Unix timestamp)",
	})

	buildFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docsmith_build_failures_total",
		Help: "Number of failed builds",
	}, []string{"reason"})

	fileRequestsDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docsmith_file_requests_denied_total",
		Help: "Number of file requests denied for security reasons",
	}, []string{"reason"})
)

func recordBuildMetrics(duration time.Duration, pages, unresolved int) {
	buildDuration.Observe(duration.Seconds())
	pagesPlanned.Set(float64(pages))
	symbolsUnresolved.Set(float64(unresolved))
	lastBuildTime.Set(float64(time.Now().Unix()))
}

func recordBuildFailure(reason string) {
	buildFailuresTotal.WithLabelValues(reason).Inc()
}

func recordFileRequestDenied(reason string) {
	fileRequestsDeniedTotal.WithLabelValues(reason).Inc()
}
