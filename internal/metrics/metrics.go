// Package metrics exposes Prometheus counters for the job lifecycle, the
// completion pipeline, and chat provider usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auramed_jobs_submitted_total",
		Help: "Number of analysis jobs submitted to the engine.",
	})

	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auramed_jobs_completed_total",
		Help: "Number of jobs observed reaching the completed state.",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auramed_jobs_failed_total",
		Help: "Number of jobs observed reaching the failed state.",
	})

	AnomaliesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auramed_anomalies_recorded_total",
		Help: "Number of anomaly records persisted (post-dedup).",
	})

	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auramed_notifications_dispatched_total",
		Help: "Number of notifications dispatched, by recipient role.",
	}, []string{"recipient"})

	ChatResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auramed_chat_resolutions_total",
		Help: "Number of conversational turns resolved, by provider tier.",
	}, []string{"provider"})
)
