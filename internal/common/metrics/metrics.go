// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	ComplaintsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_classified_total",
			Help: "Complaints classified, by final category and priority",
		},
		[]string{"category", "priority"},
	)

	ClassificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_classification_failures_total",
			Help: "Classification requests that failed, by error kind",
		},
		[]string{"kind"},
	)

	RuleOverrides = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_rule_overrides_total",
			Help: "Priority overrides, by matched rule pattern",
		},
		[]string{"pattern"},
	)

	SentimentBoosts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_sentiment_boosts_total",
			Help: "Priority escalations caused by negative sentiment",
		},
		[]string{"from", "to"},
	)

	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "complaint_classification_duration_seconds",
			Help:    "Time spent in the classification pipeline",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	FeedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_feedback_submitted_total",
			Help: "Reviewer feedback submissions, by whether the prediction was correct",
		},
		[]string{"correct"},
	)

	ModelReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_model_reloads_total",
			Help: "Model reload attempts, by result",
		},
		[]string{"result"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_side_effect_failures_total",
			Help: "Best-effort operations (index, notify, publish, cache) that failed",
		},
		[]string{"operation"},
	)
)
