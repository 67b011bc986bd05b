package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	deploymentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deployments_total",
		Help: "Completed provider deployments by provider and outcome",
	}, []string{"provider", "status"})

	stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage", "status"})

	rollbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollbacks_total",
		Help: "Completed rollbacks",
	})
)

func init() {
	prometheus.MustRegister(deploymentsTotal, stageDuration, rollbacksTotal)
}

// ObserveDeployment counts one finished provider deployment.
func ObserveDeployment(provider string, success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	deploymentsTotal.WithLabelValues(provider, status).Inc()
}

// ObserveStage records the duration of one pipeline stage.
func ObserveStage(stage string, success bool, duration time.Duration) {
	status := "failed"
	if success {
		status = "success"
	}
	stageDuration.WithLabelValues(stage, status).Observe(duration.Seconds())
}

// ObserveRollback counts one completed rollback.
func ObserveRollback() {
	rollbacksTotal.Inc()
}
