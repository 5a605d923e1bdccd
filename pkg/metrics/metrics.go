package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Engine task metrics
	TasksActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loadstorm_tasks_active",
			Help: "Number of stress tasks currently registered, by kind",
		},
		[]string{"kind"},
	)

	TasksAdmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadstorm_tasks_admitted_total",
			Help: "Total number of stress tasks admitted, by kind",
		},
		[]string{"kind"},
	)

	TasksRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadstorm_tasks_rejected_total",
			Help: "Total number of stress requests rejected before admission, by kind and reason",
		},
		[]string{"kind", "reason"},
	)

	TasksCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadstorm_tasks_completed_total",
			Help: "Total number of stress tasks that finished (deadline, natural end, or stop), by kind",
		},
		[]string{"kind"},
	)

	TasksStoppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadstorm_tasks_stopped_total",
			Help: "Total number of single-task stop requests (/stop/{id}), by kind parsed from the id",
		},
		[]string{"kind"},
	)

	TaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loadstorm_task_duration_seconds",
			Help:    "Wall-clock time a stress task ran before it stopped or completed, by kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// HTTP surface metrics, shared by engine and controller.
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadstorm_api_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loadstorm_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Controller dispatch/broadcast metrics.
	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loadstorm_dispatch_duration_seconds",
			Help:    "Time taken to forward a node-addressed request to its engine, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	BroadcastDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loadstorm_broadcast_duration_seconds",
			Help:    "Time taken to fan a request out to every worker pod, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	BroadcastTargetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadstorm_broadcast_targets_total",
			Help: "Total number of per-node fan-out calls made during broadcasts, by outcome",
		},
		[]string{"outcome"},
	)

	// Cluster API metrics (spawn-engine, remove-engine, node listing).
	ClusterAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadstorm_cluster_api_calls_total",
			Help: "Total number of Kubernetes API calls made by the controller, by verb and outcome",
		},
		[]string{"verb", "outcome"},
	)

	ClusterAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loadstorm_cluster_api_duration_seconds",
			Help:    "Kubernetes API call duration in seconds by verb",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"verb"},
	)

	WorkersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "loadstorm_workers_total",
			Help: "Number of worker pods currently matching the worker label selector",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TasksActive,
		TasksAdmittedTotal,
		TasksRejectedTotal,
		TasksCompletedTotal,
		TasksStoppedTotal,
		TaskDuration,
		APIRequestsTotal,
		APIRequestDuration,
		DispatchDuration,
		BroadcastDuration,
		BroadcastTargetsTotal,
		ClusterAPICallsTotal,
		ClusterAPIDuration,
		WorkersTotal,
	)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
