package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	initOnce sync.Once
	registry *prometheus.Registry

	requestCounter      *prometheus.CounterVec
	latencyHist         *prometheus.HistogramVec
	externalCallCounter *prometheus.CounterVec
	externalCallLatency *prometheus.HistogramVec
	businessEvents      *prometheus.CounterVec
	storeHealthy        prometheus.Gauge
)

// Init registers all collectors on a private registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"})

		latencyHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

		externalCallCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "external_calls_total",
			Help: "Total number of external calls (store, payment provider, identity keys)",
		}, []string{"target", "operation", "outcome"})

		externalCallLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "external_call_duration_seconds",
			Help:    "Duration of external calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"target", "operation"})

		businessEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "business_events_total",
			Help: "Business event counts by action and outcome",
		}, []string{"action", "outcome"})

		storeHealthy = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_healthy",
			Help: "1 when the last store probe succeeded, 0 otherwise",
		})

		registry.MustRegister(requestCounter, latencyHist, externalCallCounter,
			externalCallLatency, businessEvents, storeHealthy)
	})
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Registry returns the registry backing Handler.
func Registry() *prometheus.Registry {
	Init()
	return registry
}

// RecordHTTPRequest counts one served request. Route is the matched pattern, not the raw path.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	Init()
	if route == "" {
		route = "unmatched"
	}
	requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	latencyHist.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordExternalCall counts a call to a dependency and its latency.
func RecordExternalCall(target, operation string, err error, duration time.Duration) {
	Init()
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	externalCallCounter.WithLabelValues(target, operation, outcome).Inc()
	externalCallLatency.WithLabelValues(target, operation).Observe(duration.Seconds())
}

// RecordBusinessEvent counts domain actions such as request claims or recorded payments.
func RecordBusinessEvent(action, outcome string) {
	Init()
	businessEvents.WithLabelValues(action, outcome).Inc()
}

// SetStoreHealthy publishes the latest store probe result.
func SetStoreHealthy(ok bool) {
	Init()
	if ok {
		storeHealthy.Set(1)
		return
	}
	storeHealthy.Set(0)
}
