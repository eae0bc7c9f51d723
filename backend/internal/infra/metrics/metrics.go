package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arida"

// Registry holds every collector the binaries expose on /metrics.
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	moderationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_actions_total",
			Help:      "Moderation actions by action and outcome.",
		},
		[]string{"action", "result"},
	)

	sideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Audit or notification writes that failed after the primary write succeeded.",
		},
		[]string{"effect"},
	)

	appealEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appeal_events_total",
			Help:      "Appeal lifecycle events.",
		},
		[]string{"event"},
	)

	reconcileAdjusted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_reconcile_adjusted_total",
			Help:      "Petitions whose cached signature counter was corrected.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		moderationActions,
		sideEffectFailures,
		appealEvents,
		reconcileAdjusted,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ModerationAction(action, result string) {
	moderationActions.WithLabelValues(action, result).Inc()
}

func SideEffectFailure(effect string) {
	sideEffectFailures.WithLabelValues(effect).Inc()
}

func AppealEvent(event string) {
	appealEvents.WithLabelValues(event).Inc()
}

func ReconcileAdjusted(n int) {
	if n > 0 {
		reconcileAdjusted.Add(float64(n))
	}
}

// InstrumentHandler records request counts and latency. routeOf resolves the
// route pattern so ids do not explode label cardinality.
func InstrumentHandler(routeOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := ""
			if routeOf != nil {
				route = routeOf(r)
			}
			if route == "" {
				route = "unmatched"
			}
			method := strings.ToUpper(r.Method)
			httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
