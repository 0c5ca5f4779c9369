package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kidoova",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidoova",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kidoova",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	completions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidoova",
			Subsystem: "challenges",
			Name:      "completions_total",
			Help:      "Challenge completion attempts by outcome.",
		},
		[]string{"outcome"},
	)

	rewardsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidoova",
			Subsystem: "rewards",
			Name:      "granted_total",
			Help:      "Rewards granted to children by reward type.",
		},
		[]string{"type"},
	)

	traitXP = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kidoova",
			Subsystem: "traits",
			Name:      "xp_awarded_total",
			Help:      "Sum of trait score deltas written.",
		},
	)

	invitesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kidoova",
			Subsystem: "families",
			Name:      "expired_invites_purged_total",
			Help:      "Expired family invites removed by the cleanup job.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		completions,
		rewardsGranted,
		traitXP,
		invitesPurged,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Requests are labelled with the ServeMux pattern that matched them so path
// parameters do not explode label cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordCompletion counts a challenge completion attempt by outcome: completed, duplicate or failed
func RecordCompletion(outcome string) {
	completions.WithLabelValues(outcome).Inc()
}

// RecordRewardGranted counts one newly granted reward
func RecordRewardGranted(rewardType string) {
	rewardsGranted.WithLabelValues(rewardType).Inc()
}

// RecordTraitXP adds written trait score deltas
func RecordTraitXP(delta float64) {
	if delta > 0 {
		traitXP.Add(delta)
	}
}

// RecordInvitesPurged counts invites removed by the cleanup job
func RecordInvitesPurged(n int64) {
	if n > 0 {
		invitesPurged.Add(float64(n))
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

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
