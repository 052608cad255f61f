// internal/observability/metrics.go
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers (tests) can coexist.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	guessesTotal      *prometheus.CounterVec
	gamesFinished     *prometheus.CounterVec
	sessionsStarted   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		guessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordle_guesses_total",
			Help: "Guesses submitted, by outcome (scored or the rejection code).",
		}, []string{"outcome"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordle_games_finished_total",
			Help: "Games finished, by result (won, lost).",
		}, []string{"result"}),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordle_sessions_started_total",
			Help: "Daily sessions started, by whether an admin override was used.",
		}, []string{"override"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.httpRequestsTotal,
		m.httpDuration,
		m.guessesTotal,
		m.gamesFinished,
		m.sessionsStarted,
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request count and latency labelled by the matched chi
// route pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Guess(outcome string) {
	if m == nil {
		return
	}
	m.guessesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GameFinished(won bool) {
	if m == nil {
		return
	}
	result := "lost"
	if won {
		result = "won"
	}
	m.gamesFinished.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionStarted(override bool) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(strconv.FormatBool(override)).Inc()
}
