package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pastebin"

// Recorder owns the Prometheus collectors for the service.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	pastesCreated prometheus.Counter
	pastesBurned  prometheus.Counter
	pastesSwept   prometheus.Counter
	sweepFailures prometheus.Counter
	summaries     *prometheus.CounterVec
	llmTokens     prometheus.Counter
	httpDuration  *prometheus.HistogramVec
}

// NewRegistry builds a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRecorder registers the service collectors on reg.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: reg,
		pastesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pastes_created_total",
			Help:      "Pastes stored.",
		}),
		pastesBurned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pastes_burned_total",
			Help:      "Burn-after-reading pastes deleted on read.",
		}),
		pastesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pastes_swept_total",
			Help:      "Expired pastes deleted by the sweeper.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_failures_total",
			Help:      "Sweeper runs that failed.",
		}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summarization requests by outcome.",
		}, []string{"outcome"}),
		llmTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens reported by the LLM provider.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		r.pastesCreated,
		r.pastesBurned,
		r.pastesSwept,
		r.sweepFailures,
		r.summaries,
		r.llmTokens,
		r.httpDuration,
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) PasteCreated() {
	if r == nil {
		return
	}
	r.pastesCreated.Inc()
}

func (r *Recorder) PasteBurned() {
	if r == nil {
		return
	}
	r.pastesBurned.Inc()
}

func (r *Recorder) PastesSwept(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.pastesSwept.Add(float64(n))
}

func (r *Recorder) SweepFailed() {
	if r == nil {
		return
	}
	r.sweepFailures.Inc()
}

// Summarized counts one summarization attempt. outcome is "ok" or "error".
func (r *Recorder) Summarized(outcome string, tokens int) {
	if r == nil {
		return
	}
	r.summaries.WithLabelValues(outcome).Inc()
	if tokens > 0 {
		r.llmTokens.Add(float64(tokens))
	}
}

func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
