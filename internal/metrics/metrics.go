// metrics — счётчики и гистограммы Prometheus для конвейера и HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "news_digest"

// Metrics — набор метрик процесса. Методы безопасны для nil-получателя,
// поэтому слои могут работать без метрик (тесты).
type Metrics struct {
	pipelineOutcomes *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	summarizerCalls  *prometheus.CounterVec
	discoveredLinks  *prometheus.CounterVec
	ingestedItems    prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		pipelineOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "items_total",
			Help:      "Processed items by outcome.",
		}, []string{"outcome"}),
		pipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "item_duration_seconds",
			Help:      "Duration of a single item run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 90},
		}),
		summarizerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "summarizer",
			Name:      "calls_total",
			Help:      "Summarizer calls by result.",
		}, []string{"result"}),
		discoveredLinks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "links_total",
			Help:      "Discovered candidate links per source.",
		}, []string{"source"}),
		ingestedItems: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "ingested_total",
			Help:      "New items queued by discovery or admin ingest.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// PipelineOutcome учитывает итог прогона по элементу.
func (m *Metrics) PipelineOutcome(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.pipelineOutcomes.WithLabelValues(outcome).Inc()
	m.pipelineDuration.Observe(d.Seconds())
}

// SummarizerCall — result: ok | error | skipped.
func (m *Metrics) SummarizerCall(result string) {
	if m == nil {
		return
	}
	m.summarizerCalls.WithLabelValues(result).Inc()
}

func (m *Metrics) LinksDiscovered(source string, n int) {
	if m == nil {
		return
	}
	m.discoveredLinks.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ItemsIngested(n int) {
	if m == nil {
		return
	}
	m.ingestedItems.Add(float64(n))
}

// HTTPRequest учитывает запрос. route — шаблон chi, а не сырой путь.
func (m *Metrics) HTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
