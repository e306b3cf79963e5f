package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for dashboard runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec // labels: status
	RunDuration      prometheus.Histogram
	FetchDuration    *prometheus.HistogramVec // labels: source
	InferenceDur     prometheus.Histogram
	WindowsPredicted prometheus.Counter
	LastMAPE         *prometheus.GaugeVec // labels: symbol

	// tracked bounds the symbol label; set once before use.
	tracked map[string]bool
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricelens_runs_total",
			Help: "Dashboard runs by outcome (ok or error kind)",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricelens_run_duration_seconds",
			Help:    "End-to-end dashboard build latency",
			Buckets: prometheus.DefBuckets,
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricelens_fetch_duration_seconds",
			Help:    "Price series fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		InferenceDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricelens_inference_duration_seconds",
			Help:    "Windowing, inference and inverse scaling latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		WindowsPredicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pricelens_windows_predicted_total",
			Help: "Total windows sent to the predictor",
		}),
		LastMAPE: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricelens_last_mape_percent",
			Help: "Mean absolute percentage error of the latest forecast",
		}, []string{"symbol"}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.FetchDuration,
		m.InferenceDur,
		m.WindowsPredicted,
		m.LastMAPE,
	)
	return m
}

func (m *Metrics) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveFetch(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) ObserveInference(windows int, d time.Duration) {
	if m == nil {
		return
	}
	m.InferenceDur.Observe(d.Seconds())
	m.WindowsPredicted.Add(float64(windows))
}

// TrackSymbols limits the per-symbol MAPE gauge to the given symbols.
// Until it is called no MAPE is recorded. Call it before serving.
func (m *Metrics) TrackSymbols(symbols ...string) {
	if m == nil {
		return
	}
	m.tracked = make(map[string]bool, len(symbols))
	for _, s := range symbols {
		m.tracked[strings.ToUpper(strings.TrimSpace(s))] = true
	}
}

// SetMAPE records the latest MAPE for a tracked symbol and ignores the rest.
func (m *Metrics) SetMAPE(symbol string, mape float64) {
	if m == nil || !m.tracked[symbol] {
		return
	}
	m.LastMAPE.WithLabelValues(symbol).Set(mape)
}
