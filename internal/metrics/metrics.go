package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeAPIError       = "api_error"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeWriteError     = "write_error"
)

// Recorder holds the collaborator-API collectors.
type Recorder struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	latestPrice *prometheus.GaugeVec
	busy        prometheus.Counter
}

// New creates a Recorder and registers it with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketinsight_api_requests_total",
				Help: "Collaborator API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketinsight_api_request_duration_seconds",
				Help:    "Collaborator API round-trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		latestPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketinsight_latest_price",
				Help: "Latest price reported for a symbol",
			},
			[]string{"symbol"},
		),
		busy: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marketinsight_requests_rejected_busy_total",
				Help: "Operations rejected because another was in flight",
			},
		),
	}

	reg.MustRegister(r.requests, r.latency, r.latestPrice, r.busy)
	return r
}

// RecordRequest records one finished API call.
func (r *Recorder) RecordRequest(endpoint, outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(endpoint, outcome).Inc()
	r.latency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordLatestPrice records the latest price for a symbol.
func (r *Recorder) RecordLatestPrice(symbol string, price float64) {
	if r == nil {
		return
	}
	r.latestPrice.WithLabelValues(symbol).Set(price)
}

// Requests exposes the request counter for scraping in tests.
func (r *Recorder) Requests() *prometheus.CounterVec { return r.requests }

// LatestPrice exposes the latest-price gauge.
func (r *Recorder) LatestPrice() *prometheus.GaugeVec { return r.latestPrice }

// Busy exposes the busy-rejection counter.
func (r *Recorder) Busy() prometheus.Counter { return r.busy }

// RecordBusy counts an operation rejected while another was in flight.
func (r *Recorder) RecordBusy() {
	if r == nil {
		return
	}
	r.busy.Inc()
}
