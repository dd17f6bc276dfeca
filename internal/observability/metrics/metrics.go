package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewRegistry builds the application prometheus registry.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Metrics exposes application-level instruments.
type Metrics struct {
	gatewayCalls        *prometheus.CounterVec
	tokenMints          prometheus.Counter
	sessionsStarted     *prometheus.CounterVec
	geolocationSaves    *prometheus.CounterVec
	businessSubmissions *prometheus.CounterVec
}

// New configures the domain metrics instruments.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_gateway_calls_total",
			Help: "Upstream DevRoom API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		tokenMints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkout_token_mints_total",
			Help: "Bearer token credential exchanges performed.",
		}),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_sessions_started_total",
			Help: "Checkout sessions started by resulting state.",
		}, []string{"state"}),
		geolocationSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_geolocation_saves_total",
			Help: "Geolocation save side effects by outcome.",
		}, []string{"outcome"}),
		businessSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_business_submissions_total",
			Help: "Business registration submissions by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		m.gatewayCalls,
		m.tokenMints,
		m.sessionsStarted,
		m.geolocationSaves,
		m.businessSubmissions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordGatewayCall increments upstream call counts.
func (m *Metrics) RecordGatewayCall(operation, outcome string) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(normalize(operation), normalize(outcome)).Inc()
}

// RecordTokenMint increments credential exchange counts.
func (m *Metrics) RecordTokenMint() {
	if m == nil {
		return
	}
	m.tokenMints.Inc()
}

// RecordSessionStart increments session start counts.
func (m *Metrics) RecordSessionStart(state string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(normalize(state)).Inc()
}

// RecordGeolocationSave increments geolocation side-effect counts.
func (m *Metrics) RecordGeolocationSave(outcome string) {
	if m == nil {
		return
	}
	m.geolocationSaves.WithLabelValues(normalize(outcome)).Inc()
}

// RecordBusinessSubmission increments registration submission counts.
func (m *Metrics) RecordBusinessSubmission(outcome string) {
	if m == nil {
		return
	}
	m.businessSubmissions.WithLabelValues(normalize(outcome)).Inc()
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
