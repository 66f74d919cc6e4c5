package echolib

import (
	"time"

	"github.com/funglee2k22/sockecho-go/echolib/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of an EchoServer. A nil *Metrics
// records nothing.
type Metrics struct {
	activeSessions  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	sessionCloses   *prometheus.CounterVec
	bytesEchoed     prometheus.Counter
	sessionDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sockecho_active_sessions",
			Help: "Client sessions currently being served.",
		}),
		sessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sockecho_sessions_total",
				Help: "Total number of accepted client sessions.",
			},
		),
		sessionCloses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sockecho_session_closes_total",
				Help: "Ended client sessions by reason.",
			},
			[]string{"reason"},
		),
		bytesEchoed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sockecho_bytes_echoed_total",
				Help: "Total bytes written back to clients.",
			},
		),
		sessionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sockecho_session_duration_seconds",
				Help:    "Duration of client sessions in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
	}
	reg.MustRegister(m.activeSessions)
	reg.MustRegister(m.sessionsTotal)
	reg.MustRegister(m.sessionCloses)
	reg.MustRegister(m.bytesEchoed)
	reg.MustRegister(m.sessionDuration)
	return m
}

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) sessionClosed(reason types.CloseReason, opened time.Time) {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	m.sessionCloses.WithLabelValues(string(reason)).Inc()
	m.sessionDuration.Observe(time.Since(opened).Seconds())
}

func (m *Metrics) echoed(n int) {
	if m == nil {
		return
	}
	m.bytesEchoed.Add(float64(n))
}
