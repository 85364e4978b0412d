package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opLoad = "load"
	opSave = "save"

	resultOK      = "ok"
	resultMissing = "missing"
	resultError   = "error"
)

// Metrics is optional; a nil *Metrics records nothing.
type Metrics struct {
	Records  prometheus.Gauge
	Persist  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_records",
			Help: "Records currently held in memory",
		}),
		Persist: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_persist_total",
				Help: "Snapshot loads and saves by outcome",
			},
			[]string{"op", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_persist_duration_seconds",
				Help:    "Snapshot load/save latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(m.Records, m.Persist, m.Duration)
	return m
}

func (m *Metrics) setRecords(n int) {
	if m == nil {
		return
	}
	m.Records.Set(float64(n))
}

func (m *Metrics) observe(op, result string, start time.Time) {
	if m == nil {
		return
	}
	m.Persist.WithLabelValues(op, result).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
