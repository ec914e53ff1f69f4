package csvproc

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for decode passes. One Metrics value
// may be shared by many decoders.
type Metrics struct {
	Passes   *prometheus.CounterVec
	Rows     prometheus.Counter
	Comments prometheus.Counter
	Errors   *prometheus.CounterVec
	Pauses   prometheus.Counter
}

// NewMetrics creates the decoder collectors and registers them with reg. A
// nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "csvproc",
				Subsystem: "decoder",
				Name:      "passes_total",
				Help:      "Total number of decode passes by final state",
			},
			[]string{"state"},
		),
		Rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csvproc",
			Subsystem: "decoder",
			Name:      "rows_total",
			Help:      "Total number of rows delivered",
		}),
		Comments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csvproc",
			Subsystem: "decoder",
			Name:      "comments_skipped_total",
			Help:      "Total number of comment lines skipped",
		}),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "csvproc",
				Subsystem: "decoder",
				Name:      "errors_total",
				Help:      "Total number of decode errors by kind",
			},
			[]string{"kind"},
		),
		Pauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csvproc",
			Subsystem: "decoder",
			Name:      "pauses_total",
			Help:      "Total number of times a pass suspended on pause",
		}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.Passes, m.Rows, m.Comments, m.Errors, m.Pauses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) passDone(s State) {
	if m == nil {
		return
	}
	m.Passes.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) rowDelivered() {
	if m == nil {
		return
	}
	m.Rows.Inc()
}

func (m *Metrics) commentSkipped() {
	if m == nil {
		return
	}
	m.Comments.Inc()
}

func (m *Metrics) decodeError(k ErrorKind) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) paused() {
	if m == nil {
		return
	}
	m.Pauses.Inc()
}
