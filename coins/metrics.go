package coins

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	inserted *prometheus.CounterVec
	deposits prometheus.Counter
	resets   *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	inserted, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coins",
		Name:      "inserted_total",
		Help:      "number of coins inserted, by denomination",
	}, []string{"denomination"}))
	if err != nil {
		return nil, err
	}

	deposits, err := register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coins",
		Name:      "deposits_total",
		Help:      "number of amounts added to the total",
	}))
	if err != nil {
		return nil, err
	}

	resets, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coins",
		Name:      "resets_total",
		Help:      "number of resets, by configuration",
	}, []string{"configuration"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{inserted: inserted, deposits: deposits, resets: resets}, nil
}

// register returns the collector already registered under the same
// descriptor, so several counters can share a registry.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	if err := registerer.Register(collector); err != nil {
		var existing prometheus.AlreadyRegisteredError
		if errors.As(err, &existing) {
			if c, ok := existing.ExistingCollector.(C); ok {
				return c, nil
			}
		}

		return collector, err
	}

	return collector, nil
}

func (m *Metrics) coinInserted(d Denomination) {
	if m == nil {
		return
	}
	m.inserted.WithLabelValues(d.String()).Inc()
}

func (m *Metrics) deposited() {
	if m == nil {
		return
	}
	m.deposits.Inc()
}

func (m *Metrics) reset(configuration string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(configuration).Inc()
}
