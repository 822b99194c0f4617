// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import "github.com/prometheus/client_golang/prometheus"

// Cascade level label values.
const (
	LevelBase     = "base"
	LevelUser     = "user"
	LevelUserType = "user_type"
)

// Metrics holds the fetcher's Prometheus instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	queries  *prometheus.CounterVec
	items    *prometheus.CounterVec
	capHits  *prometheus.CounterVec
	partials prometheus.Counter
}

// NewMetrics creates the fetcher metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog_search",
			Name:      "queries_total",
			Help:      "Catalog queries issued, by cascade level",
		}, []string{"level"}),

		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog_search",
			Name:      "items_received_total",
			Help:      "Items returned by catalog queries before dedup, by cascade level",
		}, []string{"level"}),

		capHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog_search",
			Name:      "cap_hits_total",
			Help:      "Queries that returned exactly the result cap, by cascade level",
		}, []string{"level"}),

		partials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_search",
			Name:      "partial_results_total",
			Help:      "User/type combinations that could not be fully enumerated",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.queries, m.items, m.capHits, m.partials)
	}
	return m
}

func (m *Metrics) observeQuery(level string, n int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(level).Inc()
	m.items.WithLabelValues(level).Add(float64(n))
	if n == Cap {
		m.capHits.WithLabelValues(level).Inc()
	}
}

func (m *Metrics) observePartial() {
	if m == nil {
		return
	}
	m.partials.Inc()
}
