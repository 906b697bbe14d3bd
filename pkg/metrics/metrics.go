// Package metrics provides Prometheus instrumentation for backflow components.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "backflow"

// Registry holds all metric instances for backflow components.
// A nil *Registry is valid and records nothing.
type Registry struct {
	SubscriptionsStarted *prometheus.CounterVec
	SubscriptionsActive  *prometheus.GaugeVec
	DemandRequested      *prometheus.CounterVec
	ItemsEmitted         *prometheus.CounterVec
	Terminations         *prometheus.CounterVec
	ResourceOperations   *prometheus.CounterVec
	ProtocolViolations   *prometheus.CounterVec
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry bound to prometheus.DefaultRegisterer,
// creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg, Namespace: DefaultNamespace})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant labels of config.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Registry{
		SubscriptionsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "subscription",
				Name:        "started_total",
				Help:        "Total number of subscriptions created",
				ConstLabels: config.Labels,
			},
			[]string{"publisher"},
		),

		SubscriptionsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "subscription",
				Name:        "active",
				Help:        "Number of subscriptions not yet terminated",
				ConstLabels: config.Labels,
			},
			[]string{"publisher"},
		),

		DemandRequested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "subscription",
				Name:        "demand_requested_total",
				Help:        "Total number of items requested by subscribers",
				ConstLabels: config.Labels,
			},
			[]string{"publisher"},
		),

		ItemsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "subscription",
				Name:        "items_emitted_total",
				Help:        "Total number of items delivered to subscribers",
				ConstLabels: config.Labels,
			},
			[]string{"publisher"},
		),

		Terminations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "subscription",
				Name:        "terminations_total",
				Help:        "Total number of subscriptions reaching a terminal state",
				ConstLabels: config.Labels,
			},
			[]string{"publisher", "state"},
		),

		ResourceOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "resource",
				Name:        "operations_total",
				Help:        "Total number of backing resource operations",
				ConstLabels: config.Labels,
			},
			[]string{"publisher", "op", "result"},
		),

		ProtocolViolations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "subscription",
				Name:        "protocol_violations_total",
				Help:        "Total number of detected subscription contract violations",
				ConstLabels: config.Labels,
			},
			[]string{"publisher"},
		),
	}
}

// SubscriptionStarted records a new subscription.
func (r *Registry) SubscriptionStarted(publisher string) {
	if r == nil {
		return
	}
	r.SubscriptionsStarted.WithLabelValues(publisher).Inc()
	r.SubscriptionsActive.WithLabelValues(publisher).Inc()
}

// Requested records n items of demand.
func (r *Registry) Requested(publisher string, n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.DemandRequested.WithLabelValues(publisher).Add(float64(n))
}

// Emitted records one delivered item.
func (r *Registry) Emitted(publisher string) {
	if r == nil {
		return
	}
	r.ItemsEmitted.WithLabelValues(publisher).Inc()
}

// Terminated records a transition into state.
func (r *Registry) Terminated(publisher, state string) {
	if r == nil {
		return
	}
	r.Terminations.WithLabelValues(publisher, state).Inc()
	r.SubscriptionsActive.WithLabelValues(publisher).Dec()
}

// ResourceOp records a backing resource operation ("open", "read", "close").
func (r *Registry) ResourceOp(publisher, op string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.ResourceOperations.WithLabelValues(publisher, op, result).Inc()
}

// Violation records a detected contract violation.
func (r *Registry) Violation(publisher string) {
	if r == nil {
		return
	}
	r.ProtocolViolations.WithLabelValues(publisher).Inc()
}
