// Package metrics provides Prometheus instrumentation for backflow components.
//
// # Overview
//
// Publishers record the lifecycle of every subscription they create:
//   - subscriptions started and currently active
//   - demand requested and items emitted
//   - terminal transitions by state (completed, errored, cancelled)
//   - backing resource operations (open, read, close) by result
//   - detected protocol violations
//
// # Quick Start
//
// Metrics are off unless a publisher config enables them:
//
//	registry := prometheus.NewRegistry()
//	pub, _ := generator.New(10, factory, generator.Config{
//		Name:    "emails",
//		Metrics: metrics.Config{Enabled: true, Registry: registry},
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
//   - backflow_subscription_started_total{publisher}
//   - backflow_subscription_active{publisher}
//   - backflow_subscription_demand_requested_total{publisher}
//   - backflow_subscription_items_emitted_total{publisher}
//   - backflow_subscription_terminations_total{publisher,state}
//   - backflow_subscription_protocol_violations_total{publisher}
//   - backflow_resource_operations_total{publisher,op,result}
//
// A nil *Registry is valid; every recording method is a no-op on it.
package metrics
