package metrics

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, uses prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace overrides the default "backflow" namespace for metrics.
	Namespace string

	// Labels are constant labels added to all metrics.
	Labels prometheus.Labels
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: DefaultNamespace,
		Labels:    nil,
	}
}

// Build returns the Registry described by config, or nil when metrics are
// disabled. A config pointing at the default registerer shares Default().
// Configs naming the same registerer, namespace and labels share one
// Registry, so any number of publishers can export through one registerer.
func (c Config) Build() *Registry {
	if !c.Enabled {
		return nil
	}
	if c.Registry == nil || c.Registry == prometheus.DefaultRegisterer {
		if c.Namespace == "" || c.Namespace == DefaultNamespace {
			if len(c.Labels) == 0 {
				return Default()
			}
		}
	}
	return shared(c)
}

type sharedKey struct {
	reg    prometheus.Registerer
	ns     string
	labels string
}

var (
	sharedMu   sync.Mutex
	registries = make(map[sharedKey]*Registry)
)

// shared returns the cached Registry for config, creating it on first use.
func shared(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if !reflect.TypeOf(reg).Comparable() {
		return NewRegistryWithConfig(config)
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	key := sharedKey{reg: reg, ns: ns, labels: labelKey(config.Labels)}

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if r, ok := registries[key]; ok {
		return r
	}
	r := NewRegistryWithConfig(config)
	registries[key] = r
	return r
}

func labelKey(labels prometheus.Labels) string {
	if len(labels) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
