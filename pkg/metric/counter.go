package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every navshell metric.
const Namespace = "navshell"

const (
	// ResolveTotal counts open-key resolutions by match policy.
	ResolveTotal = "resolve_total"

	// ResolveCacheTotal counts resolver cache lookups by result (hit, miss).
	ResolveCacheTotal = "resolve_cache_total"

	// RenderTotal counts rendered shell views by view (page, api).
	RenderTotal = "render_total"
)

// IncrementalCounter is a labeled counter.
type IncrementalCounter interface {
	Increment(val ...string)
}

// Counter is an IncrementalCounter backed by a prometheus CounterVec.
type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

// Increment adds one to the series with the given label values.
func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// Vec exposes the underlying vector, mostly for tests.
func (c *Counter) Vec() *prometheus.CounterVec {
	return c.vec
}

// NewCounter registers a namespaced counter on reg.
// It panics if a counter with the same name is already registered on reg.
func NewCounter(reg prometheus.Registerer, name, help string, labels ...string) *Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)

	reg.MustRegister(vec)

	return &Counter{
		Name: prometheus.BuildFQName(Namespace, "", name),
		Help: help,
		vec:  vec,
	}
}

// Handler returns an HTTP handler serving the metrics gathered by reg.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
