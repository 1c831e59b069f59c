// Package metrics exposes prometheus collectors for authentication decisions
// and tool invocations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool invocation status labels.
const (
	StatusSuccess   = "success"
	StatusToolError = "tool_error"
	StatusError     = "error"
)

// Metrics holds the gateway collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	authRequests    *prometheus.CounterVec
	toolInvocations *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	registeredTools prometheus.Gauge
}

// New creates the collectors on a fresh registry, including Go runtime and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry)
}

// NewWithRegistry creates the collectors on the given registry.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		authRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ucmcp_auth_requests_total",
				Help: "Authentication decisions on the MCP endpoint",
			},
			[]string{"method", "outcome"},
		),
		toolInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ucmcp_tool_invocations_total",
				Help: "Tool invocations by tool and status",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ucmcp_tool_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"tool"},
		),
		registeredTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ucmcp_registered_tools",
				Help: "Number of tools registered with the protocol adapter",
			},
		),
	}
}

// ObserveAuth counts one authentication decision.
func (m *Metrics) ObserveAuth(method, outcome string) {
	if m == nil {
		return
	}
	m.authRequests.WithLabelValues(method, outcome).Inc()
}

// ObserveTool records one tool invocation.
func (m *Metrics) ObserveTool(tool string, duration time.Duration, status string) {
	if m == nil {
		return
	}
	m.toolInvocations.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// SetRegisteredTools records the size of the tool table.
func (m *Metrics) SetRegisteredTools(n int) {
	if m == nil {
		return
	}
	m.registeredTools.Set(float64(n))
}

// AuthRequests returns the authentication decision counter.
func (m *Metrics) AuthRequests() *prometheus.CounterVec {
	return m.authRequests
}

// ToolInvocations returns the tool invocation counter.
func (m *Metrics) ToolInvocations() *prometheus.CounterVec {
	return m.toolInvocations
}

// RegisteredTools returns the registered tool gauge.
func (m *Metrics) RegisteredTools() prometheus.Gauge {
	return m.registeredTools
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
