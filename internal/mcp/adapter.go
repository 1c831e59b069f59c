// Package mcp adapts the tool registry to the MCP streamable HTTP transport.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bobmcallan/uc-mcp/internal/auth"
	"github.com/bobmcallan/uc-mcp/internal/common"
	"github.com/bobmcallan/uc-mcp/internal/config"
	"github.com/bobmcallan/uc-mcp/internal/metrics"
	"github.com/bobmcallan/uc-mcp/internal/tools"
)

const tracerName = "github.com/bobmcallan/uc-mcp/internal/mcp"

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("tool server already started")
	// ErrNotStarted is returned when the session resource is needed before Start.
	ErrNotStarted = errors.New("tool server not started")
)

type state int

const (
	stateNew state = iota
	stateRunning
	stateStopped
)

// Adapter exposes every tool of a registry over MCP. The streamable HTTP
// server that owns client sessions exists only between Start and Stop.
type Adapter struct {
	cfg     *config.Config
	logger  *common.Logger
	server  *mcpserver.MCPServer
	tools   []mcpgo.Tool
	metrics *metrics.Metrics
	tracer  trace.Tracer

	mu         sync.RWMutex
	state      state
	streamable *mcpserver.StreamableHTTPServer
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMetrics records tool invocations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithTracerProvider uses tp instead of the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Adapter) { a.tracer = tp.Tracer(tracerName) }
}

// NewAdapter creates the MCP server and registers every tool of registry in
// registry order, with names, descriptions and schemas unchanged. Tools()
// keeps that order; the MCP tools/list response is sorted by name.
func NewAdapter(cfg *config.Config, registry *tools.Registry, logger *common.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.server = mcpserver.NewMCPServer(
		cfg.MCP.Name,
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	for _, t := range registry.Tools() {
		def := tools.Descriptor(t)
		a.server.AddTool(def, a.handlerFor(t))
		a.tools = append(a.tools, def)
	}
	a.metrics.SetRegisteredTools(len(a.tools))

	logger.Info().
		Int("tools", len(a.tools)).
		Str("name", cfg.MCP.Name).
		Msg("MCP adapter initialized")

	return a
}

// handlerFor wraps t with tracing, identity logging and metrics.
func (a *Adapter) handlerFor(t tools.Tool) mcpserver.ToolHandlerFunc {
	name := t.Name()
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		ctx, span := a.tracer.Start(ctx, "tool.invoke", trace.WithAttributes(
			attribute.String("tool_name", name),
		))
		defer span.End()

		logger := a.logger.ForContext(ctx)
		identity := "anonymous"
		if id, ok := auth.IdentityFromContext(ctx); ok {
			identity = id.Label
			span.SetAttributes(attribute.String("auth_method", string(id.Method)))
		}
		logger.Info().Str("tool", name).Str("identity", identity).Msg("tool invoked")

		start := time.Now()
		result, err := t.Invoke(ctx, req.GetArguments())
		duration := time.Since(start)

		status := metrics.StatusSuccess
		switch {
		case err != nil:
			status = metrics.StatusError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error().Str("tool", name).Err(err).Msg("tool invocation failed")
		case result != nil && result.IsError:
			status = metrics.StatusToolError
			span.SetStatus(codes.Error, "tool error")
		default:
			span.SetStatus(codes.Ok, "")
		}
		a.metrics.ObserveTool(name, duration, status)

		logger.Debug().
			Str("tool", name).
			Str("status", status).
			Dur("duration", duration).
			Msg("tool invocation completed")

		return result, err
	}
}

// Start creates the streamable HTTP server that manages client sessions.
// It may be called once.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != stateNew {
		return ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.streamable = mcpserver.NewStreamableHTTPServer(a.server,
		mcpserver.WithStateLess(a.cfg.MCP.Stateless),
	)
	a.state = stateRunning

	a.logger.Info().Bool("stateless", a.cfg.MCP.Stateless).Msg("MCP session manager running")
	return nil
}

// Stop shuts the streamable server down and closes open sessions. It is safe
// to call more than once and does nothing if Start was never called.
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != stateRunning {
		a.state = stateStopped
		return nil
	}
	a.state = stateStopped

	streamable := a.streamable
	a.streamable = nil
	if err := streamable.Shutdown(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("MCP session manager shutdown error")
		return err
	}
	a.logger.Info().Msg("MCP session manager stopped")
	return nil
}

// Running reports whether the adapter is between Start and Stop.
func (a *Adapter) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state == stateRunning
}

// ServeHTTP delegates to the streamable server. Outside Start/Stop it
// responds 503.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	streamable := a.streamable
	a.mu.RUnlock()

	if streamable == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"detail": "tool server not ready"})
		return
	}
	streamable.ServeHTTP(w, r)
}

// Tools returns the registered tool definitions in registration order.
func (a *Adapter) Tools() []mcpgo.Tool {
	out := make([]mcpgo.Tool, len(a.tools))
	copy(out, a.tools)
	return out
}

// MCPServer returns the underlying server for in-process message handling.
func (a *Adapter) MCPServer() *mcpserver.MCPServer {
	return a.server
}
