// Package app wires configuration, the tool registry, the protocol adapter
// and the HTTP handlers into one application context.
package app

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/bobmcallan/uc-mcp/internal/auth"
	"github.com/bobmcallan/uc-mcp/internal/catalog"
	"github.com/bobmcallan/uc-mcp/internal/common"
	"github.com/bobmcallan/uc-mcp/internal/config"
	"github.com/bobmcallan/uc-mcp/internal/handlers"
	"github.com/bobmcallan/uc-mcp/internal/mcp"
	"github.com/bobmcallan/uc-mcp/internal/metrics"
	"github.com/bobmcallan/uc-mcp/internal/tools"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Metrics       *metrics.Metrics
	Catalog       *catalog.Store
	Registry      *tools.Registry
	Authenticator *auth.Authenticator
	Adapter       *mcp.Adapter

	// HTTP handlers
	RootHandler    *handlers.RootHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
}

type options struct {
	extraTools     []tools.Tool
	tracerProvider trace.TracerProvider
}

// Option configures New.
type Option func(*options)

// WithTools registers additional tools after the built-in ones.
func WithTools(ts ...tools.Tool) Option {
	return func(o *options) { o.extraTools = append(o.extraTools, ts...) }
}

// WithTracerProvider traces tool invocations with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// New initializes the application with all dependencies. It fails if the
// catalog cannot be opened or two tools share a name.
func New(cfg *config.Config, logger *common.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("running in dev mode")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	if err := a.initRegistry(o.extraTools); err != nil {
		a.Close()
		return nil, err
	}

	var authOpts []auth.Option
	if a.Metrics != nil {
		authOpts = append(authOpts, auth.WithObserver(a.Metrics))
	}
	a.Authenticator = auth.NewAuthenticator(cfg.Auth.ExternalAccessToken, logger, authOpts...)

	adapterOpts := []mcp.Option{mcp.WithMetrics(a.Metrics)}
	if o.tracerProvider != nil {
		adapterOpts = append(adapterOpts, mcp.WithTracerProvider(o.tracerProvider))
	}
	a.Adapter = mcp.NewAdapter(cfg, a.Registry, logger, adapterOpts...)

	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initRegistry builds the tool table: get_version, catalog tools, remote
// tools, then any extra tools, in that order.
func (a *App) initRegistry(extra []tools.Tool) error {
	a.Registry = tools.NewRegistry()

	if err := a.Registry.Register(tools.NewVersionTool(a.Config.MCP.Name)); err != nil {
		return err
	}

	if a.Config.Catalog.Enabled {
		store, err := catalog.Open(a.Config.Catalog.Path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		a.Catalog = store

		if seedFile := a.Config.Catalog.SeedFile; seedFile != "" {
			if err := catalog.SeedFromFile(context.Background(), store, seedFile, a.Logger); err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
		}

		if err := a.Registry.RegisterAll(catalog.NewTools(store, a.Config.Catalog.ToolPrefix)...); err != nil {
			return fmt.Errorf("failed to register catalog tools: %w", err)
		}
	}

	if err := a.Registry.RegisterAll(tools.NewRemoteTools(a.Config, a.Logger)...); err != nil {
		return fmt.Errorf("failed to register remote tools: %w", err)
	}

	if err := a.Registry.RegisterAll(extra...); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	a.Logger.Info().
		Int("tools", a.Registry.Len()).
		Str("names", strings.Join(a.Registry.Names(), ",")).
		Msg("tool registry built")
	return nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.RootHandler = handlers.NewRootHandler()
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Config.MCP.Name, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Catalog != nil {
		if err := a.Catalog.Close(); err != nil {
			return fmt.Errorf("failed to close catalog: %w", err)
		}
		a.Catalog = nil
	}
	return nil
}
