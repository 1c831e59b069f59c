package app

import (
	"context"
	"fmt"
	"time"
)

// stopTimeout bounds session cleanup once serving has ended.
const stopTimeout = 10 * time.Second

// Start acquires the MCP session manager. On failure anything partially
// acquired is released before the error is returned.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info().Msg("starting MCP session manager")

	if err := a.Adapter.Start(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("failed to start MCP session manager")
		if stopErr := a.Adapter.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			a.Logger.Warn().Err(stopErr).Msg("cleanup after failed start")
		}
		return fmt.Errorf("failed to start MCP session manager: %w", err)
	}

	a.Logger.Info().Msg("MCP session manager started")
	return nil
}

// Stop releases the MCP session manager. Calling it more than once is safe.
func (a *App) Stop(ctx context.Context) error {
	if !a.Adapter.Running() {
		return a.Adapter.Stop(ctx)
	}

	a.Logger.Info().Msg("stopping MCP session manager")
	if err := a.Adapter.Stop(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("failed to stop MCP session manager")
		return fmt.Errorf("failed to stop MCP session manager: %w", err)
	}
	return nil
}

// Run starts the session manager, runs serve until it returns, then stops
// the session manager. Stop runs on every exit path, including a panic in
// serve, which is logged and re-raised.
func (a *App) Run(ctx context.Context, serve func(context.Context) error) (err error) {
	if err := a.Start(ctx); err != nil {
		return err
	}

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()

		if r := recover(); r != nil {
			a.Logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("serve panicked")
			a.Stop(stopCtx)
			panic(r)
		}
		if stopErr := a.Stop(stopCtx); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	if err := serve(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	return nil
}
