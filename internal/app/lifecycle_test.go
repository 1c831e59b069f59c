package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStop(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	require.NoError(t, application.Start(context.Background()))
	assert.True(t, application.Adapter.Running())

	require.NoError(t, application.Stop(context.Background()))
	assert.False(t, application.Adapter.Running())
	require.NoError(t, application.Stop(context.Background()))
}

func TestStop_WithoutStart(t *testing.T) {
	application := newTestApp(t, testConfig(t))
	assert.NoError(t, application.Stop(context.Background()))
}

func TestRun_StartsBeforeServeAndStopsAfter(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	var runningDuringServe bool
	err := application.Run(context.Background(), func(ctx context.Context) error {
		runningDuringServe = application.Adapter.Running()
		return nil
	})

	require.NoError(t, err)
	assert.True(t, runningDuringServe)
	assert.False(t, application.Adapter.Running())
}

func TestRun_ServeErrorStillStops(t *testing.T) {
	application := newTestApp(t, testConfig(t))
	serveErr := errors.New("listen tcp :5000: address already in use")

	err := application.Run(context.Background(), func(ctx context.Context) error {
		return serveErr
	})

	assert.ErrorIs(t, err, serveErr)
	assert.False(t, application.Adapter.Running())
}

func TestRun_PanicStillStops(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	assert.PanicsWithValue(t, "boom", func() {
		application.Run(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.False(t, application.Adapter.Running())
}

func TestRun_StartFailurePreventsServing(t *testing.T) {
	application := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	served := false
	err := application.Run(ctx, func(ctx context.Context) error {
		served = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, served)
	assert.False(t, application.Adapter.Running())
}

func TestRun_ContextCancelledDuringServeStillStops(t *testing.T) {
	application := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())

	err := application.Run(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return nil
	})

	require.NoError(t, err)
	assert.False(t, application.Adapter.Running())
}
