//go:build headless

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate:      48000,
		BlockSize:       64,
		RendererBackend: RendererBackendNull,
		RenderWidth:     64,
		RenderHeight:    64,
	}
}

func Test_Engine_StartStopWithoutCameraOrMidi(t *testing.T) {
	e, err := NewEngine(newTestEngineConfig())
	require.NoError(t, err)

	require.NoError(t, e.Start())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, e.Stop(true))
}

func Test_Engine_ParameterWriteVisibleAfterStart(t *testing.T) {
	e, err := NewEngine(newTestEngineConfig())
	require.NoError(t, err)
	require.NoError(t, e.Start())
	defer e.Stop(true)

	e.Params().Set(ParamMixAmount, 0.9)
	require.InDelta(t, 0.9, e.Params().Snapshot().Get(ParamMixAmount), 0.001)
}

func Test_Engine_SavePresetRoundTrips(t *testing.T) {
	e, err := NewEngine(newTestEngineConfig())
	require.NoError(t, err)
	require.NoError(t, e.Start())
	defer e.Stop(true)

	e.Params().Set(ParamPoly, 5)

	path := t.TempDir() + "/preset.json"
	require.NoError(t, e.SavePreset(path))

	reloaded, err := NewEngine(newTestEngineConfig())
	require.NoError(t, err)
	require.NoError(t, LoadParameters(path, reloaded.Params(), nil))
	require.Equal(t, float32(5), reloaded.Params().Snapshot().Get(ParamPoly))
}

func Test_Engine_StopWithoutWaitDoesNotPanic(t *testing.T) {
	e, err := NewEngine(newTestEngineConfig())
	require.NoError(t, err)
	require.NoError(t, e.Start())
	require.NoError(t, e.Stop(false))
}
