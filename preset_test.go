package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SaveThenLoadParameters_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")

	params := NewParameterStore()
	params.Set(ParamMixAmount, 0.75)
	params.Set(ParamPoly, 6)

	mapping := &MidiMappingFile{
		CCMappings: map[ParamKey]MidiTarget{ParamMixAmount: {Channel: 0, CC: 1}},
	}

	require.NoError(t, SaveParametersToFile(path, params, mapping))

	loadedParams := NewParameterStore()
	mapper := NewMidiMapper(loadedParams, nil)
	require.NoError(t, LoadParameters(path, loadedParams, mapper))

	require.InDelta(t, 0.75, loadedParams.Snapshot().Get(ParamMixAmount), 0.001)
	require.Equal(t, float32(6), loadedParams.Snapshot().Get(ParamPoly))
}

func Test_LoadParameters_MissingFileReturnsError(t *testing.T) {
	params := NewParameterStore()
	params.Set(ParamMixAmount, 0.42)

	err := LoadParameters("/nonexistent/path/preset.json", params, nil)
	require.Error(t, err)

	// Last-known-good parameters are retained on a failed load.
	require.InDelta(t, 0.42, params.Snapshot().Get(ParamMixAmount), 0.001)
}

func Test_LoadParameters_IsAdditiveOverExistingState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.json")

	// A hand-authored partial preset mentioning only one key, unlike
	// SaveParametersToFile's always-full snapshot.
	require.NoError(t, os.WriteFile(path, []byte(`{"parameters":{"alien4.mix_amount":0.2}}`), 0o644))

	target := NewParameterStore()
	target.Set(ParamPoly, 8)
	require.NoError(t, LoadParameters(path, target, nil))

	require.InDelta(t, 0.2, target.Snapshot().Get(ParamMixAmount), 0.001)
	require.Equal(t, float32(8), target.Snapshot().Get(ParamPoly), "keys absent from the preset must survive the load")
}
