package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func Test_MidiMapper_ControlChangeScalesToUnitRange(t *testing.T) {
	params := NewParameterStore()
	mapper := NewMidiMapper(params, nil)
	mapper.LoadMapping(&MidiMappingFile{
		CCMappings: map[ParamKey]MidiTarget{
			ParamMixAmount: {Channel: 0, CC: 20},
		},
	})

	msg := midi.Message(midi.ControlChange(0, 20, 127))
	mapper.HandleMessage(msg)

	require.InDelta(t, 1.0, params.Snapshot().Get(ParamMixAmount), 0.01)
}

func Test_MidiMapper_VelocityZeroNoteOnActsAsNoteOff(t *testing.T) {
	params := NewParameterStore()
	mapper := NewMidiMapper(params, nil)
	mapper.LoadMapping(&MidiMappingFile{
		NoteMappings: map[ParamKey]MidiTarget{
			ParamRecording: {Channel: 0, Note: 60},
		},
	})

	mapper.HandleMessage(midi.Message(midi.NoteOn(0, 60, 100)))
	require.Equal(t, float32(1), params.Snapshot().Get(ParamRecording))

	mapper.HandleMessage(midi.Message(midi.NoteOn(0, 60, 0)))
	require.Equal(t, float32(0), params.Snapshot().Get(ParamRecording))
}

func Test_MidiMapper_ButtonDebounceSuppressesRapidRetrigger(t *testing.T) {
	params := NewParameterStore()
	mapper := NewMidiMapper(params, nil)
	mapper.LoadMapping(&MidiMappingFile{
		NoteMappings: map[ParamKey]MidiTarget{
			ParamScan: {Channel: 0, Note: 40},
		},
	})

	mapper.HandleMessage(midi.Message(midi.NoteOn(0, 40, 100)))
	params.Set(ParamScan, 0)
	mapper.HandleMessage(midi.Message(midi.NoteOn(0, 40, 100)))

	require.Equal(t, float32(0), params.Snapshot().Get(ParamScan), "second trigger inside debounce window must be ignored")

	time.Sleep(buttonDebounce + 10*time.Millisecond)
	mapper.HandleMessage(midi.Message(midi.NoteOn(0, 40, 100)))
	require.Equal(t, float32(1), params.Snapshot().Get(ParamScan))
}

func Test_MidiMapper_ConflictingTargetsLastWriteWins(t *testing.T) {
	params := NewParameterStore()
	errs := NewOrchestratorErrors(4)
	mapper := NewMidiMapper(params, errs)
	mapper.LoadMapping(&MidiMappingFile{
		CCMappings: map[ParamKey]MidiTarget{
			ParamEQLowGainDB:  {Channel: 0, CC: 10},
			ParamEQHighGainDB: {Channel: 0, CC: 10},
		},
	})

	select {
	case err := <-errs.C():
		require.ErrorIs(t, err, &VAVError{Kind: ErrMidiMappingConflict})
	default:
		t.Fatal("expected a MidiMappingConflict to be reported")
	}
}

func Test_LoadSaveMidiMapping_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")

	original := &MidiMappingFile{
		CCMappings: map[ParamKey]MidiTarget{
			ParamMixAmount: {Channel: 1, CC: 7},
		},
		NoteMappings: map[ParamKey]MidiTarget{
			ParamRecording: {Channel: 1, Note: 36},
		},
	}
	require.NoError(t, SaveMidiMapping(path, original))

	loaded, err := LoadMidiMapping(path)
	require.NoError(t, err)
	require.Equal(t, original.CCMappings[ParamMixAmount], loaded.CCMappings[ParamMixAmount])
	require.Equal(t, original.NoteMappings[ParamRecording], loaded.NoteMappings[ParamRecording])

	_, err = os.Stat(path)
	require.NoError(t, err)
}
