// midi_mapping.go - MIDI CC/Note -> ParameterStore mapping

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
)

// MidiTarget names the channel + controller number a ParameterStore key is
// bound to, matching the mapping file's JSON shape verbatim:
// {cc_mappings: {key: {channel, cc}}, note_mappings: {key: {channel, note}}}.
type MidiTarget struct {
	Channel uint8 `json:"channel"`
	CC      uint8 `json:"cc,omitempty"`
	Note    uint8 `json:"note,omitempty"`
}

// MidiMappingFile is the on-disk shape loaded/saved alongside presets.
type MidiMappingFile struct {
	CCMappings   map[ParamKey]MidiTarget `json:"cc_mappings"`
	NoteMappings map[ParamKey]MidiTarget `json:"note_mappings"`
}

func LoadMidiMapping(path string) (*MidiMappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read midi mapping: %w", err)
	}
	var m MidiMappingFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse midi mapping: %w", err)
	}
	if m.CCMappings == nil {
		m.CCMappings = map[ParamKey]MidiTarget{}
	}
	if m.NoteMappings == nil {
		m.NoteMappings = map[ParamKey]MidiTarget{}
	}
	return &m, nil
}

func SaveMidiMapping(path string, m *MidiMappingFile) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal midi mapping: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

type ccKey struct {
	channel, cc uint8
}
type noteKey struct {
	channel, note uint8
}

const buttonDebounce = 200 * time.Millisecond

// MidiMapper dispatches decoded MIDI messages to ParameterStore writes. CC
// targets drive continuous knobs (0-127 -> [0,1], then clamped, not
// rescaled, to the key's paramRange on Set, so a key whose range is not
// [0,1] only reaches the part of it inside [0,1]); note targets drive
// boolean/button params with a
// 200ms debounce and velocity-zero-as-note-off.
type MidiMapper struct {
	params *ParameterStore

	mu       sync.Mutex
	ccToKey  map[ccKey]ParamKey
	noteToKey map[noteKey]ParamKey
	lastFire map[ParamKey]time.Time

	errs *OrchestratorErrors
}

func NewMidiMapper(params *ParameterStore, errs *OrchestratorErrors) *MidiMapper {
	return &MidiMapper{
		params:    params,
		ccToKey:   map[ccKey]ParamKey{},
		noteToKey: map[noteKey]ParamKey{},
		lastFire:  map[ParamKey]time.Time{},
		errs:      errs,
	}
}

// LoadMapping replaces the mapper's bindings. Conflicting targets (two
// ParamKeys bound to the same channel+CC, or the same channel+note) resolve
// last-write-wins: the later map iteration or
// file reload simply overwrites the earlier binding, and a conflict is
// reported (not fatal) so the GUI can surface it.
func (m *MidiMapper) LoadMapping(file *MidiMappingFile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ccToKey = map[ccKey]ParamKey{}
	for key, t := range file.CCMappings {
		k := ccKey{t.Channel, t.CC}
		if existing, ok := m.ccToKey[k]; ok && existing != key {
			m.reportConflict(existing, key)
		}
		m.ccToKey[k] = key
	}

	m.noteToKey = map[noteKey]ParamKey{}
	for key, t := range file.NoteMappings {
		k := noteKey{t.Channel, t.Note}
		if existing, ok := m.noteToKey[k]; ok && existing != key {
			m.reportConflict(existing, key)
		}
		m.noteToKey[k] = key
	}
}

func (m *MidiMapper) reportConflict(previous, latest ParamKey) {
	if m.errs == nil {
		return
	}
	m.errs.Report(newVAVError(ErrMidiMappingConflict, "%s replaced by %s", previous, latest))
}

// HandleMessage decodes one incoming MIDI message and, if it matches a
// bound target, writes the ParameterStore. Safe to call from the MIDI
// driver's own callback goroutine.
func (m *MidiMapper) HandleMessage(msg midi.Message) {
	var channel, cc, value, note, velocity uint8

	switch {
	case msg.GetControlChange(&channel, &cc, &value):
		m.mu.Lock()
		key, ok := m.ccToKey[ccKey{channel, cc}]
		m.mu.Unlock()
		if ok {
			m.params.Set(key, float32(value)/127.0)
		}

	case msg.GetNoteOn(&channel, &note, &velocity):
		m.mu.Lock()
		key, ok := m.noteToKey[noteKey{channel, note}]
		m.mu.Unlock()
		if !ok {
			return
		}
		if velocity == 0 {
			// Velocity-zero note-on is a note-off by MIDI convention.
			m.params.Set(key, 0)
			return
		}
		m.fireButton(key)

	case msg.GetNoteOff(&channel, &note, &velocity):
		m.mu.Lock()
		key, ok := m.noteToKey[noteKey{channel, note}]
		m.mu.Unlock()
		if ok {
			m.params.Set(key, 0)
		}
	}
}

func (m *MidiMapper) fireButton(key ParamKey) {
	now := time.Now()
	m.mu.Lock()
	last, seen := m.lastFire[key]
	if seen && now.Sub(last) < buttonDebounce {
		m.mu.Unlock()
		return
	}
	m.lastFire[key] = now
	m.mu.Unlock()

	m.params.Set(key, 1)
}

// Listen opens the named MIDI input port (or the first available port if
// name is empty) and feeds every incoming message to HandleMessage until
// the returned stop function is called.
func (m *MidiMapper) Listen(portName string) (stop func(), err error) {
	var in midi.In
	if portName == "" {
		ports := midi.InPorts()
		if len(ports) == 0 {
			return nil, fmt.Errorf("no midi input ports available")
		}
		in = ports[0]
	} else {
		in, err = midi.FindInPort(portName)
		if err != nil {
			return nil, fmt.Errorf("find midi in port %q: %w", portName, err)
		}
	}

	stopFn, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		m.HandleMessage(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("listen to midi port: %w", err)
	}
	return stopFn, nil
}
