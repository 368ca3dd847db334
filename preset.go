// preset.go - preset/mapping persistence

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// presetFile is the on-disk shape for load_parameters/save_parameters:
// a flat parameter map plus the MIDI mapping, all purely additive - loading
// one never clears parameters the file doesn't mention.
type presetFile struct {
	Parameters map[ParamKey]float32 `json:"parameters"`
	Midi       *MidiMappingFile     `json:"midi,omitempty"`
}

// LoadParameters applies a preset file's parameters (and MIDI mapping, if
// present) on top of the current store/mapper. A malformed or unreadable
// file leaves both untouched - "a failed preset load: last-known-good
// parameters retained".
func LoadParameters(path string, params *ParameterStore, mapper *MidiMapper) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset: %w", err)
	}

	var pf presetFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse preset: %w", err)
	}

	if len(pf.Parameters) > 0 {
		params.SetMany(pf.Parameters)
	}
	if pf.Midi != nil && mapper != nil {
		mapper.LoadMapping(pf.Midi)
	}
	return nil
}

// SaveParameters serializes every current parameter (and the active MIDI
// mapping, if mapping is non-nil) to JSON without touching disk; callers
// decide where to write it.
func SaveParameters(params *ParameterStore, mapping *MidiMappingFile) ([]byte, error) {
	pf := presetFile{
		Parameters: params.All(),
		Midi:       mapping,
	}
	data, err := json.MarshalIndent(&pf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal preset: %w", err)
	}
	return data, nil
}

// SaveParametersToFile is the convenience wrapper the CLI/GUI actually call.
func SaveParametersToFile(path string, params *ParameterStore, mapping *MidiMappingFile) error {
	data, err := SaveParameters(params, mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
