package settings

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// WaveSize is the wave-size override.
type WaveSize int

const (
	WaveSizeAuto WaveSize = iota
	WaveSize64
	WaveSize32
)

var waveSizeNames = map[WaveSize]string{
	WaveSizeAuto: "auto",
	WaveSize64:   "wave64",
	WaveSize32:   "wave32",
}

func (w WaveSize) String() string { return enumName(waveSizeNames, w) }

// UnmarshalYAML accepts "auto", "wave64"/"64" and "wave32"/"32".
func (w *WaveSize) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "64":
		*w = WaveSize64
		return nil
	case "32":
		*w = WaveSize32
		return nil
	}
	return decodeEnum(value, waveSizeNames, w)
}

// MarshalYAML encodes the wave size by name.
func (w WaveSize) MarshalYAML() (any, error) { return w.String(), nil }

// WgpMode is the workgroup-processor mode override.
type WgpMode int

const (
	WgpModeAuto WgpMode = iota
	WgpModeCu
	WgpModeWgp
)

var wgpModeNames = map[WgpMode]string{
	WgpModeAuto: "auto",
	WgpModeCu:   "cu",
	WgpModeWgp:  "wgp",
}

func (m WgpMode) String() string { return enumName(wgpModeNames, m) }

// UnmarshalYAML accepts "auto", "cu" and "wgp".
func (m *WgpMode) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, wgpModeNames, m)
}

// MarshalYAML encodes the mode by name.
func (m WgpMode) MarshalYAML() (any, error) { return m.String(), nil }

// PipelineBinningMode is the per-pipeline primitive binning override.
type PipelineBinningMode int

const (
	PipelineBinningModeDefault PipelineBinningMode = iota
	PipelineBinningModeEnable
	PipelineBinningModeDisable
)

var binningModeNames = map[PipelineBinningMode]string{
	PipelineBinningModeDefault: "default",
	PipelineBinningModeEnable:  "enable",
	PipelineBinningModeDisable: "disable",
}

func (m PipelineBinningMode) String() string { return enumName(binningModeNames, m) }

// UnmarshalYAML accepts "default", "enable" and "disable".
func (m *PipelineBinningMode) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, binningModeNames, m)
}

// MarshalYAML encodes the mode by name.
func (m PipelineBinningMode) MarshalYAML() (any, error) { return m.String(), nil }

func enumName[E comparable](names map[E]string, v E) string {
	if name, ok := names[v]; ok {
		return name
	}
	return "unknown"
}

func decodeEnum[E comparable](value *yaml.Node, names map[E]string, out *E) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", value.Line)
	}
	for v, name := range names {
		if strings.EqualFold(value.Value, name) {
			*out = v
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown value %q", value.Line, value.Value)
}
