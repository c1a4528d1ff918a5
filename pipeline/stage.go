// Package pipeline describes the identity of a shader pipeline: which
// shader stages it uses and a content fingerprint for each stage's code.
//
// An Identity is the left-hand side of every profile match. It is captured
// once per pipeline-create call and treated as immutable afterwards.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Stage identifies one shader pipeline phase.
type Stage uint32

const (
	// StageVertex is the vertex shader stage.
	StageVertex Stage = iota
	// StageTessControl is the tessellation control (hull) stage.
	StageTessControl
	// StageTessEval is the tessellation evaluation (domain) stage.
	StageTessEval
	// StageGeometry is the geometry shader stage.
	StageGeometry
	// StageFragment is the fragment (pixel) shader stage.
	StageFragment
	// StageCompute is the compute shader stage.
	StageCompute

	// StageCount is the number of shader stages in an Identity.
	StageCount = 6
)

// Stages lists all stages in slot order.
var Stages = [StageCount]Stage{
	StageVertex, StageTessControl, StageTessEval, StageGeometry, StageFragment, StageCompute,
}

var stageNames = [StageCount]string{"VS", "HS", "DS", "GS", "PS", "CS"}

var stageKeys = [StageCount]string{"vs", "hs", "ds", "gs", "ps", "cs"}

// Valid reports whether s indexes a stage slot.
func (s Stage) Valid() bool {
	return s < StageCount
}

// String returns the short hardware name of the stage (VS, HS, DS, GS, PS, CS).
func (s Stage) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return stageNames[s]
}

// Key returns the lower-case key used for the stage in profile files.
func (s Stage) Key() string {
	if !s.Valid() {
		return ""
	}
	return stageKeys[s]
}

// Bit returns the stage mask bit for s.
func (s Stage) Bit() StageMask {
	if !s.Valid() {
		return 0
	}
	return StageMask(1) << s
}

// GPUStage maps s to the WebGPU stage flag. Tessellation and geometry have no
// WebGPU equivalent and map to gputypes.ShaderStageNone.
func (s Stage) GPUStage() gputypes.ShaderStage {
	switch s {
	case StageVertex:
		return gputypes.ShaderStageVertex
	case StageFragment:
		return gputypes.ShaderStageFragment
	case StageCompute:
		return gputypes.ShaderStageCompute
	default:
		return gputypes.ShaderStageNone
	}
}

// ParseGPUStages parses WebGPU stage names ("vertex", "fragment", "compute")
// separated by '|' or ','. Case is ignored.
func ParseGPUStages(names string) (gputypes.ShaderStages, error) {
	var set gputypes.ShaderStages
	for _, name := range strings.FieldsFunc(names, func(r rune) bool { return r == '|' || r == ',' }) {
		name = strings.TrimSpace(name)
		found := false
		for _, s := range Stages {
			if gs := s.GPUStage(); gs != gputypes.ShaderStageNone && strings.EqualFold(gs.String(), name) {
				set |= gs
				found = true
				break
			}
		}
		if !found {
			return gputypes.ShaderStageNone, fmt.Errorf("pipeline: unknown WebGPU stage %q", name)
		}
	}
	return set, nil
}

// ParseStage accepts either the short name ("PS") or the profile key ("ps").
func ParseStage(name string) (Stage, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, key := range stageKeys {
		if n == key {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("pipeline: unknown shader stage %q", name)
}

// StageMask is a set of stages. Bit values follow VkShaderStageFlagBits.
type StageMask uint32

const (
	MaskVertex      StageMask = 0x01
	MaskTessControl StageMask = 0x02
	MaskTessEval    StageMask = 0x04
	MaskGeometry    StageMask = 0x08
	MaskFragment    StageMask = 0x10
	MaskCompute     StageMask = 0x20

	// MaskAllGraphics covers every stage that can appear in a graphics pipeline.
	MaskAllGraphics = MaskVertex | MaskTessControl | MaskTessEval | MaskGeometry | MaskFragment
)

// Has reports whether stage s is in the mask.
func (m StageMask) Has(s Stage) bool {
	return m&s.Bit() != 0
}

// String lists the stages in the mask, e.g. "VS|PS".
func (m StageMask) String() string {
	if m == 0 {
		return "None"
	}
	var parts []string
	for _, s := range Stages {
		if m.Has(s) {
			parts = append(parts, s.String())
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "|")
}

// FromGPUStages converts a WebGPU stage set into a StageMask.
func FromGPUStages(stages gputypes.ShaderStages) StageMask {
	var m StageMask
	if stages.Contains(gputypes.ShaderStageVertex) {
		m |= MaskVertex
	}
	if stages.Contains(gputypes.ShaderStageFragment) {
		m |= MaskFragment
	}
	if stages.Contains(gputypes.ShaderStageCompute) {
		m |= MaskCompute
	}
	return m
}
