// Package settings holds the runtime settings that drive the tuning profile
// and the pipeline-profile diagnostics.
//
// Settings are normally loaded once from a YAML (or JSON) file:
//
//	overrideShaderHashUpper: 0x751207727c904749
//	overrideShaderHashLower: 0xdd6c573c46e6adf8
//	overrideShaderStage: 4
//	overrideNumVGPRsAvailable: 64
//	overrideWaveSize: wave32
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings is returned when a settings document fails to decode or validate.
var ErrInvalidSettings = errors.New("settings: invalid settings")

// Settings is the flat set of tuning overrides and profile options.
// The zero value applies no override.
type Settings struct {
	// OverrideShaderHashLower and OverrideShaderHashUpper select the shader
	// the tuning rule applies to. When both are zero the rule matches every
	// pipeline.
	OverrideShaderHashLower uint64 `yaml:"overrideShaderHashLower"`
	OverrideShaderHashUpper uint64 `yaml:"overrideShaderHashUpper"`

	// OverrideShaderStage is the stage index (0 VS .. 5 CS) the overrides
	// apply to.
	OverrideShaderStage uint32 `yaml:"overrideShaderStage" validate:"lt=6"`

	OverrideNumVGPRsAvailable      uint32 `yaml:"overrideNumVGPRsAvailable"`
	OverrideMaxLdsSpillDwords      uint32 `yaml:"overrideMaxLdsSpillDwords"`
	OverrideUserDataSpillThreshold bool   `yaml:"overrideUserDataSpillThreshold"`

	OverrideAllowReZ                bool `yaml:"overrideAllowReZ"`
	OverrideEnableSelectiveInline   bool `yaml:"overrideEnableSelectiveInline"`
	OverrideDisableLoopUnrolls      bool `yaml:"overrideDisableLoopUnrolls"`
	OverrideUseSiScheduler          bool `yaml:"overrideUseSiScheduler"`
	OverrideReconfigWorkgroupLayout bool `yaml:"overrideReconfigWorkgroupLayout"`
	OverrideDisableLicm             bool `yaml:"overrideDisableLicm"`
	OverrideEnableLoadScalarizer    bool `yaml:"overrideEnableLoadScalarizer"`
	OverrideNggDisable              bool `yaml:"overrideNggDisable"`
	OverrideEnableSubvector         bool `yaml:"overrideEnableSubvector"`

	OverrideWaveSize     WaveSize            `yaml:"overrideWaveSize"`
	OverrideWgpMode      WgpMode             `yaml:"overrideWgpMode"`
	OverrideUsePbbPerCrc PipelineBinningMode `yaml:"overrideUsePbbPerCrc"`

	OverrideWavesPerCu uint32 `yaml:"overrideWavesPerCu"`
	// OverrideCsTgPerCu only applies when OverrideShaderStage is compute.
	OverrideCsTgPerCu uint32 `yaml:"overrideCsTgPerCu"`

	EnablePipelineProfileDumping bool   `yaml:"enablePipelineProfileDumping"`
	PipelineProfileDumpFile      string `yaml:"pipelineProfileDumpFile" validate:"required_if=EnablePipelineProfileDumping true"`

	PipelineProfileIgnoresAppProfile    bool   `yaml:"pipelineProfileIgnoresAppProfile"`
	PipelineProfileDbgPrintProfileMatch bool   `yaml:"pipelineProfileDbgPrintProfileMatch"`
	PipelineProfileHaltOnParseFailure   bool   `yaml:"pipelineProfileHaltOnParseFailure"`
	PipelineProfileRuntimeFile          string `yaml:"pipelineProfileRuntimeFile"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		PipelineProfileDumpFile: "PipelineProfile.json",
	}
}

// HasOverrideHash reports whether the tuning rule targets a specific shader.
func (s *Settings) HasOverrideHash() bool {
	return s.OverrideShaderHashLower != 0 || s.OverrideShaderHashUpper != 0
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// Decode reads a settings document on top of Default. Unknown keys are rejected.
func Decode(r io.Reader) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Parse decodes a settings document held in memory.
func Parse(data []byte) (Settings, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads settings from a file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: read %s: %w", path, err)
	}
	return Parse(data)
}
