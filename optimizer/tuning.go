package optimizer

import (
	"github.com/phoenixxxx/xgl"
	"github.com/phoenixxxx/xgl/internal/assert"
	"github.com/phoenixxxx/xgl/pipeline"
	"github.com/phoenixxxx/xgl/profile"
	"github.com/phoenixxxx/xgl/settings"
)

// TuningRule derives the single tuning rule from s.
//
// The rule matches every pipeline unless an override hash is configured, in
// which case it matches that hash on OverrideShaderStage. Only non-default
// settings produce overrides, so Default() yields a wildcard rule that
// changes nothing. ok is false when OverrideShaderStage is out of range.
func TuningRule(s *settings.Settings) (r profile.Rule, ok bool) {
	stage := pipeline.Stage(s.OverrideShaderStage)
	if !stage.Valid() {
		assert.Fail("tuning profile: shader stage out of range")
		return profile.Rule{}, false
	}

	if s.HasOverrideHash() {
		r.Pattern.Shaders[stage].CodeHash = profile.Some(pipeline.Hash128{
			Lower: s.OverrideShaderHashLower,
			Upper: s.OverrideShaderHashUpper,
		})
	} else {
		r.Pattern.Always = true
	}

	action := &r.Action.Shaders[stage]
	sc := &action.ShaderCreate

	if s.OverrideNumVGPRsAvailable != 0 {
		sc.VGPRLimit = profile.Some(s.OverrideNumVGPRsAvailable)
	}
	if s.OverrideMaxLdsSpillDwords != 0 {
		sc.LDSSpillLimitDwords = profile.Some(s.OverrideMaxLdsSpillDwords)
	}
	if s.OverrideUserDataSpillThreshold {
		sc.UserDataSpillThreshold = profile.Some[uint32](0)
	}

	sc.AllowReZ = s.OverrideAllowReZ
	sc.EnableSelectiveInline = s.OverrideEnableSelectiveInline
	sc.DisableLoopUnrolls = s.OverrideDisableLoopUnrolls
	sc.UseSIScheduler = s.OverrideUseSiScheduler
	sc.ReconfigWorkgroupLayout = s.OverrideReconfigWorkgroupLayout
	sc.DisableLICM = s.OverrideDisableLicm
	sc.EnableLoadScalarizer = s.OverrideEnableLoadScalarizer
	sc.NggDisable = s.OverrideNggDisable
	sc.EnableSubvector = s.OverrideEnableSubvector

	switch s.OverrideWaveSize {
	case settings.WaveSize64:
		sc.WaveSize = profile.Some[uint32](64)
	case settings.WaveSize32:
		sc.WaveSize = profile.Some[uint32](32)
	}

	// Only whole-workgroup mode is an override; cu is the compiler default.
	if s.OverrideWgpMode == settings.WgpModeWgp {
		sc.WGPMode = true
	}

	if s.OverrideWavesPerCu != 0 {
		action.Dynamic.MaxWavesPerCU = profile.Some(s.OverrideWavesPerCu)
	}
	if s.OverrideCsTgPerCu != 0 && stage == pipeline.StageCompute {
		action.Dynamic.MaxThreadGroupsPerCU = profile.Some(s.OverrideCsTgPerCu)
	}

	switch s.OverrideUsePbbPerCrc {
	case settings.PipelineBinningModeEnable:
		r.Action.CreateInfo.BinningOverride = profile.Some(profile.BinningEnable)
	case settings.PipelineBinningModeDisable:
		r.Action.CreateInfo.BinningOverride = profile.Some(profile.BinningDisable)
	}
	return r, true
}

// BuildTuningProfile writes the tuning rule for s into store. It returns the
// number of rules written, which is 0 when the store has no room or the
// settings name an invalid stage.
func BuildTuningProfile(store *profile.Store, s *settings.Settings) int {
	r, ok := TuningRule(s)
	if !ok {
		xgl.Logger().Error("optimizer: tuning profile skipped",
			"stage", s.OverrideShaderStage, "max", pipeline.StageCount-1)
		return 0
	}
	if !store.Append(r) {
		xgl.Logger().Warn("optimizer: tuning profile store is full", "capacity", store.Cap())
		return 0
	}
	return 1
}
