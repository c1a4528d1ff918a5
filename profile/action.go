package profile

import "github.com/phoenixxxx/xgl/pipeline"

// ShaderCreateAction overrides shader compiler options for one stage.
//
// Numeric and enumerated overrides are Optional values. Boolean toggles are
// one-way: true forces the feature in the compiler options, false leaves the
// caller's value alone.
type ShaderCreateAction struct {
	VGPRLimit                     Optional[uint32]
	SGPRLimit                     Optional[uint32]
	MaxThreadGroupsPerComputeUnit Optional[uint32]
	LDSSpillLimitDwords           Optional[uint32]
	UserDataSpillThreshold        Optional[uint32]
	ForceLoopUnrollCount          Optional[uint32]
	UnrollThreshold               Optional[uint32]
	WaveSize                      Optional[uint32]
	FP32DenormalMode              Optional[DenormalMode]
	WaveBreakSize                 Optional[WaveBreakSize]

	DebugMode               bool
	TrapPresent             bool
	AllowReZ                bool
	DisableLoopUnrolls      bool
	UseSIScheduler          bool
	ReconfigWorkgroupLayout bool
	EnableLoadScalarizer    bool
	DisableLICM             bool
	WGPMode                 bool
	EnableSelectiveInline   bool
	EnableSubvector         bool

	// Graphics-only next-generation geometry (NGG) options. NggDisable turns
	// NGG off; the remaining toggles can only enable culling features.
	NggDisable                bool
	NggVertexReuse            bool
	NggEnableFrustumCulling   bool
	NggEnableBoxFilterCulling bool
	NggEnableSphereCulling    bool
	NggEnableBackfaceCulling  bool
	NggEnableSmallPrimFilter  bool
}

// DynamicShaderAction overrides hardware dispatch parameters for one stage.
type DynamicShaderAction struct {
	CUEnableMask  Optional[uint32]
	MaxWavesPerCU Optional[uint32]

	// MaxThreadGroupsPerCU is only meaningful for the compute stage.
	MaxThreadGroupsPerCU Optional[uint32]
}

// ShaderAction is the override payload for one stage.
type ShaderAction struct {
	ShaderCreate ShaderCreateAction
	Dynamic      DynamicShaderAction
}

// Applied lists the names of every override the action sets, in a fixed order.
func (a *ShaderAction) Applied() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}

	sc := &a.ShaderCreate
	add(sc.VGPRLimit.IsSet(), "vgprLimit")
	add(sc.SGPRLimit.IsSet(), "sgprLimit")
	add(sc.MaxThreadGroupsPerComputeUnit.IsSet(), "maxThreadGroupsPerComputeUnit")
	add(sc.LDSSpillLimitDwords.IsSet(), "ldsSpillLimitDwords")
	add(sc.UserDataSpillThreshold.IsSet(), "userDataSpillThreshold")
	add(sc.ForceLoopUnrollCount.IsSet(), "forceLoopUnrollCount")
	add(sc.UnrollThreshold.IsSet(), "unrollThreshold")
	add(sc.WaveSize.IsSet(), "waveSize")
	add(sc.FP32DenormalMode.IsSet(), "fp32DenormalMode")
	add(sc.WaveBreakSize.IsSet(), "waveBreakSize")
	add(sc.DebugMode, "debugMode")
	add(sc.TrapPresent, "trapPresent")
	add(sc.AllowReZ, "allowReZ")
	add(sc.DisableLoopUnrolls, "disableLoopUnrolls")
	add(sc.UseSIScheduler, "useSiScheduler")
	add(sc.ReconfigWorkgroupLayout, "reconfigWorkgroupLayout")
	add(sc.EnableLoadScalarizer, "enableLoadScalarizer")
	add(sc.DisableLICM, "disableLicm")
	add(sc.WGPMode, "wgpMode")
	add(sc.EnableSelectiveInline, "enableSelectiveInline")
	add(sc.EnableSubvector, "enableSubvector")
	add(sc.NggDisable, "nggDisable")
	add(sc.NggVertexReuse, "nggVertexReuse")
	add(sc.NggEnableFrustumCulling, "nggEnableFrustumCulling")
	add(sc.NggEnableBoxFilterCulling, "nggEnableBoxFilterCulling")
	add(sc.NggEnableSphereCulling, "nggEnableSphereCulling")
	add(sc.NggEnableBackfaceCulling, "nggEnableBackfaceCulling")
	add(sc.NggEnableSmallPrimFilter, "nggEnableSmallPrimFilter")

	add(a.Dynamic.CUEnableMask.IsSet(), "cuEnableMask")
	add(a.Dynamic.MaxWavesPerCU.IsSet(), "maxWavesPerCu")
	add(a.Dynamic.MaxThreadGroupsPerCU.IsSet(), "maxThreadGroupsPerCu")
	return names
}

// PipelineAction overrides settings that affect the whole pipeline.
type PipelineAction struct {
	LateAllocVsLimit Optional[uint32]
	BinningOverride  Optional[BinningOverride]
}

// Applied lists the names of every pipeline-level override the action sets.
func (a *PipelineAction) Applied() []string {
	var names []string
	if a.LateAllocVsLimit.IsSet() {
		names = append(names, "lateAllocVsLimit")
	}
	if a.BinningOverride.IsSet() {
		names = append(names, "binningOverride")
	}
	return names
}

// PipelineActions is the action side of a Rule.
type PipelineActions struct {
	Shaders    [pipeline.StageCount]ShaderAction
	CreateInfo PipelineAction
}

// AppliedCount returns the total number of overrides set across all stages
// and the pipeline-level action.
func (a *PipelineActions) AppliedCount() int {
	n := len(a.CreateInfo.Applied())
	for i := range a.Shaders {
		n += len(a.Shaders[i].Applied())
	}
	return n
}

// Rule pairs a pattern with the action applied when it matches.
type Rule struct {
	Pattern PipelinePattern
	Action  PipelineActions
}
