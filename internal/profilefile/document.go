package profilefile

import "github.com/phoenixxxx/xgl/pipeline"

// document is the on-disk shape of a pipeline profile. The same structs carry
// both yaml and json tags so YAML and JSON files decode identically and dumps
// can be fed back as runtime profiles.
type document struct {
	Entries []entryDoc `yaml:"entries" json:"entries" validate:"dive"`
}

type entryDoc struct {
	Pattern patternDoc `yaml:"pattern" json:"pattern"`
	Action  actionDoc  `yaml:"action" json:"action"`
}

type patternDoc struct {
	Always bool `yaml:"always,omitempty" json:"always,omitempty"`

	VS *shaderPatternDoc `yaml:"vs,omitempty" json:"vs,omitempty"`
	HS *shaderPatternDoc `yaml:"hs,omitempty" json:"hs,omitempty"`
	DS *shaderPatternDoc `yaml:"ds,omitempty" json:"ds,omitempty"`
	GS *shaderPatternDoc `yaml:"gs,omitempty" json:"gs,omitempty"`
	PS *shaderPatternDoc `yaml:"ps,omitempty" json:"ps,omitempty"`
	CS *shaderPatternDoc `yaml:"cs,omitempty" json:"cs,omitempty"`
}

// stages returns the per-stage slots indexed by pipeline.Stage.
func (p *patternDoc) stages() [pipeline.StageCount]**shaderPatternDoc {
	return [pipeline.StageCount]**shaderPatternDoc{&p.VS, &p.HS, &p.DS, &p.GS, &p.PS, &p.CS}
}

type shaderPatternDoc struct {
	StageActive      bool    `yaml:"stageActive,omitempty" json:"stageActive,omitempty"`
	StageInactive    bool    `yaml:"stageInactive,omitempty" json:"stageInactive,omitempty"`
	CodeHash         string  `yaml:"codeHash,omitempty" json:"codeHash,omitempty"`
	CodeSizeLessThan *uint64 `yaml:"codeSizeLessThan,omitempty" json:"codeSizeLessThan,omitempty"`
}

type actionDoc struct {
	VS *shaderActionDoc `yaml:"vs,omitempty" json:"vs,omitempty"`
	HS *shaderActionDoc `yaml:"hs,omitempty" json:"hs,omitempty"`
	DS *shaderActionDoc `yaml:"ds,omitempty" json:"ds,omitempty"`
	GS *shaderActionDoc `yaml:"gs,omitempty" json:"gs,omitempty"`
	PS *shaderActionDoc `yaml:"ps,omitempty" json:"ps,omitempty"`
	CS *shaderActionDoc `yaml:"cs,omitempty" json:"cs,omitempty"`

	LateAllocVsLimit *uint32 `yaml:"lateAllocVsLimit,omitempty" json:"lateAllocVsLimit,omitempty"`
	BinningOverride  string  `yaml:"binningOverride,omitempty" json:"binningOverride,omitempty" validate:"omitempty,oneof=default enable disable"`
}

func (a *actionDoc) stages() [pipeline.StageCount]**shaderActionDoc {
	return [pipeline.StageCount]**shaderActionDoc{&a.VS, &a.HS, &a.DS, &a.GS, &a.PS, &a.CS}
}

type shaderActionDoc struct {
	VGPRLimit                     *uint32 `yaml:"vgprLimit,omitempty" json:"vgprLimit,omitempty"`
	SGPRLimit                     *uint32 `yaml:"sgprLimit,omitempty" json:"sgprLimit,omitempty"`
	MaxThreadGroupsPerComputeUnit *uint32 `yaml:"maxThreadGroupsPerComputeUnit,omitempty" json:"maxThreadGroupsPerComputeUnit,omitempty"`
	LDSSpillLimitDwords           *uint32 `yaml:"ldsSpillLimitDwords,omitempty" json:"ldsSpillLimitDwords,omitempty"`
	UserDataSpillThreshold        *uint32 `yaml:"userDataSpillThreshold,omitempty" json:"userDataSpillThreshold,omitempty"`
	ForceLoopUnrollCount          *uint32 `yaml:"forceLoopUnrollCount,omitempty" json:"forceLoopUnrollCount,omitempty"`
	UnrollThreshold               *uint32 `yaml:"unrollThreshold,omitempty" json:"unrollThreshold,omitempty"`
	WaveSize                      *uint32 `yaml:"waveSize,omitempty" json:"waveSize,omitempty" validate:"omitempty,oneof=32 64"`
	FP32DenormalMode              string  `yaml:"fp32DenormalMode,omitempty" json:"fp32DenormalMode,omitempty" validate:"omitempty,oneof=auto flushToZero preserve"`
	WaveBreakSize                 string  `yaml:"waveBreakSize,omitempty" json:"waveBreakSize,omitempty" validate:"omitempty,oneof=none 8x8 16x16 32x32 drawTime"`

	DebugMode               bool `yaml:"debugMode,omitempty" json:"debugMode,omitempty"`
	TrapPresent             bool `yaml:"trapPresent,omitempty" json:"trapPresent,omitempty"`
	AllowReZ                bool `yaml:"allowReZ,omitempty" json:"allowReZ,omitempty"`
	DisableLoopUnrolls      bool `yaml:"disableLoopUnrolls,omitempty" json:"disableLoopUnrolls,omitempty"`
	UseSiScheduler          bool `yaml:"useSiScheduler,omitempty" json:"useSiScheduler,omitempty"`
	ReconfigWorkgroupLayout bool `yaml:"reconfigWorkgroupLayout,omitempty" json:"reconfigWorkgroupLayout,omitempty"`
	EnableLoadScalarizer    bool `yaml:"enableLoadScalarizer,omitempty" json:"enableLoadScalarizer,omitempty"`
	DisableLicm             bool `yaml:"disableLicm,omitempty" json:"disableLicm,omitempty"`
	WgpMode                 bool `yaml:"wgpMode,omitempty" json:"wgpMode,omitempty"`
	EnableSelectiveInline   bool `yaml:"enableSelectiveInline,omitempty" json:"enableSelectiveInline,omitempty"`
	EnableSubvector         bool `yaml:"enableSubvector,omitempty" json:"enableSubvector,omitempty"`

	NggDisable                bool `yaml:"nggDisable,omitempty" json:"nggDisable,omitempty"`
	NggVertexReuse            bool `yaml:"nggVertexReuse,omitempty" json:"nggVertexReuse,omitempty"`
	NggEnableFrustumCulling   bool `yaml:"nggEnableFrustumCulling,omitempty" json:"nggEnableFrustumCulling,omitempty"`
	NggEnableBoxFilterCulling bool `yaml:"nggEnableBoxFilterCulling,omitempty" json:"nggEnableBoxFilterCulling,omitempty"`
	NggEnableSphereCulling    bool `yaml:"nggEnableSphereCulling,omitempty" json:"nggEnableSphereCulling,omitempty"`
	NggEnableBackfaceCulling  bool `yaml:"nggEnableBackfaceCulling,omitempty" json:"nggEnableBackfaceCulling,omitempty"`
	NggEnableSmallPrimFilter  bool `yaml:"nggEnableSmallPrimFilter,omitempty" json:"nggEnableSmallPrimFilter,omitempty"`

	CUEnableMask         *uint32 `yaml:"cuEnableMask,omitempty" json:"cuEnableMask,omitempty"`
	MaxWavesPerCU        *uint32 `yaml:"maxWavesPerCu,omitempty" json:"maxWavesPerCu,omitempty"`
	MaxThreadGroupsPerCU *uint32 `yaml:"maxThreadGroupsPerCu,omitempty" json:"maxThreadGroupsPerCu,omitempty"`
}
