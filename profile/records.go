package profile

// The records below mirror the compiler and hardware create-info fields that
// profiles can override. They are owned by the caller; appliers only write
// fields a matching rule flags and never reset anything.

// ShaderOptions are per-stage shader compiler options.
type ShaderOptions struct {
	VGPRLimit                     uint32
	SGPRLimit                     uint32
	MaxThreadGroupsPerComputeUnit uint32
	LDSSpillLimitDwords           uint32
	UserDataSpillThreshold        uint32
	ForceLoopUnrollCount          uint32
	UnrollThreshold               uint32
	WaveSize                      uint32
	FP32DenormalMode              DenormalMode
	WaveBreakSize                 WaveBreakSize

	DebugMode             bool
	TrapPresent           bool
	AllowReZ              bool
	DisableLoopUnroll     bool
	UseSIScheduler        bool
	EnableLoadScalarizer  bool
	DisableLICM           bool
	WGPMode               bool
	EnableSelectiveInline bool
	EnableSubvector       bool
}

// PipelineShaderOptions are compiler options shared by all stages of a pipeline.
type PipelineShaderOptions struct {
	ReconfigWorkgroupLayout bool
}

// NggState controls next-generation geometry for graphics pipelines.
type NggState struct {
	EnableNgg              bool
	EnableVertexReuse      bool
	EnableFrustumCulling   bool
	EnableBoxFilterCulling bool
	EnableSphereCulling    bool
	EnableBackfaceCulling  bool
	EnableSmallPrimFilter  bool
}

// ShaderOptionsSet bundles the records a shader-create override writes.
// Nil members are skipped; a nil Options skips the whole set.
type ShaderOptionsSet struct {
	Options  *ShaderOptions
	Pipeline *PipelineShaderOptions
	Ngg      *NggState
}

// DynamicGraphicsShaderInfo holds dispatch limits for one graphics stage.
type DynamicGraphicsShaderInfo struct {
	CUEnableMask  uint32
	MaxWavesPerCU uint32
}

// DynamicGraphicsShaderInfos holds one dispatch record per graphics stage.
type DynamicGraphicsShaderInfos struct {
	VS DynamicGraphicsShaderInfo
	HS DynamicGraphicsShaderInfo
	DS DynamicGraphicsShaderInfo
	GS DynamicGraphicsShaderInfo
	PS DynamicGraphicsShaderInfo
}

// DynamicComputeShaderInfo holds dispatch limits for a compute pipeline.
type DynamicComputeShaderInfo struct {
	MaxWavesPerCU        uint32
	MaxThreadGroupsPerCU uint32
}

// GraphicsPipelineInfo holds the pipeline-level create-info fields.
type GraphicsPipelineInfo struct {
	UseLateAllocVsLimit bool
	LateAllocVsLimit    uint32
	BinningOverride     BinningOverride
}
