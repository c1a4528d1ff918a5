package profile

import (
	"iter"

	"github.com/phoenixxxx/xgl/internal/assert"
	"github.com/phoenixxxx/xgl/pipeline"
)

// MatchFunc observes a rule match. It receives the rule's index in the store
// and runs after the rule's overrides were written.
type MatchFunc func(index int)

// Selection holds the indices of the rules in a store that match one
// identity, in store order. Applying a selection is equivalent to applying
// the store to that identity.
type Selection []int

// Select evaluates every rule in store against id.
func Select(store *Store, id *pipeline.Identity) Selection {
	var sel Selection
	for i, rule := range store.All() {
		if Matches(&rule.Pattern, id) {
			sel = append(sel, i)
		}
	}
	return sel
}

func matching(store *Store, id *pipeline.Identity) iter.Seq2[int, *Rule] {
	return func(yield func(int, *Rule) bool) {
		for i, rule := range store.All() {
			if Matches(&rule.Pattern, id) && !yield(i, rule) {
				return
			}
		}
	}
}

func selected(store *Store, sel Selection) iter.Seq2[int, *Rule] {
	return func(yield func(int, *Rule) bool) {
		for _, i := range sel {
			if !yield(i, store.At(i)) {
				return
			}
		}
	}
}

// ApplyShaderOptions applies every matching rule in store to the shader
// compiler options of stage, in store order.
func ApplyShaderOptions(store *Store, id *pipeline.Identity, stage pipeline.Stage, opts ShaderOptionsSet, onMatch MatchFunc) {
	applyShaderOptions(matching(store, id), stage, opts, onMatch)
}

// ApplySelectedShaderOptions is ApplyShaderOptions for a precomputed selection.
func ApplySelectedShaderOptions(store *Store, sel Selection, stage pipeline.Stage, opts ShaderOptionsSet, onMatch MatchFunc) {
	applyShaderOptions(selected(store, sel), stage, opts, onMatch)
}

func applyShaderOptions(rules iter.Seq2[int, *Rule], stage pipeline.Stage, opts ShaderOptionsSet, onMatch MatchFunc) {
	assert.That(stage.Valid(), "profile: shader stage out of range")
	if opts.Options == nil {
		return
	}
	for i, rule := range rules {
		applyShaderCreate(&rule.Action.Shaders[stage].ShaderCreate, opts)
		if onMatch != nil {
			onMatch(i)
		}
	}
}

func applyShaderCreate(a *ShaderCreateAction, set ShaderOptionsSet) {
	o := set.Options

	a.VGPRLimit.ApplyTo(&o.VGPRLimit)
	a.SGPRLimit.ApplyTo(&o.SGPRLimit)
	a.MaxThreadGroupsPerComputeUnit.ApplyTo(&o.MaxThreadGroupsPerComputeUnit)
	a.LDSSpillLimitDwords.ApplyTo(&o.LDSSpillLimitDwords)
	a.UserDataSpillThreshold.ApplyTo(&o.UserDataSpillThreshold)
	a.ForceLoopUnrollCount.ApplyTo(&o.ForceLoopUnrollCount)
	a.UnrollThreshold.ApplyTo(&o.UnrollThreshold)
	a.WaveSize.ApplyTo(&o.WaveSize)
	a.FP32DenormalMode.ApplyTo(&o.FP32DenormalMode)
	a.WaveBreakSize.ApplyTo(&o.WaveBreakSize)

	if a.DebugMode {
		o.DebugMode = true
	}
	if a.TrapPresent {
		o.TrapPresent = true
	}
	if a.AllowReZ {
		o.AllowReZ = true
	}
	if a.DisableLoopUnrolls {
		o.DisableLoopUnroll = true
	}
	if a.UseSIScheduler {
		o.UseSIScheduler = true
	}
	if a.EnableLoadScalarizer {
		o.EnableLoadScalarizer = true
	}
	if a.DisableLICM {
		o.DisableLICM = true
	}
	if a.WGPMode {
		o.WGPMode = true
	}
	if a.EnableSelectiveInline {
		o.EnableSelectiveInline = true
	}
	if a.EnableSubvector {
		o.EnableSubvector = true
	}

	if a.ReconfigWorkgroupLayout && set.Pipeline != nil {
		set.Pipeline.ReconfigWorkgroupLayout = true
	}

	if ngg := set.Ngg; ngg != nil {
		if a.NggDisable {
			ngg.EnableNgg = false
		}
		if a.NggVertexReuse {
			ngg.EnableVertexReuse = true
		}
		if a.NggEnableFrustumCulling {
			ngg.EnableFrustumCulling = true
		}
		if a.NggEnableBoxFilterCulling {
			ngg.EnableBoxFilterCulling = true
		}
		if a.NggEnableSphereCulling {
			ngg.EnableSphereCulling = true
		}
		if a.NggEnableBackfaceCulling {
			ngg.EnableBackfaceCulling = true
		}
		if a.NggEnableSmallPrimFilter {
			ngg.EnableSmallPrimFilter = true
		}
	}
}

// ApplyGraphicsInfo applies every matching rule in store to a graphics
// pipeline: per-stage dispatch limits for each stage in stages, then the
// pipeline-level create-info overrides.
func ApplyGraphicsInfo(
	store *Store,
	id *pipeline.Identity,
	stages pipeline.StageMask,
	info *GraphicsPipelineInfo,
	shaders *DynamicGraphicsShaderInfos,
	onMatch MatchFunc,
) {
	applyGraphicsInfo(matching(store, id), stages, info, shaders, onMatch)
}

// ApplySelectedGraphicsInfo is ApplyGraphicsInfo for a precomputed selection.
func ApplySelectedGraphicsInfo(
	store *Store,
	sel Selection,
	stages pipeline.StageMask,
	info *GraphicsPipelineInfo,
	shaders *DynamicGraphicsShaderInfos,
	onMatch MatchFunc,
) {
	applyGraphicsInfo(selected(store, sel), stages, info, shaders, onMatch)
}

func applyGraphicsInfo(
	rules iter.Seq2[int, *Rule],
	stages pipeline.StageMask,
	info *GraphicsPipelineInfo,
	shaders *DynamicGraphicsShaderInfos,
	onMatch MatchFunc,
) {
	for i, rule := range rules {
		actions := &rule.Action.Shaders
		if shaders != nil {
			if stages.Has(pipeline.StageVertex) {
				applyDynamicGraphics(&actions[pipeline.StageVertex].Dynamic, &shaders.VS)
			}
			if stages.Has(pipeline.StageTessControl) {
				applyDynamicGraphics(&actions[pipeline.StageTessControl].Dynamic, &shaders.HS)
			}
			if stages.Has(pipeline.StageTessEval) {
				applyDynamicGraphics(&actions[pipeline.StageTessEval].Dynamic, &shaders.DS)
			}
			if stages.Has(pipeline.StageGeometry) {
				applyDynamicGraphics(&actions[pipeline.StageGeometry].Dynamic, &shaders.GS)
			}
			if stages.Has(pipeline.StageFragment) {
				applyDynamicGraphics(&actions[pipeline.StageFragment].Dynamic, &shaders.PS)
			}
		}

		if info != nil {
			createInfo := &rule.Action.CreateInfo
			if limit, ok := createInfo.LateAllocVsLimit.Get(); ok {
				info.UseLateAllocVsLimit = true
				info.LateAllocVsLimit = limit
			}
			createInfo.BinningOverride.ApplyTo(&info.BinningOverride)
		}

		if onMatch != nil {
			onMatch(i)
		}
	}
}

func applyDynamicGraphics(a *DynamicShaderAction, info *DynamicGraphicsShaderInfo) {
	a.CUEnableMask.ApplyTo(&info.CUEnableMask)
	a.MaxWavesPerCU.ApplyTo(&info.MaxWavesPerCU)
}

// ApplyComputeInfo applies every matching rule in store to a compute
// pipeline's dispatch limits.
func ApplyComputeInfo(store *Store, id *pipeline.Identity, info *DynamicComputeShaderInfo, onMatch MatchFunc) {
	applyComputeInfo(matching(store, id), info, onMatch)
}

// ApplySelectedComputeInfo is ApplyComputeInfo for a precomputed selection.
func ApplySelectedComputeInfo(store *Store, sel Selection, info *DynamicComputeShaderInfo, onMatch MatchFunc) {
	applyComputeInfo(selected(store, sel), info, onMatch)
}

func applyComputeInfo(rules iter.Seq2[int, *Rule], info *DynamicComputeShaderInfo, onMatch MatchFunc) {
	for i, rule := range rules {
		if info != nil {
			applyDynamicCompute(&rule.Action.Shaders[pipeline.StageCompute].Dynamic, info)
		}
		if onMatch != nil {
			onMatch(i)
		}
	}
}

// applyDynamicCompute writes the compute wave limit.
// MaxThreadGroupsPerCU is not applied on this path.
func applyDynamicCompute(a *DynamicShaderAction, info *DynamicComputeShaderInfo) {
	a.MaxWavesPerCU.ApplyTo(&info.MaxWavesPerCU)
}
