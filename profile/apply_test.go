package profile

import (
	"reflect"
	"testing"

	"github.com/phoenixxxx/xgl/pipeline"
)

func wildcardRule() Rule {
	var r Rule
	r.Pattern.Always = true
	return r
}

func storeOf(rules ...Rule) *Store {
	s := NewStore(nil, len(rules))
	for _, r := range rules {
		s.Append(r)
	}
	return s
}

func populatedOptions() (ShaderOptions, PipelineShaderOptions, NggState) {
	opts := ShaderOptions{
		VGPRLimit:        128,
		SGPRLimit:        104,
		WaveSize:         64,
		FP32DenormalMode: DenormalPreserve,
		DebugMode:        true,
	}
	popts := PipelineShaderOptions{ReconfigWorkgroupLayout: true}
	ngg := NggState{EnableNgg: true, EnableBackfaceCulling: true}
	return opts, popts, ngg
}

func TestApplyEmptyStoreLeavesRecordsUnchanged(t *testing.T) {
	s := NewStore(nil, DefaultCapacity)
	id := identityWith(pipeline.StageFragment, psHash, 64)

	opts, popts, ngg := populatedOptions()
	wantOpts, wantPopts, wantNgg := opts, popts, ngg
	ApplyShaderOptions(s, id, pipeline.StageFragment, ShaderOptionsSet{&opts, &popts, &ngg}, nil)
	if opts != wantOpts || popts != wantPopts || ngg != wantNgg {
		t.Error("empty store modified shader options")
	}

	info := GraphicsPipelineInfo{UseLateAllocVsLimit: true, LateAllocVsLimit: 3, BinningOverride: BinningEnable}
	shaders := DynamicGraphicsShaderInfos{PS: DynamicGraphicsShaderInfo{CUEnableMask: 0xf, MaxWavesPerCU: 2}}
	wantInfo, wantShaders := info, shaders
	ApplyGraphicsInfo(s, id, pipeline.MaskAllGraphics, &info, &shaders, nil)
	if info != wantInfo || shaders != wantShaders {
		t.Error("empty store modified graphics info")
	}

	compute := DynamicComputeShaderInfo{MaxWavesPerCU: 5, MaxThreadGroupsPerCU: 6}
	wantCompute := compute
	ApplyComputeInfo(s, id, &compute, nil)
	if compute != wantCompute {
		t.Error("empty store modified compute info")
	}
}

func TestApplyNonMatchingRuleLeavesRecordsUnchanged(t *testing.T) {
	var r Rule
	r.Pattern.Shaders[pipeline.StageFragment].CodeHash = Some(psHash)
	r.Action.Shaders[pipeline.StageFragment].ShaderCreate.VGPRLimit = Some[uint32](32)

	opts := ShaderOptions{VGPRLimit: 256}
	other := identityWith(pipeline.StageFragment, pipeline.Hash128{Lower: 1}, 64)
	ApplyShaderOptions(storeOf(r), other, pipeline.StageFragment, ShaderOptionsSet{Options: &opts}, nil)
	if opts.VGPRLimit != 256 {
		t.Errorf("non-matching rule applied: VGPRLimit = %d", opts.VGPRLimit)
	}
}

func TestApplyUnflaggedFieldsUntouched(t *testing.T) {
	r := wildcardRule()
	r.Action.Shaders[pipeline.StageVertex].ShaderCreate.SGPRLimit = Some[uint32](48)

	opts, popts, ngg := populatedOptions()
	want := opts
	want.SGPRLimit = 48
	ApplyShaderOptions(storeOf(r), &pipeline.Identity{}, pipeline.StageVertex, ShaderOptionsSet{&opts, &popts, &ngg}, nil)
	if opts != want {
		t.Errorf("got %+v, want %+v", opts, want)
	}
}

func TestApplyAccumulatesDisjointFields(t *testing.T) {
	first := wildcardRule()
	first.Action.Shaders[pipeline.StageFragment].ShaderCreate.VGPRLimit = Some[uint32](64)
	second := wildcardRule()
	second.Action.Shaders[pipeline.StageFragment].ShaderCreate.WaveSize = Some[uint32](32)

	var opts ShaderOptions
	var matched []int
	onMatch := func(i int) { matched = append(matched, i) }
	ApplyShaderOptions(storeOf(first, second), &pipeline.Identity{}, pipeline.StageFragment, ShaderOptionsSet{Options: &opts}, onMatch)

	if opts.VGPRLimit != 64 || opts.WaveSize != 32 {
		t.Errorf("expected both overrides, got VGPRLimit=%d WaveSize=%d", opts.VGPRLimit, opts.WaveSize)
	}
	if !reflect.DeepEqual(matched, []int{0, 1}) {
		t.Errorf("matched = %v, want [0 1]", matched)
	}
}

func TestApplyLastWriterWins(t *testing.T) {
	first := wildcardRule()
	first.Action.Shaders[pipeline.StageCompute].ShaderCreate.VGPRLimit = Some[uint32](64)
	first.Action.Shaders[pipeline.StageCompute].Dynamic.MaxWavesPerCU = Some[uint32](4)
	second := wildcardRule()
	second.Action.Shaders[pipeline.StageCompute].ShaderCreate.VGPRLimit = Some[uint32](96)
	second.Action.Shaders[pipeline.StageCompute].Dynamic.MaxWavesPerCU = Some[uint32](10)

	s := storeOf(first, second)
	var opts ShaderOptions
	ApplyShaderOptions(s, &pipeline.Identity{}, pipeline.StageCompute, ShaderOptionsSet{Options: &opts}, nil)
	if opts.VGPRLimit != 96 {
		t.Errorf("VGPRLimit = %d, want 96", opts.VGPRLimit)
	}

	var compute DynamicComputeShaderInfo
	ApplyComputeInfo(s, &pipeline.Identity{}, &compute, nil)
	if compute.MaxWavesPerCU != 10 {
		t.Errorf("MaxWavesPerCU = %d, want 10", compute.MaxWavesPerCU)
	}
}

func TestApplyShaderOptionsAllFields(t *testing.T) {
	r := wildcardRule()
	sc := &r.Action.Shaders[pipeline.StageVertex].ShaderCreate
	sc.VGPRLimit = Some[uint32](1)
	sc.SGPRLimit = Some[uint32](2)
	sc.MaxThreadGroupsPerComputeUnit = Some[uint32](3)
	sc.LDSSpillLimitDwords = Some[uint32](4)
	sc.UserDataSpillThreshold = Some[uint32](0)
	sc.ForceLoopUnrollCount = Some[uint32](6)
	sc.UnrollThreshold = Some[uint32](7)
	sc.WaveSize = Some[uint32](32)
	sc.FP32DenormalMode = Some(DenormalFlushToZero)
	sc.WaveBreakSize = Some(WaveBreak16x16)
	sc.DebugMode = true
	sc.TrapPresent = true
	sc.AllowReZ = true
	sc.DisableLoopUnrolls = true
	sc.UseSIScheduler = true
	sc.ReconfigWorkgroupLayout = true
	sc.EnableLoadScalarizer = true
	sc.DisableLICM = true
	sc.WGPMode = true
	sc.EnableSelectiveInline = true
	sc.EnableSubvector = true
	sc.NggDisable = true
	sc.NggVertexReuse = true
	sc.NggEnableFrustumCulling = true
	sc.NggEnableBoxFilterCulling = true
	sc.NggEnableSphereCulling = true
	sc.NggEnableBackfaceCulling = true
	sc.NggEnableSmallPrimFilter = true

	opts := ShaderOptions{UserDataSpillThreshold: 99}
	var popts PipelineShaderOptions
	ngg := NggState{EnableNgg: true}
	ApplyShaderOptions(storeOf(r), &pipeline.Identity{}, pipeline.StageVertex, ShaderOptionsSet{&opts, &popts, &ngg}, nil)

	want := ShaderOptions{
		VGPRLimit:                     1,
		SGPRLimit:                     2,
		MaxThreadGroupsPerComputeUnit: 3,
		LDSSpillLimitDwords:           4,
		UserDataSpillThreshold:        0,
		ForceLoopUnrollCount:          6,
		UnrollThreshold:               7,
		WaveSize:                      32,
		FP32DenormalMode:              DenormalFlushToZero,
		WaveBreakSize:                 WaveBreak16x16,
		DebugMode:                     true,
		TrapPresent:                   true,
		AllowReZ:                      true,
		DisableLoopUnroll:             true,
		UseSIScheduler:                true,
		EnableLoadScalarizer:          true,
		DisableLICM:                   true,
		WGPMode:                       true,
		EnableSelectiveInline:         true,
		EnableSubvector:               true,
	}
	if opts != want {
		t.Errorf("options = %+v\nwant      %+v", opts, want)
	}
	if !popts.ReconfigWorkgroupLayout {
		t.Error("ReconfigWorkgroupLayout not applied")
	}
	wantNgg := NggState{
		EnableNgg:              false,
		EnableVertexReuse:      true,
		EnableFrustumCulling:   true,
		EnableBoxFilterCulling: true,
		EnableSphereCulling:    true,
		EnableBackfaceCulling:  true,
		EnableSmallPrimFilter:  true,
	}
	if ngg != wantNgg {
		t.Errorf("ngg = %+v, want %+v", ngg, wantNgg)
	}
}

func TestApplyTogglesAreOneWay(t *testing.T) {
	// A rule that does not set the toggles must not clear enabled features.
	r := wildcardRule()
	r.Action.Shaders[pipeline.StageVertex].ShaderCreate.VGPRLimit = Some[uint32](8)

	opts := ShaderOptions{AllowReZ: true, DebugMode: true}
	ngg := NggState{EnableNgg: true, EnableFrustumCulling: true}
	ApplyShaderOptions(storeOf(r), &pipeline.Identity{}, pipeline.StageVertex, ShaderOptionsSet{Options: &opts, Ngg: &ngg}, nil)
	if !opts.AllowReZ || !opts.DebugMode {
		t.Errorf("toggles cleared: %+v", opts)
	}
	if !ngg.EnableNgg || !ngg.EnableFrustumCulling {
		t.Errorf("ngg toggles cleared: %+v", ngg)
	}
}

func TestApplyShaderOptionsUsesRequestedStage(t *testing.T) {
	r := wildcardRule()
	r.Action.Shaders[pipeline.StageFragment].ShaderCreate.VGPRLimit = Some[uint32](24)

	var opts ShaderOptions
	ApplyShaderOptions(storeOf(r), &pipeline.Identity{}, pipeline.StageVertex, ShaderOptionsSet{Options: &opts}, nil)
	if opts.VGPRLimit != 0 {
		t.Errorf("fragment action applied to vertex stage: %d", opts.VGPRLimit)
	}
}

func TestApplyShaderOptionsNilOptions(t *testing.T) {
	r := wildcardRule()
	r.Action.Shaders[pipeline.StageVertex].ShaderCreate.ReconfigWorkgroupLayout = true

	var popts PipelineShaderOptions
	calls := 0
	ApplyShaderOptions(storeOf(r), &pipeline.Identity{}, pipeline.StageVertex, ShaderOptionsSet{Pipeline: &popts}, func(int) { calls++ })
	if popts.ReconfigWorkgroupLayout || calls != 0 {
		t.Error("nil Options should skip the whole set")
	}
}

func TestApplyGraphicsInfo(t *testing.T) {
	r := wildcardRule()
	r.Action.Shaders[pipeline.StageVertex].Dynamic.CUEnableMask = Some[uint32](0x0f)
	r.Action.Shaders[pipeline.StageVertex].Dynamic.MaxWavesPerCU = Some[uint32](6)
	r.Action.Shaders[pipeline.StageGeometry].Dynamic.CUEnableMask = Some[uint32](0xf0)
	r.Action.Shaders[pipeline.StageFragment].Dynamic.MaxWavesPerCU = Some[uint32](12)
	r.Action.CreateInfo.LateAllocVsLimit = Some[uint32](0)
	r.Action.CreateInfo.BinningOverride = Some(BinningDisable)

	var info GraphicsPipelineInfo
	var shaders DynamicGraphicsShaderInfos
	// Geometry is not in the mask, so its action is skipped.
	ApplyGraphicsInfo(storeOf(r), &pipeline.Identity{}, pipeline.MaskVertex|pipeline.MaskFragment, &info, &shaders, nil)

	want := DynamicGraphicsShaderInfos{
		VS: DynamicGraphicsShaderInfo{CUEnableMask: 0x0f, MaxWavesPerCU: 6},
		PS: DynamicGraphicsShaderInfo{MaxWavesPerCU: 12},
	}
	if shaders != want {
		t.Errorf("shaders = %+v, want %+v", shaders, want)
	}
	wantInfo := GraphicsPipelineInfo{UseLateAllocVsLimit: true, LateAllocVsLimit: 0, BinningOverride: BinningDisable}
	if info != wantInfo {
		t.Errorf("info = %+v, want %+v", info, wantInfo)
	}
}

func TestApplyGraphicsInfoAllStages(t *testing.T) {
	r := wildcardRule()
	for _, s := range pipeline.Stages {
		r.Action.Shaders[s].Dynamic.CUEnableMask = Some(uint32(s) + 1)
	}

	var shaders DynamicGraphicsShaderInfos
	ApplyGraphicsInfo(storeOf(r), &pipeline.Identity{}, pipeline.MaskAllGraphics, nil, &shaders, nil)
	got := []uint32{shaders.VS.CUEnableMask, shaders.HS.CUEnableMask, shaders.DS.CUEnableMask, shaders.GS.CUEnableMask, shaders.PS.CUEnableMask}
	if !reflect.DeepEqual(got, []uint32{1, 2, 3, 4, 5}) {
		t.Errorf("per-stage masks = %v", got)
	}
}

func TestApplyComputeInfoSkipsThreadGroups(t *testing.T) {
	r := wildcardRule()
	r.Action.Shaders[pipeline.StageCompute].Dynamic.MaxWavesPerCU = Some[uint32](3)
	r.Action.Shaders[pipeline.StageCompute].Dynamic.MaxThreadGroupsPerCU = Some[uint32](9)
	r.Action.Shaders[pipeline.StageVertex].Dynamic.MaxWavesPerCU = Some[uint32](30)

	info := DynamicComputeShaderInfo{MaxThreadGroupsPerCU: 1}
	ApplyComputeInfo(storeOf(r), &pipeline.Identity{}, &info, nil)
	if info.MaxWavesPerCU != 3 {
		t.Errorf("MaxWavesPerCU = %d, want 3", info.MaxWavesPerCU)
	}
	if info.MaxThreadGroupsPerCU != 1 {
		t.Errorf("MaxThreadGroupsPerCU = %d, want unchanged 1", info.MaxThreadGroupsPerCU)
	}
}

func TestSelectMatchesApply(t *testing.T) {
	hit := Rule{}
	hit.Pattern.Shaders[pipeline.StageFragment].CodeHash = Some(psHash)
	hit.Action.Shaders[pipeline.StageFragment].ShaderCreate.AllowReZ = true
	hit.Action.Shaders[pipeline.StageFragment].Dynamic.CUEnableMask = Some[uint32](0x0f)
	miss := Rule{}
	miss.Pattern.Shaders[pipeline.StageFragment].StageInactive = true
	miss.Action.Shaders[pipeline.StageFragment].Dynamic.CUEnableMask = Some[uint32](0xf0)
	all := wildcardRule()
	all.Action.Shaders[pipeline.StageCompute].Dynamic.MaxWavesPerCU = Some[uint32](6)

	s := storeOf(hit, miss, all)
	id := identityWith(pipeline.StageFragment, psHash, 512)

	sel := Select(s, id)
	if !reflect.DeepEqual(sel, Selection{0, 2}) {
		t.Fatalf("Select() = %v, want [0 2]", sel)
	}

	var direct, cached ShaderOptions
	ApplyShaderOptions(s, id, pipeline.StageFragment, ShaderOptionsSet{Options: &direct}, nil)
	var seen []int
	ApplySelectedShaderOptions(s, sel, pipeline.StageFragment, ShaderOptionsSet{Options: &cached}, func(i int) {
		seen = append(seen, i)
	})
	if direct != cached {
		t.Errorf("selected apply = %+v, direct = %+v", cached, direct)
	}
	if !reflect.DeepEqual(seen, []int{0, 2}) {
		t.Errorf("onMatch saw %v, want [0 2]", seen)
	}

	var gDirect, gCached DynamicGraphicsShaderInfos
	ApplyGraphicsInfo(s, id, pipeline.MaskFragment, nil, &gDirect, nil)
	ApplySelectedGraphicsInfo(s, sel, pipeline.MaskFragment, nil, &gCached, nil)
	if gDirect != gCached || gCached.PS.CUEnableMask != 0x0f {
		t.Errorf("graphics: direct %+v, selected %+v", gDirect, gCached)
	}

	var cDirect, cCached DynamicComputeShaderInfo
	ApplyComputeInfo(s, id, &cDirect, nil)
	ApplySelectedComputeInfo(s, sel, &cCached, nil)
	if cDirect != cCached || cCached.MaxWavesPerCU != 6 {
		t.Errorf("compute: direct %+v, selected %+v", cDirect, cCached)
	}
}

func TestAppliedNames(t *testing.T) {
	var a ShaderAction
	if len(a.Applied()) != 0 {
		t.Errorf("empty action Applied() = %v", a.Applied())
	}
	a.ShaderCreate.VGPRLimit = Some[uint32](16)
	a.ShaderCreate.AllowReZ = true
	a.Dynamic.MaxThreadGroupsPerCU = Some[uint32](2)
	want := []string{"vgprLimit", "allowReZ", "maxThreadGroupsPerCu"}
	if got := a.Applied(); !reflect.DeepEqual(got, want) {
		t.Errorf("Applied() = %v, want %v", got, want)
	}

	var actions PipelineActions
	actions.Shaders[pipeline.StageFragment] = a
	actions.CreateInfo.BinningOverride = Some(BinningEnable)
	if n := actions.AppliedCount(); n != 4 {
		t.Errorf("AppliedCount() = %d, want 4", n)
	}
}

func BenchmarkApplyGraphicsInfo(b *testing.B) {
	s := NewStore(nil, DefaultCapacity)
	for i := 0; i < DefaultCapacity; i++ {
		var r Rule
		r.Pattern.Shaders[pipeline.StageFragment].CodeHash = Some(pipeline.Hash128{Lower: uint64(i)})
		r.Action.Shaders[pipeline.StageFragment].Dynamic.CUEnableMask = Some[uint32](0xff)
		s.Append(r)
	}
	id := identityWith(pipeline.StageFragment, pipeline.Hash128{Lower: 7}, 256)

	var info GraphicsPipelineInfo
	var shaders DynamicGraphicsShaderInfos
	b.ReportAllocs()
	for b.Loop() {
		ApplyGraphicsInfo(s, id, pipeline.MaskFragment, &info, &shaders, nil)
	}
}
