// Package optimizer owns the three pipeline profile layers and applies them
// to pipelines as they are created.
//
// The layers are built once by Init and applied in a fixed order on every
// override call:
//
//  1. Application: the built-in table for the detected title and GPU.
//  2. Tuning: a single rule derived from settings.
//  3. Runtime: rules loaded from the PipelineProfileRuntimeFile setting.
//
// Every matching rule of every layer applies, so a later layer overrides
// fields set by an earlier one. Override calls never fail; a layer that
// could not be built is simply empty.
//
// Usage:
//
//	opt := optimizer.New(s, appprofile.Target{App: appprofile.Detect(exe), ...})
//	opt.Init()
//	defer opt.Close()
//
//	opt.OverrideShaderCreateInfo(&id, pipeline.StageFragment, profile.ShaderOptionsSet{Options: &opts})
package optimizer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/phoenixxxx/xgl"
	"github.com/phoenixxxx/xgl/appprofile"
	"github.com/phoenixxxx/xgl/internal/assert"
	"github.com/phoenixxxx/xgl/internal/matchcache"
	"github.com/phoenixxxx/xgl/internal/profilefile"
	"github.com/phoenixxxx/xgl/pipeline"
	"github.com/phoenixxxx/xgl/profile"
	"github.com/phoenixxxx/xgl/settings"
)

// Layer identifies one of the three profile layers.
type Layer int

const (
	LayerApplication Layer = iota
	LayerTuning
	LayerRuntime

	layerCount
)

// Layers lists the profile layers in application order.
var Layers = [layerCount]Layer{LayerApplication, LayerTuning, LayerRuntime}

var (
	layerNames = [layerCount]string{"Application", "Tuning", "Runtime"}
	layerKeys  = [layerCount]string{"app", "tuning", "runtime"}
)

// String returns the display name used in match reports.
func (l Layer) String() string {
	if l < 0 || l >= layerCount {
		return "Unknown"
	}
	return layerNames[l]
}

func (l Layer) key() string {
	if l < 0 || l >= layerCount {
		return "unknown"
	}
	return layerKeys[l]
}

// selections holds one match selection per layer.
type selections [layerCount]profile.Selection

// ShaderOptimizer applies pipeline profiles to shader and pipeline create info.
//
// Init must complete before the first Override call, and Close must not run
// concurrently with one. Override calls are safe for concurrent use.
type ShaderOptimizer struct {
	settings settings.Settings
	target   appprofile.Target
	opts     options
	metrics  *metrics
	cache    *matchcache.Cache[selections]

	stores      [layerCount]*profile.Store
	initialized bool

	printMu sync.Mutex
}

// New returns an optimizer with empty profiles. Call Init to build them.
func New(s settings.Settings, target appprofile.Target, opts ...Option) *ShaderOptimizer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	so := &ShaderOptimizer{
		settings: s,
		target:   target,
		opts:     o,
	}
	so.resetStores()
	if o.registerer != nil {
		so.metrics = newMetrics(o.registerer)
	}
	if o.matchCache > 0 {
		so.cache = matchcache.New[selections](o.matchCache)
	}
	return so
}

func (o *ShaderOptimizer) resetStores() {
	for i := range o.stores {
		o.stores[i] = profile.NewStore(nil, 0)
	}
}

// Init builds the application, tuning and runtime profiles, then dumps the
// tuning profile if the EnablePipelineProfileDumping setting is on.
// Calling Init again before Close is a no-op.
func (o *ShaderOptimizer) Init() {
	log := xgl.Logger()
	if o.initialized {
		log.Warn("optimizer: already initialized")
		return
	}
	o.initialized = true

	o.stores[LayerApplication] = o.buildAppProfile()
	o.stores[LayerTuning] = o.buildTuningProfile()
	if o.settings.EnablePipelineProfileDumping {
		o.dumpTuningProfile()
	}
	if o.opts.runtimeProfile {
		o.stores[LayerRuntime] = o.buildRuntimeProfile()
	}

	if o.cache != nil {
		o.cache.Clear()
	}
	for _, l := range Layers {
		o.metrics.setRules(l, o.stores[l].Len())
	}
	log.Info("optimizer: pipeline profiles built",
		"app", o.target.App.String(),
		"appRules", o.stores[LayerApplication].Len(),
		"tuningRules", o.stores[LayerTuning].Len(),
		"runtimeRules", o.stores[LayerRuntime].Len())
}

// Close frees all three profiles. The optimizer applies nothing afterwards
// until Init is called again. Close is idempotent.
func (o *ShaderOptimizer) Close() {
	for _, s := range o.stores {
		s.Free()
	}
	o.resetStores()
	if o.cache != nil {
		if o.initialized {
			st := o.cache.Stats()
			xgl.Logger().Info("optimizer: match cache released",
				"entries", st.Len,
				"lookups", st.Hits+st.Misses,
				"hitRate", st.HitRate(),
				"evictions", st.Evictions)
		}
		o.cache.Clear()
	}
	o.initialized = false
}

// Profile returns the store of layer l. The store must not be modified.
func (o *ShaderOptimizer) Profile(l Layer) *profile.Store {
	assert.That(l >= 0 && l < layerCount, "optimizer: layer out of range")
	return o.stores[l]
}

// CacheStats returns match cache counters. ok is false when the cache is off.
func (o *ShaderOptimizer) CacheStats() (stats matchcache.Stats, ok bool) {
	if o.cache == nil {
		return matchcache.Stats{}, false
	}
	return o.cache.Stats(), true
}

// OverrideShaderCreateInfo applies every layer to the compiler options of
// one stage.
func (o *ShaderOptimizer) OverrideShaderCreateInfo(id *pipeline.Identity, stage pipeline.Stage, opts profile.ShaderOptionsSet) {
	sel := o.lookup(id)
	for _, l := range Layers {
		onMatch := o.onMatch(l, id, pathShader)
		if sel != nil {
			profile.ApplySelectedShaderOptions(o.stores[l], sel[l], stage, opts, onMatch)
		} else {
			profile.ApplyShaderOptions(o.stores[l], id, stage, opts, onMatch)
		}
	}
}

// OverrideGraphicsPipelineCreateInfo applies every layer to a graphics
// pipeline's dispatch limits and pipeline-level settings. Only stages in
// stages receive dispatch overrides.
func (o *ShaderOptimizer) OverrideGraphicsPipelineCreateInfo(
	id *pipeline.Identity,
	stages pipeline.StageMask,
	info *profile.GraphicsPipelineInfo,
	shaders *profile.DynamicGraphicsShaderInfos,
) {
	sel := o.lookup(id)
	for _, l := range Layers {
		onMatch := o.onMatch(l, id, pathGraphics)
		if sel != nil {
			profile.ApplySelectedGraphicsInfo(o.stores[l], sel[l], stages, info, shaders, onMatch)
		} else {
			profile.ApplyGraphicsInfo(o.stores[l], id, stages, info, shaders, onMatch)
		}
	}
}

// OverrideComputePipelineCreateInfo applies every layer to a compute
// pipeline's dispatch limits.
func (o *ShaderOptimizer) OverrideComputePipelineCreateInfo(id *pipeline.Identity, info *profile.DynamicComputeShaderInfo) {
	sel := o.lookup(id)
	for _, l := range Layers {
		onMatch := o.onMatch(l, id, pathCompute)
		if sel != nil {
			profile.ApplySelectedComputeInfo(o.stores[l], sel[l], info, onMatch)
		} else {
			profile.ApplyComputeInfo(o.stores[l], id, info, onMatch)
		}
	}
}

// lookup returns the cached selections for id, or nil without a cache.
func (o *ShaderOptimizer) lookup(id *pipeline.Identity) *selections {
	if o.cache == nil {
		return nil
	}
	hit := true
	sel := o.cache.GetOrCompute(id, func() selections {
		hit = false
		var s selections
		for _, l := range Layers {
			s[l] = profile.Select(o.stores[l], id)
		}
		return s
	})
	o.metrics.cacheLookup(hit)
	return &sel
}

func (o *ShaderOptimizer) onMatch(l Layer, id *pipeline.Identity, path string) profile.MatchFunc {
	return func(index int) {
		o.metrics.match(l, path)
		xgl.Logger().Debug("optimizer: profile entry matched",
			"profile", l.String(), "entry", index, "path", path)
		if path != pathShader && o.settings.PipelineProfileDbgPrintProfileMatch {
			o.printMatch(l, index, id)
		}
	}
}

// printMatch writes a match report for every active stage of id, followed by
// the hash that selected the pipeline when the rule matches on a code hash.
func (o *ShaderOptimizer) printMatch(l Layer, index int, id *pipeline.Identity) {
	w := o.opts.diagnostics
	if w == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s pipeline profile entry %d triggered for pipeline:\n", l, index)
	for _, s := range pipeline.Stages {
		sh := &id.Shaders[s]
		if !sh.Active() {
			continue
		}
		fmt.Fprintf(&b, "  %s: Hash: %016X %016X Size: %8d\n", s, sh.CodeHash.Upper, sh.CodeHash.Lower, sh.CodeSize)
	}
	if h := profile.FirstMatchingHash(&o.stores[l].At(index).Pattern, id); !h.IsZero() {
		fmt.Fprintf(&b, "  Matched hash: %016X %016X\n", h.Upper, h.Lower)
	}

	o.printMu.Lock()
	defer o.printMu.Unlock()
	_, _ = io.WriteString(w, b.String())
}

func (o *ShaderOptimizer) newStore(l Layer, capacity int) *profile.Store {
	s := profile.NewStore(o.opts.alloc, capacity)
	if s.Cap() < capacity {
		xgl.Logger().Warn("optimizer: profile store allocation failed",
			"profile", l.String(), "capacity", capacity)
	}
	return s
}

func (o *ShaderOptimizer) buildAppProfile() *profile.Store {
	if o.settings.PipelineProfileIgnoresAppProfile {
		xgl.Logger().Info("optimizer: application profile disabled by settings")
		return profile.NewStore(nil, 0)
	}

	s := o.newStore(LayerApplication, max(o.opts.capacity, appprofile.MaxRules()))
	written, dropped := appprofile.Build(s, o.target)
	if dropped > 0 {
		xgl.Logger().Warn("optimizer: application profile truncated",
			"written", written, "dropped", dropped)
	}
	return s
}

func (o *ShaderOptimizer) buildTuningProfile() *profile.Store {
	s := o.newStore(LayerTuning, o.opts.capacity)
	if s.Cap() > 0 {
		BuildTuningProfile(s, &o.settings)
	}
	return s
}

func (o *ShaderOptimizer) buildRuntimeProfile() *profile.Store {
	path := o.settings.PipelineProfileRuntimeFile
	if path == "" {
		return profile.NewStore(nil, 0)
	}

	log := xgl.Logger()
	data, err := o.opts.readFile(path)
	if err != nil {
		log.Warn("optimizer: runtime profile unreadable", "file", path, "err", err)
		return profile.NewStore(nil, 0)
	}
	if len(data) == 0 {
		return profile.NewStore(nil, 0)
	}

	rules, err := o.opts.parse(data)
	if err != nil {
		o.runtimeParseError(path, err)
		return profile.NewStore(nil, 0)
	}

	s := o.newStore(LayerRuntime, max(o.opts.capacity, len(rules)))
	for _, r := range rules {
		if !s.Append(r) {
			break
		}
	}
	if s.Len() < len(rules) {
		log.Warn("optimizer: runtime profile truncated",
			"file", path, "loaded", s.Len(), "parsed", len(rules))
	}
	return s
}

// runtimeParseError reports a malformed runtime profile. Debug builds panic.
// With PipelineProfileHaltOnParseFailure set the halt hook runs, which by
// default never returns.
func (o *ShaderOptimizer) runtimeParseError(path string, err error) {
	assert.Fail("optimizer: runtime pipeline profile failed to parse")
	xgl.Logger().Error("optimizer: runtime pipeline profile failed to parse", "file", path, "err", err)
	if o.settings.PipelineProfileHaltOnParseFailure {
		o.opts.halt()
	}
}

func (o *ShaderOptimizer) dumpTuningProfile() {
	log := xgl.Logger()
	rules := o.stores[LayerTuning].Rules()

	w := o.opts.dump
	if w == nil {
		path := o.settings.PipelineProfileDumpFile
		f, err := os.Create(path)
		if err != nil {
			log.Warn("optimizer: cannot create profile dump", "file", path, "err", err)
			return
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warn("optimizer: closing profile dump", "file", path, "err", err)
			}
		}()
		w = f
	}

	if err := profilefile.Encode(w, rules); err != nil {
		log.Warn("optimizer: writing profile dump failed", "err", err)
	}
}
