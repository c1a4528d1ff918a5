// Package profilefile reads and writes pipeline profiles as YAML or JSON
// documents.
//
// A profile is a list of entries, each pairing a pattern with an action:
//
//	{
//	  "entries": [
//	    {
//	      "pattern": {"ps": {"stageActive": true, "codeHash": "0xbb11905194a55485 0x313dab8ff9408da0"}},
//	      "action":  {"ps": {"allowReZ": true}}
//	    }
//	  ]
//	}
//
// Hashes are written as "0x<upper> 0x<lower>" or as a single hex number of up
// to 32 digits.
package profilefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/phoenixxxx/xgl/pipeline"
	"github.com/phoenixxxx/xgl/profile"
)

// ErrInvalidProfile is returned when a profile document cannot be decoded.
var ErrInvalidProfile = errors.New("profilefile: invalid pipeline profile")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads every rule in a profile document. An empty document holds no
// rules. Unknown keys are rejected.
func Decode(r io.Reader) ([]profile.Rule, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	rules := make([]profile.Rule, 0, len(doc.Entries))
	for i := range doc.Entries {
		rule, err := doc.Entries[i].rule()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidProfile, i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Parse decodes a profile held in memory.
func Parse(data []byte) ([]profile.Rule, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes rules as an indented JSON profile that Parse accepts.
func Encode(w io.Writer, rules []profile.Rule) error {
	doc := document{Entries: make([]entryDoc, len(rules))}
	for i := range rules {
		doc.Entries[i] = entryFromRule(&rules[i])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&doc)
}

func (e *entryDoc) rule() (profile.Rule, error) {
	var r profile.Rule
	r.Pattern.Always = e.Pattern.Always
	for s, slot := range e.Pattern.stages() {
		if *slot == nil {
			continue
		}
		sp, err := (*slot).pattern()
		if err != nil {
			return profile.Rule{}, fmt.Errorf("pattern %s: %w", pipeline.Stage(s).Key(), err)
		}
		r.Pattern.Shaders[s] = sp
	}

	for s, slot := range e.Action.stages() {
		if *slot == nil {
			continue
		}
		sa, err := (*slot).action()
		if err != nil {
			return profile.Rule{}, fmt.Errorf("action %s: %w", pipeline.Stage(s).Key(), err)
		}
		r.Action.Shaders[s] = sa
	}

	r.Action.CreateInfo.LateAllocVsLimit = optional(e.Action.LateAllocVsLimit)
	if e.Action.BinningOverride != "" {
		b, err := profile.ParseBinningOverride(e.Action.BinningOverride)
		if err != nil {
			return profile.Rule{}, err
		}
		r.Action.CreateInfo.BinningOverride = profile.Some(b)
	}
	return r, nil
}

func (d *shaderPatternDoc) pattern() (profile.ShaderPattern, error) {
	p := profile.ShaderPattern{
		StageActive:      d.StageActive,
		StageInactive:    d.StageInactive,
		CodeSizeLessThan: optional(d.CodeSizeLessThan),
	}
	if d.CodeHash != "" {
		h, err := pipeline.ParseHash128(d.CodeHash)
		if err != nil {
			return profile.ShaderPattern{}, err
		}
		p.CodeHash = profile.Some(h)
	}
	return p, nil
}

func (d *shaderActionDoc) action() (profile.ShaderAction, error) {
	var a profile.ShaderAction
	sc := &a.ShaderCreate
	sc.VGPRLimit = optional(d.VGPRLimit)
	sc.SGPRLimit = optional(d.SGPRLimit)
	sc.MaxThreadGroupsPerComputeUnit = optional(d.MaxThreadGroupsPerComputeUnit)
	sc.LDSSpillLimitDwords = optional(d.LDSSpillLimitDwords)
	sc.UserDataSpillThreshold = optional(d.UserDataSpillThreshold)
	sc.ForceLoopUnrollCount = optional(d.ForceLoopUnrollCount)
	sc.UnrollThreshold = optional(d.UnrollThreshold)
	sc.WaveSize = optional(d.WaveSize)
	if d.FP32DenormalMode != "" {
		m, err := profile.ParseDenormalMode(d.FP32DenormalMode)
		if err != nil {
			return a, err
		}
		sc.FP32DenormalMode = profile.Some(m)
	}
	if d.WaveBreakSize != "" {
		w, err := profile.ParseWaveBreakSize(d.WaveBreakSize)
		if err != nil {
			return a, err
		}
		sc.WaveBreakSize = profile.Some(w)
	}

	sc.DebugMode = d.DebugMode
	sc.TrapPresent = d.TrapPresent
	sc.AllowReZ = d.AllowReZ
	sc.DisableLoopUnrolls = d.DisableLoopUnrolls
	sc.UseSIScheduler = d.UseSiScheduler
	sc.ReconfigWorkgroupLayout = d.ReconfigWorkgroupLayout
	sc.EnableLoadScalarizer = d.EnableLoadScalarizer
	sc.DisableLICM = d.DisableLicm
	sc.WGPMode = d.WgpMode
	sc.EnableSelectiveInline = d.EnableSelectiveInline
	sc.EnableSubvector = d.EnableSubvector

	sc.NggDisable = d.NggDisable
	sc.NggVertexReuse = d.NggVertexReuse
	sc.NggEnableFrustumCulling = d.NggEnableFrustumCulling
	sc.NggEnableBoxFilterCulling = d.NggEnableBoxFilterCulling
	sc.NggEnableSphereCulling = d.NggEnableSphereCulling
	sc.NggEnableBackfaceCulling = d.NggEnableBackfaceCulling
	sc.NggEnableSmallPrimFilter = d.NggEnableSmallPrimFilter

	a.Dynamic.CUEnableMask = optional(d.CUEnableMask)
	a.Dynamic.MaxWavesPerCU = optional(d.MaxWavesPerCU)
	a.Dynamic.MaxThreadGroupsPerCU = optional(d.MaxThreadGroupsPerCU)
	return a, nil
}

func entryFromRule(r *profile.Rule) entryDoc {
	var e entryDoc
	e.Pattern.Always = r.Pattern.Always
	patterns := e.Pattern.stages()
	actions := e.Action.stages()
	for s := range pipeline.StageCount {
		if sp := &r.Pattern.Shaders[s]; !sp.Empty() {
			*patterns[s] = patternDocFrom(sp)
		}
		if sa := &r.Action.Shaders[s]; len(sa.Applied()) > 0 {
			*actions[s] = actionDocFrom(sa)
		}
	}
	e.Action.LateAllocVsLimit = pointer(r.Action.CreateInfo.LateAllocVsLimit)
	if b, ok := r.Action.CreateInfo.BinningOverride.Get(); ok {
		e.Action.BinningOverride = b.String()
	}
	return e
}

func patternDocFrom(p *profile.ShaderPattern) *shaderPatternDoc {
	d := &shaderPatternDoc{
		StageActive:      p.StageActive,
		StageInactive:    p.StageInactive,
		CodeSizeLessThan: pointer(p.CodeSizeLessThan),
	}
	if h, ok := p.CodeHash.Get(); ok {
		d.CodeHash = fmt.Sprintf("0x%016x 0x%016x", h.Upper, h.Lower)
	}
	return d
}

func actionDocFrom(a *profile.ShaderAction) *shaderActionDoc {
	sc := &a.ShaderCreate
	d := &shaderActionDoc{
		VGPRLimit:                     pointer(sc.VGPRLimit),
		SGPRLimit:                     pointer(sc.SGPRLimit),
		MaxThreadGroupsPerComputeUnit: pointer(sc.MaxThreadGroupsPerComputeUnit),
		LDSSpillLimitDwords:           pointer(sc.LDSSpillLimitDwords),
		UserDataSpillThreshold:        pointer(sc.UserDataSpillThreshold),
		ForceLoopUnrollCount:          pointer(sc.ForceLoopUnrollCount),
		UnrollThreshold:               pointer(sc.UnrollThreshold),
		WaveSize:                      pointer(sc.WaveSize),

		DebugMode:               sc.DebugMode,
		TrapPresent:             sc.TrapPresent,
		AllowReZ:                sc.AllowReZ,
		DisableLoopUnrolls:      sc.DisableLoopUnrolls,
		UseSiScheduler:          sc.UseSIScheduler,
		ReconfigWorkgroupLayout: sc.ReconfigWorkgroupLayout,
		EnableLoadScalarizer:    sc.EnableLoadScalarizer,
		DisableLicm:             sc.DisableLICM,
		WgpMode:                 sc.WGPMode,
		EnableSelectiveInline:   sc.EnableSelectiveInline,
		EnableSubvector:         sc.EnableSubvector,

		NggDisable:                sc.NggDisable,
		NggVertexReuse:            sc.NggVertexReuse,
		NggEnableFrustumCulling:   sc.NggEnableFrustumCulling,
		NggEnableBoxFilterCulling: sc.NggEnableBoxFilterCulling,
		NggEnableSphereCulling:    sc.NggEnableSphereCulling,
		NggEnableBackfaceCulling:  sc.NggEnableBackfaceCulling,
		NggEnableSmallPrimFilter:  sc.NggEnableSmallPrimFilter,

		CUEnableMask:         pointer(a.Dynamic.CUEnableMask),
		MaxWavesPerCU:        pointer(a.Dynamic.MaxWavesPerCU),
		MaxThreadGroupsPerCU: pointer(a.Dynamic.MaxThreadGroupsPerCU),
	}
	if m, ok := sc.FP32DenormalMode.Get(); ok {
		d.FP32DenormalMode = m.String()
	}
	if w, ok := sc.WaveBreakSize.Get(); ok {
		d.WaveBreakSize = w.String()
	}
	return d
}

func optional[T any](p *T) profile.Optional[T] {
	if p == nil {
		return profile.Optional[T]{}
	}
	return profile.Some(*p)
}

func pointer[T any](o profile.Optional[T]) *T {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return &v
}
