package profile

import "github.com/phoenixxxx/xgl/pipeline"

// ShaderPattern holds the match criteria for one stage. Enabled criteria are
// ANDed. A pattern with no enabled criteria constrains nothing.
type ShaderPattern struct {
	// StageActive requires the stage to be present (code size != 0).
	StageActive bool
	// StageInactive requires the stage to be absent (code size == 0).
	StageInactive bool
	// CodeHash requires both hash halves to equal the stage's code hash.
	CodeHash Optional[pipeline.Hash128]
	// CodeSizeLessThan fails the match when the threshold is greater than or
	// equal to the stage's code size, so a threshold T only accepts sizes
	// above T. The name is kept from the profile file format.
	CodeSizeLessThan Optional[uint64]
}

// Empty reports whether no criterion is enabled.
func (p *ShaderPattern) Empty() bool {
	return !p.StageActive && !p.StageInactive && !p.CodeHash.IsSet() && !p.CodeSizeLessThan.IsSet()
}

// matches evaluates every enabled criterion against one stage.
func (p *ShaderPattern) matches(shader *pipeline.ShaderIdentity) bool {
	if p.StageActive && shader.CodeSize == 0 {
		return false
	}
	if p.StageInactive && shader.CodeSize != 0 {
		return false
	}
	if hash, ok := p.CodeHash.Get(); ok {
		if hash.Lower != shader.CodeHash.Lower || hash.Upper != shader.CodeHash.Upper {
			return false
		}
	}
	if threshold, ok := p.CodeSizeLessThan.Get(); ok && threshold >= shader.CodeSize {
		return false
	}
	return true
}

// PipelinePattern is the match side of a Rule.
type PipelinePattern struct {
	// Always matches every pipeline regardless of the stage patterns.
	Always bool

	Shaders [pipeline.StageCount]ShaderPattern
}

// Matches reports whether pattern accepts the pipeline identity.
//
// A wildcard pattern always matches. Otherwise every stage with at least one
// enabled criterion must pass all of them; evaluation stops at the first
// failure. A pattern with no criteria at all matches every pipeline.
func Matches(pattern *PipelinePattern, id *pipeline.Identity) bool {
	if pattern.Always {
		return true
	}
	for stage := range pattern.Shaders {
		sp := &pattern.Shaders[stage]
		if sp.Empty() {
			continue
		}
		if !sp.matches(&id.Shaders[stage]) {
			return false
		}
	}
	return true
}

// FirstMatchingHash returns the code hash of the first stage whose hash
// criterion equals the identity, or the zero hash when none does.
func FirstMatchingHash(pattern *PipelinePattern, id *pipeline.Identity) pipeline.Hash128 {
	for stage := range pattern.Shaders {
		hash, ok := pattern.Shaders[stage].CodeHash.Get()
		if ok && hash == id.Shaders[stage].CodeHash {
			return id.Shaders[stage].CodeHash
		}
	}
	return pipeline.Hash128{}
}
