package profile

import (
	"testing"

	"github.com/phoenixxxx/xgl/pipeline"
)

var psHash = pipeline.Hash128{Lower: 0xdd6c573c46e6adf8, Upper: 0x751207727c904749}

func identityWith(stage pipeline.Stage, hash pipeline.Hash128, size uint64) *pipeline.Identity {
	var id pipeline.Identity
	id.Shaders[stage] = pipeline.ShaderIdentity{CodeHash: hash, CodeSize: size}
	return &id
}

func TestMatchesWildcard(t *testing.T) {
	p := PipelinePattern{Always: true}
	// Criteria that could never pass are ignored by the wildcard.
	p.Shaders[pipeline.StageVertex].StageActive = true
	p.Shaders[pipeline.StageVertex].StageInactive = true

	ids := []*pipeline.Identity{
		{},
		identityWith(pipeline.StageFragment, psHash, 128),
		identityWith(pipeline.StageCompute, pipeline.Hash128{Lower: 1}, 1),
	}
	for i, id := range ids {
		if !Matches(&p, id) {
			t.Errorf("identity %d: wildcard pattern should match", i)
		}
	}
}

func TestMatchesEmptyPatternIsVacuous(t *testing.T) {
	var p PipelinePattern
	if !Matches(&p, &pipeline.Identity{}) {
		t.Error("empty pattern should match empty identity")
	}
	if !Matches(&p, identityWith(pipeline.StageVertex, psHash, 64)) {
		t.Error("empty pattern should match any identity")
	}
}

func TestMatchesStageActivity(t *testing.T) {
	tests := []struct {
		name     string
		pattern  ShaderPattern
		size     uint64
		expected bool
	}{
		{"active requires code", ShaderPattern{StageActive: true}, 0, false},
		{"active with code", ShaderPattern{StageActive: true}, 16, true},
		{"inactive without code", ShaderPattern{StageInactive: true}, 0, true},
		{"inactive with code", ShaderPattern{StageInactive: true}, 16, false},
		{"both never match absent", ShaderPattern{StageActive: true, StageInactive: true}, 0, false},
		{"both never match present", ShaderPattern{StageActive: true, StageInactive: true}, 8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PipelinePattern
			p.Shaders[pipeline.StageGeometry] = tt.pattern
			got := Matches(&p, identityWith(pipeline.StageGeometry, pipeline.Hash128{}, tt.size))
			if got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatchesCodeHashBitExact(t *testing.T) {
	var p PipelinePattern
	p.Shaders[pipeline.StageFragment].CodeHash = Some(psHash)

	if !Matches(&p, identityWith(pipeline.StageFragment, psHash, 100)) {
		t.Fatal("exact hash should match")
	}

	for bit := 0; bit < 64; bit++ {
		lower := psHash
		lower.Lower ^= 1 << bit
		if Matches(&p, identityWith(pipeline.StageFragment, lower, 100)) {
			t.Errorf("lower bit %d flipped should not match", bit)
		}
		upper := psHash
		upper.Upper ^= 1 << bit
		if Matches(&p, identityWith(pipeline.StageFragment, upper, 100)) {
			t.Errorf("upper bit %d flipped should not match", bit)
		}
	}

	// The hash must be on the same stage.
	if Matches(&p, identityWith(pipeline.StageVertex, psHash, 100)) {
		t.Error("hash on another stage should not match")
	}
}

func TestMatchesCodeSizeThreshold(t *testing.T) {
	const threshold = 1000
	var p PipelinePattern
	p.Shaders[pipeline.StageCompute].CodeSizeLessThan = Some[uint64](threshold)

	tests := []struct {
		size     uint64
		expected bool
	}{
		{0, false},
		{threshold - 1, false},
		{threshold, false},
		{threshold + 1, true},
		{threshold * 4, true},
	}
	for _, tt := range tests {
		got := Matches(&p, identityWith(pipeline.StageCompute, pipeline.Hash128{}, tt.size))
		if got != tt.expected {
			t.Errorf("size %d: Matches() = %v, want %v", tt.size, got, tt.expected)
		}
	}
}

func TestMatchesStagesAreANDed(t *testing.T) {
	var p PipelinePattern
	p.Shaders[pipeline.StageVertex].StageActive = true
	p.Shaders[pipeline.StageFragment].StageActive = true
	p.Shaders[pipeline.StageFragment].CodeHash = Some(psHash)

	var id pipeline.Identity
	id.Shaders[pipeline.StageFragment] = pipeline.ShaderIdentity{CodeHash: psHash, CodeSize: 10}
	if Matches(&p, &id) {
		t.Error("missing vertex stage should fail the rule")
	}

	id.Shaders[pipeline.StageVertex] = pipeline.ShaderIdentity{CodeSize: 10}
	if !Matches(&p, &id) {
		t.Error("both stages satisfied should match")
	}
}

func TestMatchesUnconstrainedStageIgnored(t *testing.T) {
	var p PipelinePattern
	p.Shaders[pipeline.StageFragment].StageActive = true

	// Vertex has no criteria, so its presence or absence does not matter.
	absent := identityWith(pipeline.StageFragment, psHash, 4)
	present := identityWith(pipeline.StageFragment, psHash, 4)
	present.Shaders[pipeline.StageVertex].CodeSize = 12
	if !Matches(&p, absent) || !Matches(&p, present) {
		t.Error("stage without criteria must not constrain the match")
	}
}

func TestFirstMatchingHash(t *testing.T) {
	var p PipelinePattern
	p.Shaders[pipeline.StageFragment].CodeHash = Some(psHash)

	id := identityWith(pipeline.StageFragment, psHash, 4)
	if got := FirstMatchingHash(&p, id); got != psHash {
		t.Errorf("FirstMatchingHash() = %v, want %v", got, psHash)
	}
	if got := FirstMatchingHash(&p, &pipeline.Identity{}); !got.IsZero() {
		t.Errorf("FirstMatchingHash() = %v, want zero", got)
	}
}

func TestShaderPatternEmpty(t *testing.T) {
	var p ShaderPattern
	if !p.Empty() {
		t.Error("zero pattern should be empty")
	}
	p.CodeSizeLessThan = Some[uint64](0)
	if p.Empty() {
		t.Error("pattern with a zero threshold is still a criterion")
	}
}

func BenchmarkMatches(b *testing.B) {
	var p PipelinePattern
	p.Shaders[pipeline.StageFragment].StageActive = true
	p.Shaders[pipeline.StageFragment].CodeHash = Some(psHash)
	id := identityWith(pipeline.StageFragment, psHash, 2048)

	b.ReportAllocs()
	for b.Loop() {
		_ = Matches(&p, id)
	}
}
