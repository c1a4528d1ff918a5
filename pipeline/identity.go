package pipeline

import (
	"fmt"

	"github.com/gogpu/naga"
)

// ShaderIdentity fingerprints the code of one shader stage.
// A CodeSize of zero means the stage is absent from the pipeline.
type ShaderIdentity struct {
	CodeHash Hash128
	CodeSize uint64
}

// Active reports whether the stage is present.
func (s ShaderIdentity) Active() bool {
	return s.CodeSize != 0
}

// Identity is the per-stage fingerprint of a whole pipeline, indexed by Stage.
type Identity struct {
	Shaders [StageCount]ShaderIdentity
}

// ActiveStages returns the mask of stages with non-empty code.
func (id *Identity) ActiveStages() StageMask {
	var m StageMask
	for _, s := range Stages {
		if id.Shaders[s].Active() {
			m |= s.Bit()
		}
	}
	return m
}

// Set stores the identity of stage s. It panics if s is out of range.
func (id *Identity) Set(s Stage, shader ShaderIdentity) {
	id.Shaders[s] = shader
}

// Capture fingerprints compiled shader bytecode.
// Empty code yields an inactive identity.
func Capture(code []byte) ShaderIdentity {
	if len(code) == 0 {
		return ShaderIdentity{}
	}
	return ShaderIdentity{
		CodeHash: HashCode(code),
		CodeSize: uint64(len(code)),
	}
}

// CompileWGSL compiles WGSL source to SPIR-V and fingerprints the result.
// It returns the SPIR-V so callers can reuse it for module creation.
func CompileWGSL(source string) (ShaderIdentity, []byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return ShaderIdentity{}, nil, fmt.Errorf("pipeline: compile WGSL: %w", err)
	}
	return Capture(spirv), spirv, nil
}
