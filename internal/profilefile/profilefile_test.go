package profilefile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoenixxxx/xgl/pipeline"
	"github.com/phoenixxxx/xgl/profile"
)

const sampleJSON = `{
  "entries": [
    {
      "pattern": {
        "ps": {"stageActive": true, "codeHash": "0xbb11905194a55485 0x313dab8ff9408da0"}
      },
      "action": {
        "ps": {"allowReZ": true, "waveBreakSize": "16x16"}
      }
    },
    {
      "pattern": {"always": true},
      "action": {
        "vs": {"vgprLimit": 64, "nggDisable": true, "cuEnableMask": 255},
        "cs": {"maxWavesPerCu": 4, "maxThreadGroupsPerCu": 2},
        "lateAllocVsLimit": 8,
        "binningOverride": "disable"
      }
    }
  ]
}`

func TestParseJSON(t *testing.T) {
	rules, err := Parse([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, rules, 2)

	ps := rules[0].Pattern.Shaders[pipeline.StageFragment]
	assert.True(t, ps.StageActive)
	h, ok := ps.CodeHash.Get()
	require.True(t, ok)
	assert.Equal(t, pipeline.Hash128{Lower: 0x313dab8ff9408da0, Upper: 0xbb11905194a55485}, h)
	assert.Equal(t, []string{"waveBreakSize", "allowReZ"}, rules[0].Action.Shaders[pipeline.StageFragment].Applied())

	second := rules[1]
	assert.True(t, second.Pattern.Always)
	vgpr, ok := second.Action.Shaders[pipeline.StageVertex].ShaderCreate.VGPRLimit.Get()
	assert.True(t, ok)
	assert.EqualValues(t, 64, vgpr)
	assert.True(t, second.Action.Shaders[pipeline.StageVertex].ShaderCreate.NggDisable)
	late, _ := second.Action.CreateInfo.LateAllocVsLimit.Get()
	assert.EqualValues(t, 8, late)
	bin, _ := second.Action.CreateInfo.BinningOverride.Get()
	assert.Equal(t, profile.BinningDisable, bin)
	assert.Equal(t, 7, second.Action.AppliedCount())
}

func TestParseYAML(t *testing.T) {
	doc := `
entries:
  - pattern:
      vs:
        stageActive: true
        codeSizeLessThan: 4096
    action:
      vs:
        cuEnableMask: 0xff
`
	rules, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rules, 1)

	limit, ok := rules[0].Pattern.Shaders[pipeline.StageVertex].CodeSizeLessThan.Get()
	assert.True(t, ok)
	assert.EqualValues(t, 4096, limit)
	mask, _ := rules[0].Action.Shaders[pipeline.StageVertex].Dynamic.CUEnableMask.Get()
	assert.EqualValues(t, 0xff, mask)
}

func TestParseEmpty(t *testing.T) {
	rules, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, rules)

	rules, err = Parse([]byte(`{"entries": []}`))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestParseInvalid(t *testing.T) {
	docs := map[string]string{
		"syntax":        `{"entries": [`,
		"unknown key":   `{"entries": [{"pattern": {"xs": {}}}]}`,
		"bad hash":      `{"entries": [{"pattern": {"vs": {"codeHash": "0xzz"}}}]}`,
		"bad binning":   `{"entries": [{"action": {"binningOverride": "sometimes"}}]}`,
		"bad wave size": `{"entries": [{"action": {"cs": {"waveSize": 16}}}]}`,
		"bad denormal":  `{"entries": [{"action": {"ps": {"fp32DenormalMode": "round"}}}]}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestParseLargeLimits(t *testing.T) {
	rules, err := Parse([]byte(`{"entries": [{"action": {"ps": {"vgprLimit": 1000, "sgprLimit": 106}}}]}`))
	require.NoError(t, err)
	require.Len(t, rules, 1)

	sc := rules[0].Action.Shaders[pipeline.StageFragment].ShaderCreate
	vgpr, ok := sc.VGPRLimit.Get()
	assert.True(t, ok)
	assert.EqualValues(t, 1000, vgpr)
	sgpr, ok := sc.SGPRLimit.Get()
	assert.True(t, ok)
	assert.EqualValues(t, 106, sgpr)
}

func TestEncodeRoundTrip(t *testing.T) {
	rules, err := Parse([]byte(sampleJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rules))

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, rules, again)
}

func TestEncodeSparse(t *testing.T) {
	var r profile.Rule
	r.Pattern.Always = true
	r.Action.Shaders[pipeline.StageCompute].Dynamic.MaxWavesPerCU = profile.Some[uint32](0)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []profile.Rule{r}))
	out := buf.String()

	assert.Contains(t, out, `"always": true`)
	assert.Contains(t, out, `"maxWavesPerCu": 0`)
	assert.NotContains(t, out, `"vs"`)
	assert.NotContains(t, out, `"lateAllocVsLimit"`)

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, r, again[0])
}
