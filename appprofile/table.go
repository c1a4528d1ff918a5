package appprofile

import (
	"github.com/phoenixxxx/xgl/pipeline"
	"github.com/phoenixxxx/xgl/profile"
)

// entry is one row of the built-in table: a set of rules that apply to an
// application on a range of chips.
type entry struct {
	app         App
	minRevision AsicRevision
	maxRevision AsicRevision
	minGfxLevel GfxIPLevel
	rules       []profile.Rule
}

func (e *entry) applies(t Target) bool {
	if e.app != t.App {
		return false
	}
	if e.minRevision != AsicUnknown && (t.Revision < e.minRevision || t.Revision > e.maxRevision) {
		return false
	}
	return t.GfxLevel >= e.minGfxLevel
}

// psAllowReZ matches an active pixel shader by hash and allows re-Z for it.
func psAllowReZ(upper, lower uint64) profile.Rule {
	var r profile.Rule
	ps := &r.Pattern.Shaders[pipeline.StageFragment]
	ps.StageActive = true
	ps.CodeHash = profile.Some(pipeline.Hash128{Lower: lower, Upper: upper})
	r.Action.Shaders[pipeline.StageFragment].ShaderCreate.AllowReZ = true
	return r
}

var table = []entry{
	{
		app:         AppDota2,
		minRevision: AsicPolaris10,
		maxRevision: AsicPolaris12,
		rules: []profile.Rule{
			psAllowReZ(0x751207727c904749, 0xdd6c573c46e6adf8),
			psAllowReZ(0xfbc956d87a6d6631, 0x71093bf7c6e98da8),
			psAllowReZ(0x506d0ac3995d2f1b, 0xedd89880de2091f9),
			psAllowReZ(0x1ef8276d42a14220, 0xbc583b30527e9f1d),
			psAllowReZ(0x3a65a6325756203d, 0x012ddab000f80610),
			psAllowReZ(0x2c1afc1c6f669e33, 0x78095b5acf62f4d5),
			psAllowReZ(0x7ba50586c34e1662, 0x22803b077988ec36),
			psAllowReZ(0xbb11905194a55485, 0x313dab8ff9408da0),
		},
	},
}

// Rules returns the built-in rules for target in evaluation order.
// Each call returns a new slice.
func Rules(t Target) []profile.Rule {
	var rules []profile.Rule
	for i := range table {
		if table[i].applies(t) {
			rules = append(rules, table[i].rules...)
		}
	}
	return rules
}

// MaxRules returns the largest number of rules any target can produce, so a
// store sized to it can never overflow.
func MaxRules() int {
	n := 0
	for i := range table {
		n += len(table[i].rules)
	}
	return n
}

// Build appends the rules for target to store, stopping at the store's
// capacity. It returns the number of rules written and the number dropped.
func Build(store *profile.Store, t Target) (written, dropped int) {
	for _, r := range Rules(t) {
		if store.Append(r) {
			written++
		} else {
			dropped++
		}
	}
	return written, dropped
}
