// Package appprofile holds the built-in pipeline profile: tuning rules for
// shaders of known applications on specific hardware.
package appprofile

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// App identifies an application the driver has special handling for.
type App int

const (
	// AppDefault is any application without special handling.
	AppDefault App = iota
	AppDota2
	AppTalos
	AppSeriousSamFusion
	AppStrangeBrigade
)

// String returns the application name.
func (a App) String() string {
	switch a {
	case AppDefault:
		return "Default"
	case AppDota2:
		return "Dota2"
	case AppTalos:
		return "Talos"
	case AppSeriousSamFusion:
		return "SeriousSamFusion"
	case AppStrangeBrigade:
		return "StrangeBrigade"
	default:
		return "Unknown"
	}
}

// executables maps case-folded executable base names to applications.
var executables = map[string]App{
	"dota2":                  AppDota2,
	"talos":                  AppTalos,
	"talos_unrestricted":     AppTalos,
	"sam2017":                AppSeriousSamFusion,
	"sam2017_unrestricted":   AppSeriousSamFusion,
	"strangebrigade_vulkan":  AppStrangeBrigade,
	"strangebrigade_vulkan2": AppStrangeBrigade,
}

var folder = cases.Fold()

// Detect classifies an application from its executable path. Matching is
// case-insensitive and ignores the directory and an .exe suffix.
func Detect(executable string) App {
	base := filepath.Base(strings.ReplaceAll(executable, `\`, "/"))
	name := folder.String(base)
	name = strings.TrimSuffix(name, ".exe")
	if app, ok := executables[name]; ok {
		return app
	}
	return AppDefault
}

// GfxIPLevel is the graphics IP generation of the device.
type GfxIPLevel int

const (
	GfxIPUnknown GfxIPLevel = iota
	GfxIP6
	GfxIP7
	GfxIP8
	GfxIP8_1
	GfxIP9
	GfxIP10_1
	GfxIP10_3
)

// String returns the generation name.
func (g GfxIPLevel) String() string {
	switch g {
	case GfxIP6:
		return "GfxIp6"
	case GfxIP7:
		return "GfxIp7"
	case GfxIP8:
		return "GfxIp8"
	case GfxIP8_1:
		return "GfxIp8_1"
	case GfxIP9:
		return "GfxIp9"
	case GfxIP10_1:
		return "GfxIp10_1"
	case GfxIP10_3:
		return "GfxIp10_3"
	default:
		return "Unknown"
	}
}

// AsicRevision identifies a chip. Revisions of one family are contiguous so
// ranges can be compared with < and >.
type AsicRevision int

const (
	AsicUnknown AsicRevision = iota
	AsicTahiti
	AsicHawaii
	AsicTonga
	AsicFiji
	AsicPolaris10
	AsicPolaris11
	AsicPolaris12
	AsicVega10
	AsicVega20
	AsicNavi10
	AsicNavi21
)

var asicNames = [...]string{
	AsicUnknown:   "Unknown",
	AsicTahiti:    "Tahiti",
	AsicHawaii:    "Hawaii",
	AsicTonga:     "Tonga",
	AsicFiji:      "Fiji",
	AsicPolaris10: "Polaris10",
	AsicPolaris11: "Polaris11",
	AsicPolaris12: "Polaris12",
	AsicVega10:    "Vega10",
	AsicVega20:    "Vega20",
	AsicNavi10:    "Navi10",
	AsicNavi21:    "Navi21",
}

func (r AsicRevision) String() string {
	if r < 0 || int(r) >= len(asicNames) {
		return "Unknown"
	}
	return asicNames[r]
}

// ParseAsicRevision looks up a revision by name, ignoring case.
func ParseAsicRevision(name string) (AsicRevision, bool) {
	for r, n := range asicNames {
		if strings.EqualFold(n, name) {
			return AsicRevision(r), true
		}
	}
	return AsicUnknown, false
}

// ParseGfxIPLevel accepts "GfxIp8", "gfx8", "8" and similar, with "_" or "."
// before a minor version.
func ParseGfxIPLevel(name string) (GfxIPLevel, bool) {
	key := strings.ToLower(name)
	key = strings.TrimPrefix(key, "gfxip")
	key = strings.TrimPrefix(key, "gfx")
	key = strings.ReplaceAll(key, ".", "_")
	for g := GfxIP6; g <= GfxIP10_3; g++ {
		if strings.TrimPrefix(strings.ToLower(g.String()), "gfxip") == key {
			return g, true
		}
	}
	return GfxIPUnknown, false
}

// Target describes the application and device a profile is built for.
type Target struct {
	App      App
	GfxLevel GfxIPLevel
	Revision AsicRevision
}
