package profile

import (
	"fmt"
	"strings"
)

// BinningOverride forces primitive batch binning on or off for a pipeline.
type BinningOverride uint32

const (
	// BinningDefault leaves the binning decision to the driver.
	BinningDefault BinningOverride = iota
	// BinningEnable forces primitive binning on.
	BinningEnable
	// BinningDisable forces primitive binning off.
	BinningDisable
)

// String returns the profile file name of the binning mode.
func (b BinningOverride) String() string {
	switch b {
	case BinningDefault:
		return "default"
	case BinningEnable:
		return "enable"
	case BinningDisable:
		return "disable"
	default:
		return "unknown"
	}
}

// ParseBinningOverride parses "default", "enable" or "disable".
func ParseBinningOverride(s string) (BinningOverride, error) {
	switch strings.ToLower(s) {
	case "default":
		return BinningDefault, nil
	case "enable":
		return BinningEnable, nil
	case "disable":
		return BinningDisable, nil
	}
	return 0, fmt.Errorf("profile: unknown binning override %q", s)
}

// DenormalMode selects how 32-bit float denormals are handled.
type DenormalMode uint32

const (
	DenormalAuto DenormalMode = iota
	DenormalFlushToZero
	DenormalPreserve
)

// String returns the profile file name of the mode.
func (d DenormalMode) String() string {
	switch d {
	case DenormalAuto:
		return "auto"
	case DenormalFlushToZero:
		return "flushToZero"
	case DenormalPreserve:
		return "preserve"
	default:
		return "unknown"
	}
}

// ParseDenormalMode parses "auto", "flushToZero" or "preserve".
func ParseDenormalMode(s string) (DenormalMode, error) {
	switch strings.ToLower(s) {
	case "auto":
		return DenormalAuto, nil
	case "flushtozero":
		return DenormalFlushToZero, nil
	case "preserve":
		return DenormalPreserve, nil
	}
	return 0, fmt.Errorf("profile: unknown denormal mode %q", s)
}

// WaveBreakSize sets the pixel-shader wave break region size.
type WaveBreakSize uint32

const (
	WaveBreakNone WaveBreakSize = iota
	WaveBreak8x8
	WaveBreak16x16
	WaveBreak32x32
	WaveBreakDrawTime
)

// String returns the profile file name of the size.
func (w WaveBreakSize) String() string {
	switch w {
	case WaveBreakNone:
		return "none"
	case WaveBreak8x8:
		return "8x8"
	case WaveBreak16x16:
		return "16x16"
	case WaveBreak32x32:
		return "32x32"
	case WaveBreakDrawTime:
		return "drawTime"
	default:
		return "unknown"
	}
}

// ParseWaveBreakSize parses a wave break size name.
func ParseWaveBreakSize(s string) (WaveBreakSize, error) {
	for w := WaveBreakNone; w <= WaveBreakDrawTime; w++ {
		if strings.EqualFold(s, w.String()) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("profile: unknown wave break size %q", s)
}
