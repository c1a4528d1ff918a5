// Package xgl is a rule-based shader and pipeline tuning-override engine.
//
// # Overview
//
// Given the identity of a graphics or compute pipeline (one code hash and code
// size per shader stage), xgl decides which performance-tuning parameters to
// force onto the pipeline's shader compile options and hardware dispatch
// configuration, and writes them into caller-owned records.
//
// # Layers
//
// Overrides come from three profile layers, evaluated in a fixed order:
//
//   - Application: a built-in table of rules for shaders of known titles
//     (package appprofile).
//   - Tuning: exactly one rule derived from runtime settings
//     (package settings).
//   - Runtime: rules parsed from an external profile file.
//
// Within and across layers every matching rule applies, in order, and a later
// rule overwrites fields an earlier rule set. Fields a rule does not flag are
// never touched.
//
// # Architecture
//
//   - pipeline: stage enumeration, 128-bit code hashes, pipeline identities
//   - profile: patterns, actions, fixed-capacity rule stores, matching and
//     override application
//   - appprofile: known-application detection and the built-in rule table
//   - settings: tuning settings record, YAML loading and validation
//   - optimizer: the ShaderOptimizer that owns the three stores
//   - cmd/pipetune: command-line tooling for profiles and identities
//
// # Logging
//
// xgl is silent by default. Use SetLogger to route diagnostics to any
// [log/slog] handler.
package xgl

// Version information
const (
	// Version is the current version of the module
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
