// Package assert provides debug-build assertions.
//
// Builds with the xgldebug tag panic on a failed assertion. All other builds
// compile assertions to no-ops, so callers must still handle the failure
// case on release paths.
package assert

// That panics with msg when cond is false in debug builds.
func That(cond bool, msg string) {
	if enabled && !cond {
		panic("assertion failed: " + msg)
	}
}

// Fail reports an unconditional assertion failure.
func Fail(msg string) {
	That(false, msg)
}

// Enabled reports whether assertions are compiled in.
func Enabled() bool {
	return enabled
}
