//go:build xgldebug

package assert

const enabled = true
