package optimizer

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phoenixxxx/xgl/internal/profilefile"
	"github.com/phoenixxxx/xgl/profile"
)

// ParseFunc turns the bytes of a runtime profile into an ordered rule list.
type ParseFunc func(data []byte) ([]profile.Rule, error)

// ReadFileFunc reads a whole file. It matches os.ReadFile.
type ReadFileFunc func(path string) ([]byte, error)

// Option configures a ShaderOptimizer during creation.
//
// Example:
//
//	opt := optimizer.New(s, target,
//		optimizer.WithDiagnostics(os.Stderr),
//		optimizer.WithMetrics(prometheus.DefaultRegisterer))
type Option func(*options)

type options struct {
	alloc          profile.Allocator
	capacity       int
	runtimeProfile bool
	parse          ParseFunc
	readFile       ReadFileFunc
	dump           io.Writer
	diagnostics    io.Writer
	registerer     prometheus.Registerer
	matchCache     int
	halt           func()
}

func defaultOptions() options {
	return options{
		alloc:          profile.HeapAllocator{},
		capacity:       profile.DefaultCapacity,
		runtimeProfile: true,
		parse:          profilefile.Parse,
		readFile:       os.ReadFile,
		diagnostics:    os.Stderr,
		halt:           func() { select {} },
	}
}

// WithAllocator sets the allocator backing all three profile stores.
// When it returns too little memory the affected store is left empty.
func WithAllocator(a profile.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithCapacity sets the rule capacity of the application and tuning stores.
// The runtime store grows to hold every parsed rule.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithRuntimeProfile enables or disables the runtime profile layer.
// It is enabled by default.
func WithRuntimeProfile(enabled bool) Option {
	return func(o *options) {
		o.runtimeProfile = enabled
	}
}

// WithParser replaces the runtime profile parser.
func WithParser(p ParseFunc) Option {
	return func(o *options) {
		if p != nil {
			o.parse = p
		}
	}
}

// WithReadFile replaces the function used to read the runtime profile file.
func WithReadFile(f ReadFileFunc) Option {
	return func(o *options) {
		if f != nil {
			o.readFile = f
		}
	}
}

// WithDumpSink sends the tuning profile dump to w instead of the file named
// by the PipelineProfileDumpFile setting.
func WithDumpSink(w io.Writer) Option {
	return func(o *options) {
		o.dump = w
	}
}

// WithDiagnostics sets where profile match reports are written when the
// PipelineProfileDbgPrintProfileMatch setting is on. The default is
// os.Stderr; nil disables the reports.
func WithDiagnostics(w io.Writer) Option {
	return func(o *options) {
		o.diagnostics = w
	}
}

// WithMetrics registers match counters and rule gauges with r.
func WithMetrics(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// WithMatchCache memoizes match results per pipeline identity, keeping up
// to perShard identities in each of the cache shards. Zero disables the cache.
func WithMatchCache(perShard int) Option {
	return func(o *options) {
		o.matchCache = max(perShard, 0)
	}
}

// WithHalt replaces the hook run when a runtime profile fails to parse and
// the PipelineProfileHaltOnParseFailure setting is on. The default hook
// blocks the calling goroutine forever.
func WithHalt(f func()) Option {
	return func(o *options) {
		if f != nil {
			o.halt = f
		}
	}
}
