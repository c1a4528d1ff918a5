package optimizer

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Match paths used as the "path" label.
const (
	pathShader   = "shader"
	pathGraphics = "graphics"
	pathCompute  = "compute"
)

type metrics struct {
	matches *prometheus.CounterVec
	rules   *prometheus.GaugeVec
	cache   *prometheus.CounterVec
}

func newMetrics(r prometheus.Registerer) *metrics {
	m := &metrics{
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xgl_pipeline_profile_matches_total",
			Help: "Profile rule matches by profile layer and override path",
		}, []string{"profile", "path"}),
		rules: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "xgl_pipeline_profile_rules",
			Help: "Number of rules loaded per profile layer",
		}, []string{"profile"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xgl_pipeline_profile_match_cache_total",
			Help: "Match cache lookups by result",
		}, []string{"result"}),
	}
	m.matches = register(r, m.matches)
	m.rules = register(r, m.rules)
	m.cache = register(r, m.cache)
	return m
}

// register adds c to r. If an identical collector is already registered
// (a second optimizer on the same registry) the existing one is reused.
func register[C prometheus.Collector](r prometheus.Registerer, c C) C {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) match(l Layer, path string) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(l.key(), path).Inc()
}

func (m *metrics) setRules(l Layer, n int) {
	if m == nil {
		return
	}
	m.rules.WithLabelValues(l.key()).Set(float64(n))
}

func (m *metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}
