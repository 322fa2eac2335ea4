// Package sigv4metrics exposes an optional Prometheus collector for
// derivation-cache hit/miss counts and sign-call totals, mirroring the
// Collector pattern in the teacher's internal/metrics package. Nothing in
// the core signing path imports this package; callers that want the
// metrics wire a Collector in themselves (see RecordSign and
// RecordDerivation).
package sigv4metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector tracks sigv4 signing activity. It is safe for concurrent use
// because the underlying prometheus.Counter values are — unlike
// sigv4.DerivationCache itself, which is not.
type Collector struct {
	signsTotal       *prometheus.CounterVec
	derivationsTotal *prometheus.CounterVec
}

// NewCollector registers and returns a new Collector against the default
// Prometheus registry.
func NewCollector() *Collector {
	return &Collector{
		signsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigv4_sign_operations_total",
				Help: "Total number of sigv4 sign operations, by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		derivationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigv4_key_derivations_total",
				Help: "Total number of signing-key derivations, by cache result.",
			},
			[]string{"cache"},
		),
	}
}

// RecordSign records the outcome of one SignRequest/s3sign.Sign call.
func (c *Collector) RecordSign(mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.signsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordDerivation records whether a key derivation was served from cache.
func (c *Collector) RecordDerivation(hit bool) {
	cache := "miss"
	if hit {
		cache = "hit"
	}
	c.derivationsTotal.WithLabelValues(cache).Inc()
}
