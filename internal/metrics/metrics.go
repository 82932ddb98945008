// Package metrics holds the Prometheus collectors of the verification
// server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/trazo/internal/verification"
)

// Recorder groups the server's collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	evaluations      *prometheus.CounterVec
	violations       *prometheus.CounterVec
	trust            prometheus.Histogram
	securityAborts   prometheus.Counter
	registryLookups  *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec
	archiveFailures  prometheus.Counter
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trazo_claim_evaluations_total",
				Help: "Claim evaluations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trazo_claim_violations_total",
				Help: "Violations raised by kind and severity",
			},
			[]string{"kind", "severity"},
		),
		trust: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trazo_claim_trust_score",
				Help:    "Distribution of computed trust scores",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		securityAborts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trazo_security_aborts_total",
				Help: "Submissions aborted by a security violation",
			},
		),
		registryLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trazo_registry_lookups_total",
				Help: "Registry lookups by registry and result",
			},
			[]string{"registry", "verified"},
		),
		registryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trazo_registry_lookup_duration_seconds",
				Help:    "Duration of registry lookups",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"registry"},
		),
		archiveFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trazo_audit_archive_failures_total",
				Help: "Audit entries that could not be archived",
			},
		),
	}

	reg.MustRegister(
		r.evaluations,
		r.violations,
		r.trust,
		r.securityAborts,
		r.registryLookups,
		r.registryDuration,
		r.archiveFailures,
	)
	return r
}

// ObserveResult records one evaluation outcome.
func (r *Recorder) ObserveResult(operation string, res *verification.Result) {
	if r == nil || res == nil {
		return
	}
	outcome := "rejected"
	if res.Approved {
		outcome = "approved"
	}
	r.evaluations.WithLabelValues(operation, outcome).Inc()
	for _, v := range res.Violations {
		r.violations.WithLabelValues(string(v.Kind), string(v.Severity)).Inc()
	}
	r.trust.Observe(res.TrustScore)
}

// SecurityAbort counts an aborted submission.
func (r *Recorder) SecurityAbort() {
	if r == nil {
		return
	}
	r.securityAborts.Inc()
}

// RegistryLookup matches registry.LookupHook.
func (r *Recorder) RegistryLookup(registry string, verified bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	v := "false"
	if verified {
		v = "true"
	}
	r.registryLookups.WithLabelValues(registry, v).Inc()
	r.registryDuration.WithLabelValues(registry).Observe(elapsed.Seconds())
}

// ArchiveFailure counts a failed audit archive write.
func (r *Recorder) ArchiveFailure() {
	if r == nil {
		return
	}
	r.archiveFailures.Inc()
}
