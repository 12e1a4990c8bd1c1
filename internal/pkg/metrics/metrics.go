// Package metrics holds the Prometheus collectors of the escrow service.
package metrics

import (
	"errors"
	"time"

	"escrow/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "escrow"

// Outcomes recorded on releases and job runs.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var rejections = []error{
	errs.ErrInvalidParameters,
	errs.ErrInvalidWorkOrderStatus,
	errs.ErrUnauthorizedAccess,
	errs.ErrInsufficientFunds,
	errs.ErrTransferFeeExceeded,
	errs.ErrAlreadyReleased,
	errs.ErrEscrowDisputed,
	errs.ErrEscrowExpired,
	errs.ErrDisputeAllocationMismatch,
	errs.ErrObjectNotFound,
}

// OutcomeOf classifies err: nil is a success, a business rule refusal is a
// rejection, anything else a failure.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	for _, target := range rejections {
		if errors.Is(err, target) {
			return OutcomeRejected
		}
	}
	return OutcomeFailed
}

// Metrics groups every collector the service exports.
type Metrics struct {
	releases        *prometheus.CounterVec
	releasedUnits   *prometheus.CounterVec
	feeUnits        *prometheus.CounterVec
	releaseDuration *prometheus.HistogramVec
	jobRuns         *prometheus.CounterVec
	eventsRelayed   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "release",
			Name:      "executions_total",
			Help:      "Release executor calls segmented by release path and outcome.",
		}, []string{"path", "outcome"}),
		releasedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "release",
			Name:      "gross_units_total",
			Help:      "Gross minor units moved out of custody, by asset.",
		}, []string{"asset"}),
		feeUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "release",
			Name:      "fee_units_total",
			Help:      "Transfer fees collected, by asset.",
		}, []string{"asset"}),
		releaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "release",
			Name:      "duration_seconds",
			Help:      "Latency of release executions including ledger legs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background job runs segmented by job and outcome.",
		}, []string{"job", "outcome"}),
		eventsRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "relayed_total",
			Help:      "Outbox events delivered to subscribers, by event type.",
		}, []string{"type"}),
	}
	reg.MustRegister(
		m.releases,
		m.releasedUnits,
		m.feeUnits,
		m.releaseDuration,
		m.jobRuns,
		m.eventsRelayed,
	)
	return m
}

// ObserveRelease records one release execution.
func (m *Metrics) ObserveRelease(path, outcome string, elapsed time.Duration) {
	m.releases.WithLabelValues(path, outcome).Inc()
	m.releaseDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// AddReleased adds gross and fee units moved for asset.
func (m *Metrics) AddReleased(asset string, gross, fee int64) {
	m.releasedUnits.WithLabelValues(asset).Add(float64(gross))
	if fee > 0 {
		m.feeUnits.WithLabelValues(asset).Add(float64(fee))
	}
}

// ObserveJob records one background job run.
func (m *Metrics) ObserveJob(job, outcome string) {
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

// EventRelayed counts one event delivered by the relay.
func (m *Metrics) EventRelayed(eventType string) {
	m.eventsRelayed.WithLabelValues(eventType).Inc()
}
