package metrics_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveRelease("milestone", metrics.OutcomeSuccess, 20*time.Millisecond)
	m.ObserveRelease("milestone", metrics.OutcomeSuccess, 10*time.Millisecond)
	m.AddReleased("USD", 100, 3)
	m.AddReleased("USD", 50, 0)
	m.ObserveJob("auto_release", metrics.OutcomeFailed)
	m.EventRelayed("escrow.released")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)

	count, err := testutil.GatherAndCount(reg, "escrow_release_executions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "escrow_release_fee_units_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_PanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, metrics.OutcomeSuccess, metrics.OutcomeOf(nil))
	assert.Equal(t, metrics.OutcomeRejected, metrics.OutcomeOf(errs.NewAlreadyReleasedError("escrowId", "e1")))
	assert.Equal(t, metrics.OutcomeRejected, metrics.OutcomeOf(fmt.Errorf("wrapped: %w", errs.ErrEscrowDisputed)))
	assert.Equal(t, metrics.OutcomeRejected, metrics.OutcomeOf(errs.NewValueIsRequiredError("amount")))
	assert.Equal(t, metrics.OutcomeFailed, metrics.OutcomeOf(errors.New("connection reset")))
}
