package jobs

import (
	"context"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/metrics"
)

// DefaultBatchSize bounds how many escrows or events one run touches.
const DefaultBatchSize = 100

// EscrowFinder lists escrows a sweep should act on.
type EscrowFinder interface {
	FindDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
}

// sweep runs act once per escrow returned by find. Each escrow is handled in
// its own unit of work, so one failure does not block the rest of the batch.
// Business rule refusals mean the escrow changed after it was listed and are
// only logged at debug level.
type sweep struct {
	*schedule
	clock   ports.Clock
	metrics *metrics.Metrics
	batch   int
	find    func(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
	act     func(ctx context.Context, escrowID kernel.UUID) error
}

// Run processes one batch and returns how many escrows were handled successfully.
func (s *sweep) Run(ctx context.Context) int {
	ids, err := s.find(ctx, s.clock.Now(), s.batch)
	if err != nil {
		s.metrics.ObserveJob(s.name, metrics.OutcomeFailed)
		s.logger.ErrorContext(ctx, "Listing escrows failed", "error", err)
		return 0
	}

	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		err = s.act(ctx, id)
		outcome := metrics.OutcomeOf(err)
		s.metrics.ObserveJob(s.name, outcome)
		switch outcome {
		case metrics.OutcomeSuccess:
			done++
			s.logger.InfoContext(ctx, "Escrow settled", "escrowId", id.String())
		case metrics.OutcomeRejected:
			s.logger.DebugContext(ctx, "Escrow skipped", "escrowId", id.String(), "reason", err)
		default:
			s.logger.ErrorContext(ctx, "Escrow settlement failed", "escrowId", id.String(), "error", err)
		}
	}
	return done
}

func (s *sweep) Start() error {
	return s.start(func(ctx context.Context) { s.Run(ctx) })
}

func (s *sweep) Stop() {
	s.stop()
}

func batchOrDefault(n int) int {
	if n <= 0 {
		return DefaultBatchSize
	}
	return n
}
