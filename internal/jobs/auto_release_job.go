package jobs

import (
	"context"
	"log/slog"

	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/metrics"
)

// AutoReleaseJob pays out approved auto-release escrows whose expiry has passed.
type AutoReleaseJob struct {
	sweep
	handler commands.AutoReleaseCommandHandler
}

// NewAutoReleaseJob creates a job releasing up to batch due escrows per run.
func NewAutoReleaseJob(
	spec string,
	finder EscrowFinder,
	handler commands.AutoReleaseCommandHandler,
	clock ports.Clock,
	m *metrics.Metrics,
	batch int,
	logger *slog.Logger,
) *AutoReleaseJob {
	j := &AutoReleaseJob{handler: handler}
	j.sweep = sweep{
		schedule: newSchedule("auto_release_job", spec, logger),
		clock:    clock,
		metrics:  m,
		batch:    batchOrDefault(batch),
		find:     finder.FindDueForAutoRelease,
		act:      j.release,
	}
	return j
}

func (j *AutoReleaseJob) release(ctx context.Context, escrowID kernel.UUID) error {
	cmd, err := commands.NewAutoReleaseCommand(escrowID)
	if err != nil {
		return err
	}
	return j.handler.Handle(ctx, cmd)
}
