package jobs

import (
	"context"
	"log/slog"

	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/metrics"
)

// ExpiryJob refunds expired escrows whose work never got approved and
// cancels their work orders.
type ExpiryJob struct {
	sweep
	handler commands.ExpireEscrowCommandHandler
}

// NewExpiryJob creates a job refunding up to batch expired escrows per run.
func NewExpiryJob(
	spec string,
	finder EscrowFinder,
	handler commands.ExpireEscrowCommandHandler,
	clock ports.Clock,
	m *metrics.Metrics,
	batch int,
	logger *slog.Logger,
) *ExpiryJob {
	j := &ExpiryJob{handler: handler}
	j.sweep = sweep{
		schedule: newSchedule("expiry_job", spec, logger),
		clock:    clock,
		metrics:  m,
		batch:    batchOrDefault(batch),
		find:     finder.FindExpired,
		act:      j.expire,
	}
	return j
}

func (j *ExpiryJob) expire(ctx context.Context, escrowID kernel.UUID) error {
	cmd, err := commands.NewExpireEscrowCommand(escrowID)
	if err != nil {
		return err
	}
	return j.handler.Handle(ctx, cmd)
}
