package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/metrics"
)

// EventSource is the outbox side of the relay.
type EventSource interface {
	ListUnpublished(ctx context.Context, limit int) ([]event.Event, error)
	MarkPublished(ctx context.Context, ids []kernel.UUID, at time.Time) error
}

// EventRelayJob publishes outbox events in sequence order and marks them
// published. Delivery stops at the first event a subscriber refuses, so no
// event overtakes an earlier one; the refused event is retried next run.
type EventRelayJob struct {
	*schedule
	source    EventSource
	publisher ports.EventPublisher
	clock     ports.Clock
	metrics   *metrics.Metrics
	batch     int

	mu      sync.Mutex
	trigger chan struct{}
	wg      sync.WaitGroup
}

// NewEventRelayJob creates a relay publishing up to batch outbox events per run.
func NewEventRelayJob(
	spec string,
	source EventSource,
	publisher ports.EventPublisher,
	clock ports.Clock,
	m *metrics.Metrics,
	batch int,
	logger *slog.Logger,
) *EventRelayJob {
	return &EventRelayJob{
		schedule:  newSchedule("event_relay_job", spec, logger),
		source:    source,
		publisher: publisher,
		clock:     clock,
		metrics:   m,
		batch:     batchOrDefault(batch),
		trigger:   make(chan struct{}, 1),
	}
}

// Trigger requests a run outside the schedule. Requests made while one is
// already pending collapse into it.
func (j *EventRelayJob) Trigger() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

// Run relays batches until the outbox is drained or a publish fails, and
// returns the number of events published.
func (j *EventRelayJob) Run(ctx context.Context) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	total := 0
	for ctx.Err() == nil {
		published, drained, err := j.relayBatch(ctx)
		total += published
		if err != nil {
			j.metrics.ObserveJob(j.name, metrics.OutcomeFailed)
			j.logger.ErrorContext(ctx, "Event relay failed", "error", err)
			return total
		}
		if drained {
			break
		}
	}
	j.metrics.ObserveJob(j.name, metrics.OutcomeSuccess)
	return total
}

func (j *EventRelayJob) relayBatch(ctx context.Context) (int, bool, error) {
	events, err := j.source.ListUnpublished(ctx, j.batch)
	if err != nil {
		return 0, false, err
	}
	if len(events) == 0 {
		return 0, true, nil
	}

	ids := make([]kernel.UUID, 0, len(events))
	var publishErr error
	for _, e := range events {
		if publishErr = j.publisher.Publish(ctx, e); publishErr != nil {
			break
		}
		ids = append(ids, e.ID)
	}

	if len(ids) > 0 {
		if err = j.source.MarkPublished(ctx, ids, j.clock.Now()); err != nil {
			return 0, false, err
		}
		for _, e := range events[:len(ids)] {
			j.metrics.EventRelayed(e.Type.String())
		}
	}
	if publishErr != nil {
		return len(ids), false, publishErr
	}
	return len(ids), len(events) < j.batch, nil
}

// Start schedules the relay and begins serving Trigger calls.
func (j *EventRelayJob) Start() error {
	if err := j.start(func(ctx context.Context) { j.Run(ctx) }); err != nil {
		return err
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		for {
			select {
			case <-j.ctx.Done():
				return
			case <-j.trigger:
				j.Run(j.ctx)
			}
		}
	}()
	return nil
}

// Stop halts the schedule and waits for a running relay to finish.
func (j *EventRelayJob) Stop() {
	j.stop()
	j.wg.Wait()
}
