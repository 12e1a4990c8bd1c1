package postgres

import (
	"context"
	"log/slog"
	"time"

	"escrow/internal/adapters/out/postgres/outboxrepo"

	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// OutboxListener subscribes to the outbox NOTIFY channel and calls wake for
// every notification and after every reconnect, when notifications may have
// been missed.
type OutboxListener struct {
	dsn    string
	logger *slog.Logger
}

// NewOutboxListener creates a listener for the outbox channel on the database at dsn.
func NewOutboxListener(dsn string, logger *slog.Logger) *OutboxListener {
	return &OutboxListener{
		dsn:    dsn,
		logger: logger.With("component", "outbox_listener"),
	}
}

// Run blocks until ctx is done.
func (l *OutboxListener) Run(ctx context.Context, wake func()) error {
	listener := pq.NewListener(l.dsn, listenerMinReconnect, listenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				l.logger.WarnContext(ctx, "Outbox listener connection event", "event", ev, "error", err)
			}
		})
	defer func() {
		_ = listener.Close()
	}()

	if err := listener.Listen(outboxrepo.NotifyChannel); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "Outbox listener started", "channel", outboxrepo.NotifyChannel)

	ping := time.NewTicker(listenerPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.InfoContext(ctx, "Outbox listener stopped")
			return nil
		case n := <-listener.Notify:
			if n == nil {
				l.logger.DebugContext(ctx, "Outbox listener reconnected")
			}
			wake()
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				l.logger.WarnContext(ctx, "Outbox listener ping failed", "error", err)
			}
		}
	}
}
