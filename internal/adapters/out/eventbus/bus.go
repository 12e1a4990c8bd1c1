// Package eventbus fans relayed escrow events out to in-process subscribers.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"escrow/internal/core/domain/model/event"
)

// Handler consumes one event. A returned error keeps the event unpublished
// so the relay offers it again on its next run.
type Handler func(ctx context.Context, e event.Event) error

// Bus delivers each published event to every subscriber in registration order.
// Subscribers may receive an event more than once and must be idempotent on
// the event ID.
type Bus struct {
	mu          sync.RWMutex
	subscribers []subscriber
}

type subscriber struct {
	name    string
	types   map[event.Type]struct{}
	handler Handler
}

// New returns a bus without subscribers.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers h under name. With no types h receives every event.
func (b *Bus) Subscribe(name string, h Handler, types ...event.Type) {
	sub := subscriber{name: name, handler: h}
	if len(types) > 0 {
		sub.types = make(map[event.Type]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()
}

// Publish hands e to every interested subscriber and joins their failures.
func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subscribers...)
	b.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if !sub.wants(e.Type) {
			continue
		}
		if err := sub.handler(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("subscriber %s: %w", sub.name, err))
		}
	}
	return errors.Join(errs...)
}

func (s subscriber) wants(t event.Type) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}
