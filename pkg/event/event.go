// Package event is an in-process event bus. Listeners run synchronously, or
// on a worker pool when the bus is built with one.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/workerpool"
)

// Wildcard subscribes a listener to every event.
const Wildcard = "*"

// Event is one published occurrence.
type Event struct {
	Name       string    `json:"name"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Listener handles an event. Errors are logged, never returned to the publisher.
type Listener func(ctx context.Context, e Event) error

// Bus dispatches events to registered listeners.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	pool      *workerpool.Pool
	now       func() time.Time
}

// NewBus builds a bus. With a nil pool every Publish runs listeners inline.
func NewBus(pool *workerpool.Pool) *Bus {
	return &Bus{
		listeners: map[string][]Listener{},
		pool:      pool,
		now:       time.Now,
	}
}

// Listen registers l for name, or for every event when name is Wildcard.
func (b *Bus) Listen(name string, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], l)
}

func (b *Bus) listenersFor(name string) []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Listener, 0, len(b.listeners[name])+len(b.listeners[Wildcard]))
	out = append(out, b.listeners[name]...)
	out = append(out, b.listeners[Wildcard]...)
	return out
}

// Publish hands the event to its listeners. It does not wait when the bus
// has a pool; a full pool falls back to running inline.
func (b *Bus) Publish(ctx context.Context, name string, payload any) {
	e := Event{Name: name, Payload: payload, OccurredAt: b.now().UTC()}
	ctx = context.WithoutCancel(ctx)

	if b.pool == nil {
		_ = b.dispatch(ctx, e)
		return
	}

	err := b.pool.Submit(func() { _ = b.dispatch(ctx, e) })
	if err == nil {
		return
	}
	if errors.Is(err, workerpool.ErrPoolFull) {
		logger.WithCtx(ctx).Warn("event: pool full, dispatching inline", "event", name)
		_ = b.dispatch(ctx, e)
		return
	}
	logger.WithCtx(ctx).Error("event: dropped", "event", name, "error", err)
}

// PublishSync runs every listener before returning and joins their errors.
func (b *Bus) PublishSync(ctx context.Context, name string, payload any) error {
	return b.dispatch(ctx, Event{Name: name, Payload: payload, OccurredAt: b.now().UTC()})
}

func (b *Bus) dispatch(ctx context.Context, e Event) error {
	var errs []error
	for _, l := range b.listenersFor(e.Name) {
		if err := l(ctx, e); err != nil {
			logger.WithCtx(ctx).Error("event: listener failed", "event", e.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
		}
	}
	return errors.Join(errs...)
}
