// Package notify fans service events out to in-process subscribers.
//
// Judges' tablets and the head-judge console poll the HTTP API, but the
// contest simulator and tests want push semantics. The broker is
// fire-and-forget: a slow subscriber loses events rather than stalling
// score ingestion.
package notify

import (
	"context"
	"sync"

	"github.com/skatium/heatline/pkg/logger"
	"github.com/skatium/heatline/pkg/metrics"
)

// Event kinds published by the service.
const (
	KindScoreRecorded   = "score.recorded"
	KindHeatStarted     = "heat.started"
	KindHeatAdvanced    = "heat.advanced"
	KindHeatCompleted   = "heat.completed"
	KindRankingsUpdated = "rankings.updated"
	KindPhaseTransition = "phase.advanced"
)

// Event describes a state change worth announcing.
type Event struct {
	Kind     string
	EntityID string
}

// Notifier publishes events without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, kind, entityID string)
}

const defaultSubscriberBuffer = 64

// Broker is an in-process Notifier with channel subscribers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int

	logger logger.Logger
}

// Option applies a configuration option to the Broker.
type Option func(*Broker)

// WithSubscriberBuffer sets each subscriber's channel capacity.
func WithSubscriberBuffer(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// NewBroker creates an empty broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		subs:   make(map[int]chan Event),
		buffer: defaultSubscriberBuffer,
		logger: logger.Get().Named("notify"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber. The returned cancel function
// removes the subscription and closes the channel.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Notify delivers the event to every subscriber with room in its buffer.
func (b *Broker) Notify(ctx context.Context, kind, entityID string) {
	ev := Event{Kind: kind, EntityID: entityID}

	b.mu.RLock()
	dropped := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	b.mu.RUnlock()

	metrics.RecordNotificationPublished()
	if dropped > 0 {
		b.logger.Debug(ctx, "dropped event for slow subscribers",
			logger.String("kind", kind),
			logger.Int("dropped", dropped),
		)
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Noop is a Notifier that discards every event.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, string, string) {}
