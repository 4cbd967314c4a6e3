package notify

import (
	"context"
	"sync"

	"whiteknight/metrics"

	"go.uber.org/zap"
)

// Publisher delivers a domain event to one sink
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to the Publisher interface
type PublisherFunc func(ctx context.Context, event Event) error

// Publish calls f(ctx, event)
func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// NopPublisher discards every event
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Notifier fans events out to every registered sink.
// Delivery is best effort: a failing sink is logged and counted, and never
// fails the operation that produced the event.
type Notifier struct {
	mu     sync.RWMutex
	sinks  map[string]Publisher
	order  []string
	logger *zap.SugaredLogger
}

// NewNotifier creates a notifier with no sinks
func NewNotifier(logger *zap.SugaredLogger) *Notifier {
	return &Notifier{
		sinks:  make(map[string]Publisher),
		logger: logger,
	}
}

// AddSink registers a publisher under name, replacing any previous sink with that name
func (n *Notifier) AddSink(name string, p Publisher) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.sinks[name]; !exists {
		n.order = append(n.order, name)
	}
	n.sinks[name] = p
}

// Sinks returns the registered sink names in registration order
func (n *Notifier) Sinks() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.order...)
}

// Publish delivers the event to every sink
func (n *Notifier) Publish(ctx context.Context, event Event) error {
	n.mu.RLock()
	names := append([]string(nil), n.order...)
	sinks := make([]Publisher, 0, len(names))
	for _, name := range names {
		sinks = append(sinks, n.sinks[name])
	}
	n.mu.RUnlock()

	for i, sink := range sinks {
		if err := sink.Publish(ctx, event); err != nil {
			n.logger.Warnw("Failed to publish event",
				"sink", names[i],
				"event_type", event.Type,
				"error", err)
			metrics.EventsPublished.WithLabelValues(names[i], "error").Inc()
			continue
		}
		metrics.EventsPublished.WithLabelValues(names[i], "ok").Inc()
	}
	return nil
}
