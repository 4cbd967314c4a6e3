package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"whiteknight/metrics"

	"go.uber.org/zap"
)

// BreakerState is the state of a sink's circuit breaker
type BreakerState string

const (
	// BreakerClosed passes every event through
	BreakerClosed BreakerState = "closed"
	// BreakerOpen drops events without calling the sink
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen lets a single probe event through
	BreakerHalfOpen BreakerState = "half_open"
)

// ErrSinkUnavailable is returned while a sink's breaker is open
var ErrSinkUnavailable = errors.New("event sink unavailable")

// BreakerConfig holds configuration for a sink circuit breaker
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening
	MaxFailures int
	// Cooldown is how long the breaker stays open before probing again
	Cooldown time.Duration
}

// DefaultBreakerConfig returns the defaults used for external sinks
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		Cooldown:    30 * time.Second,
	}
}

// Validate checks the breaker configuration
func (c BreakerConfig) Validate() error {
	if c.MaxFailures <= 0 {
		return errors.New("MaxFailures must be greater than 0")
	}
	if c.Cooldown <= 0 {
		return errors.New("Cooldown must be greater than 0")
	}
	return nil
}

// BreakerPublisher wraps an external sink so that a dead endpoint stops
// adding its timeout to every request that publishes an event.
type BreakerPublisher struct {
	name   string
	next   Publisher
	config BreakerConfig
	logger *zap.SugaredLogger
	now    func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreakerPublisher wraps next under the given sink name
func NewBreakerPublisher(name string, next Publisher, config BreakerConfig, logger *zap.SugaredLogger) (*BreakerPublisher, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid breaker configuration for %s: %w", name, err)
	}
	metrics.EventSinkCircuitOpen.WithLabelValues(name).Set(0)
	return &BreakerPublisher{
		name:   name,
		next:   next,
		config: config,
		logger: logger,
		now:    time.Now,
		state:  BreakerClosed,
	}, nil
}

// State returns the current breaker state
func (b *BreakerPublisher) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// allow reports whether an event may be sent now
func (b *BreakerPublisher) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			return false
		}
		b.state = BreakerHalfOpen
		b.probing = true
		return true
	case BreakerHalfOpen:
		// one probe at a time
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

func (b *BreakerPublisher) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.state
	b.probing = false

	if err == nil {
		b.failures = 0
		b.state = BreakerClosed
	} else {
		b.failures++
		if b.state == BreakerHalfOpen || b.failures >= b.config.MaxFailures {
			b.state = BreakerOpen
			b.openedAt = b.now()
		}
	}

	if old == b.state {
		return
	}
	if b.state == BreakerOpen {
		metrics.EventSinkCircuitOpen.WithLabelValues(b.name).Set(1)
		b.logger.Warnw("Event sink circuit opened",
			"sink", b.name,
			"failures", b.failures,
			"cooldown", b.config.Cooldown)
	} else if b.state == BreakerClosed {
		metrics.EventSinkCircuitOpen.WithLabelValues(b.name).Set(0)
		b.logger.Infow("Event sink circuit closed", "sink", b.name)
	}
}

// Publish forwards the event unless the breaker is open
func (b *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	if !b.allow() {
		return fmt.Errorf("%s: %w", b.name, ErrSinkUnavailable)
	}
	err := b.next.Publish(ctx, event)
	b.record(err)
	return err
}
