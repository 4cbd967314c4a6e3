package bootstrap

import (
	"context"
	"fmt"
	"time"

	"whiteknight/config"
	"whiteknight/notify"

	"go.uber.org/zap"
)

// EventSinks holds the notifier and the external sinks that need closing
type EventSinks struct {
	Notifier *notify.Notifier
	Redis    *notify.RedisPublisher
}

// Close releases external sink connections
func (e *EventSinks) Close() error {
	if e.Redis != nil {
		return e.Redis.Close()
	}
	return nil
}

// addGuardedSink registers an external sink behind a circuit breaker
func addGuardedSink(n *notify.Notifier, name string, p notify.Publisher, sugar *zap.SugaredLogger) error {
	guarded, err := notify.NewBreakerPublisher(name, p, notify.DefaultBreakerConfig(), sugar)
	if err != nil {
		return err
	}
	n.AddSink(name, guarded)
	return nil
}

// InitEventSinks builds the notifier that fans domain events out to the
// dashboard stream and any configured external sinks. External sinks sit
// behind a circuit breaker. An unreachable Redis server is logged but does not
// stop startup; publishes are best effort.
func InitEventSinks(ctx context.Context, cfg *config.Config, stream notify.Publisher, sugar *zap.SugaredLogger) (*EventSinks, error) {
	sinks := &EventSinks{Notifier: notify.NewNotifier(sugar)}

	if stream != nil {
		sinks.Notifier.AddSink("websocket", stream)
	}

	if cfg.Events.Redis.Enabled {
		rp := notify.NewRedisPublisher(
			cfg.Events.Redis.Addr,
			cfg.Events.Redis.Password,
			cfg.Events.Redis.DB,
			cfg.Events.Redis.Channel,
			sugar,
		)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rp.Ping(pingCtx)
		cancel()
		if err != nil {
			sugar.Warnw("Redis not reachable at startup, publishing anyway",
				"addr", cfg.Events.Redis.Addr,
				"error", err)
		} else {
			sugar.Infow("Publishing events to Redis",
				"addr", cfg.Events.Redis.Addr,
				"channel", rp.Channel())
		}

		sinks.Redis = rp
		if err := addGuardedSink(sinks.Notifier, "redis", rp, sugar); err != nil {
			return nil, err
		}
	}

	if cfg.Events.Webhook.Enabled {
		if cfg.Events.Webhook.URL == "" {
			return nil, fmt.Errorf("events.webhook.url is required when the webhook sink is enabled")
		}
		wp := notify.NewWebhookPublisher(notify.WebhookConfig{
			URL:     cfg.Events.Webhook.URL,
			Headers: cfg.Events.Webhook.Headers,
			Timeout: cfg.Events.Webhook.Timeout,
		}, sugar)
		if err := addGuardedSink(sinks.Notifier, "webhook", wp, sugar); err != nil {
			return nil, err
		}
		sugar.Infow("Publishing events to webhook", "url", cfg.Events.Webhook.URL)
	}

	sugar.Infow("Event sinks ready", "sinks", sinks.Notifier.Sinks())
	return sinks, nil
}
