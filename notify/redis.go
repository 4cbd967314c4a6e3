package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisChannel is the pub/sub channel events are published on
const DefaultRedisChannel = "whiteknight:events"

// maxEventSize caps a single published payload
const maxEventSize = 1024 * 1024

// RedisPublisher publishes events as JSON on a Redis pub/sub channel
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.SugaredLogger
}

// NewRedisPublisher creates a publisher for the given server and channel
func NewRedisPublisher(addr, password string, db int, channel string, logger *zap.SugaredLogger) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Ping tests the Redis connection
func (rp *RedisPublisher) Ping(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// Channel returns the channel events are published on
func (rp *RedisPublisher) Channel() string {
	return rp.channel
}

// Publish marshals the event and publishes it on the channel
func (rp *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if len(data) > maxEventSize {
		return fmt.Errorf("event size %d bytes exceeds maximum allowed size %d bytes", len(data), maxEventSize)
	}

	receivers, err := rp.client.Publish(ctx, rp.channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	rp.logger.Debugw("Published event to redis",
		"channel", rp.channel,
		"event_type", event.Type,
		"receivers", receivers)
	return nil
}
