package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultWebhookTimeout bounds a single webhook delivery
const DefaultWebhookTimeout = 10 * time.Second

// WebhookConfig holds configuration for webhook delivery
type WebhookConfig struct {
	URL     string
	Method  string
	Headers map[string]string
	Timeout time.Duration
}

// WebhookPublisher posts events as JSON to an HTTP endpoint
type WebhookPublisher struct {
	config WebhookConfig
	client *http.Client
	logger *zap.SugaredLogger
}

// NewWebhookPublisher creates a webhook publisher. TLS certificates are always verified.
func NewWebhookPublisher(config WebhookConfig, logger *zap.SugaredLogger) *WebhookPublisher {
	if config.Method == "" {
		config.Method = http.MethodPost
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultWebhookTimeout
	}
	return &WebhookPublisher{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		logger: logger,
	}
}

// Publish sends the event to the configured URL
func (wp *WebhookPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, wp.config.Method, wp.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "WhiteKnight/1.0")
	for key, value := range wp.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := wp.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			wp.logger.Debugf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status: %d", resp.StatusCode)
	}

	wp.logger.Debugf("Sent webhook for event %s", event.Type)
	return nil
}
