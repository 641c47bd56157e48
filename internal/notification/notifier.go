// Package notification dispatches operational events (alerts raised, reports
// ready or failed, escalations) to delivery channels.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// Notification channels.
const (
	ChannelSecurity   = "security-alerts"
	ChannelOperations = "operations"
	ChannelReports    = "reports"
)

// Notifier delivers a payload to a named channel.
type Notifier interface {
	Notify(ctx context.Context, channel string, payload map[string]any) error
}

// LogNotifier writes notifications to the structured log. The default
// dispatcher when no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(_ context.Context, channel string, payload map[string]any) error {
	n.logger.Info("notification",
		slog.String("channel", channel),
		slog.Any("payload", payload),
	)
	return nil
}

// WebhookNotifier posts notifications as JSON to a webhook endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook-backed notifier.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify posts the payload to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, channel string, payload map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"channel": channel,
		"payload": payload,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "failed to build notification request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "failed to deliver notification")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		return apperrors.Wrap(apperrors.ErrUnavailable, fmt.Sprintf("notification endpoint returned %d", resp.StatusCode))
	}
	return nil
}

// BreakerNotifier wraps a Notifier with a circuit breaker so a failing
// delivery endpoint cannot pile up blocked calls.
type BreakerNotifier struct {
	delegate Notifier
	breaker  *gobreaker.CircuitBreaker[any]
}

// NewBreakerNotifier creates a circuit-breaker wrapped notifier.
func NewBreakerNotifier(delegate Notifier) *BreakerNotifier {
	settings := gobreaker.Settings{
		Name:    "notifier",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &BreakerNotifier{
		delegate: delegate,
		breaker:  gobreaker.NewCircuitBreaker[any](settings),
	}
}

// Notify delivers through the breaker.
func (n *BreakerNotifier) Notify(ctx context.Context, channel string, payload map[string]any) error {
	_, err := n.breaker.Execute(func() (any, error) {
		return nil, n.delegate.Notify(ctx, channel, payload)
	})
	return err
}
