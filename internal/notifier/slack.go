package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Notifier delivers a message to the channel.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// DeliveryError means the webhook call did not succeed.
type DeliveryError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("deliver notification: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("deliver notification: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackNotifier returns a notifier with a bounded client timeout.
func NewSlackNotifier(webhookURL string, timeout time.Duration) *SlackNotifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: timeout},
	}
}

func (n *SlackNotifier) Notify(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("encode message: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
