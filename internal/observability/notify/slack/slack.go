// Package slack delivers mutation outcome events to a Slack incoming
// webhook, so failed admin actions surface in an ops channel without
// log trawling.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/jobhub/ui-api/internal/observability/notify"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultUsername = "jobhub"
	backoffStep     = 200 * time.Millisecond
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// MinSeverity limits delivery; "error" posts only failed mutations,
	// empty posts everything.
	MinSeverity string
}

// Client posts formatted mutation events to a single webhook URL.
type Client struct {
	webhookURL  string
	channel     string
	username    string
	retryLimit  int
	minSeverity string
	client      *http.Client
}

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = defaultUsername
	}

	return &Client{
		webhookURL:  webhookURL,
		channel:     strings.TrimSpace(cfg.Channel),
		username:    username,
		retryLimit:  max(cfg.RetryLimit, 0),
		minSeverity: strings.TrimSpace(cfg.MinSeverity),
		client:      hc,
	}, nil
}

// Send posts the event, retrying transient failures with linear backoff.
// Events below the configured minimum severity are silently dropped.
func (c *Client) Send(ctx context.Context, event notify.Event) error {
	if c.minSeverity == notify.SeverityError && event.Severity != notify.SeverityError {
		return nil
	}

	body, err := json.Marshal(c.formatMessage(event))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryLimit; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * backoffStep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if lastErr = c.post(ctx, body); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *Client) formatMessage(event notify.Event) map[string]any {
	var text strings.Builder
	if event.Severity == notify.SeverityError {
		text.WriteString("*Mutation failed*")
	} else {
		text.WriteString("*Mutation completed*")
	}
	if event.Operation != "" {
		fmt.Fprintf(&text, " `%s`", event.Operation)
	}
	text.WriteByte('\n')

	writeField(&text, "Severity", event.Severity)
	writeField(&text, "Target", escapeText(event.TargetID))
	writeField(&text, "Actor", escapeText(event.ActorID))
	writeField(&text, "Message", escapeText(event.Message))

	if len(event.Metadata) > 0 {
		text.WriteString("• Metadata:\n")
		for _, k := range slices.Sorted(maps.Keys(event.Metadata)) {
			fmt.Fprintf(&text, "    • %s: %s\n", k, event.Metadata[k])
		}
	}

	timestamp := event.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	text.WriteString("• Timestamp: ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}

	respBody, err := readAndClose(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// readAndClose drains the body so the connection can be reused, and
// reports both read and close failures.
func readAndClose(body io.ReadCloser) ([]byte, error) {
	data, readErr := io.ReadAll(body)
	closeErr := body.Close()
	switch {
	case readErr != nil && closeErr != nil:
		return nil, errors.Join(
			fmt.Errorf("read slack response: %w", readErr),
			fmt.Errorf("close response body: %w", closeErr),
		)
	case readErr != nil:
		return nil, fmt.Errorf("read slack response: %w", readErr)
	case closeErr != nil:
		return nil, fmt.Errorf("close response body: %w", closeErr)
	}
	return data, nil
}

func writeField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(text, "• %s: %s\n", label, value)
}

// escapeText applies Slack's required entity escaping to user-supplied
// strings before they are interpolated into message markup.
func escapeText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(value)
}
