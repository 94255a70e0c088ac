// Package slack escalates critical alerts to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/resident"
)

const (
	maxTitleLen = 150
	httpTimeout = 10 * time.Second
)

// Notifier posts alert escalations to a Slack webhook. It implements the
// session service's Notifier interface.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Notify posts an alert to the configured Slack webhook. res may be nil when
// the alert arrived for a resident the session does not track.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, al alert.Alert, res *resident.Resident) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(al, res)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(al alert.Alert, res *resident.Resident) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(al),
			{"type": "divider"},
			fieldsBlock(al, res),
			{"type": "divider"},
			contextBlock(al),
		},
	}
}

func headerBlock(al alert.Alert) map[string]any {
	text := fmt.Sprintf("%s Alert: %s", typeEmoji(al.Type), truncate(al.Title, maxTitleLen))

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(al alert.Alert, res *resident.Resident) map[string]any {
	name, room := "unknown resident", "-"
	if res != nil {
		name, room = res.Name, res.Room
	}

	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Resident:* %s", name),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Room:* %s", room),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Type:* %s", al.Type),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Status:* %s", al.Status),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func contextBlock(al alert.Alert) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("wardview • alert %s • %s", al.ID, al.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func typeEmoji(t alert.Type) string {
	switch t {
	case alert.TypeCritical:
		return "\U0001f534" // red circle
	case alert.TypeWarning:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f535" // blue circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
