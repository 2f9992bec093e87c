package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

var _ Notifier = (*SlackNotifier)(nil)

type SlackWebhookBody struct {
	Text string `json:"text"`
}

func (n *SlackNotifier) Send(ctx context.Context, note Notification) error {
	return n.sendSlackMsg(ctx, notificationBody(note))
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

func notificationBody(note Notification) string {
	var msg string
	switch note.Event {
	case NotifyWarning:
		msg = "⚠️ Rule 5 Warning ⚠️\n"
	case NotifyRemoval:
		msg = "⚠️ Rule 5 Removal ⚠️\n"
	case NotifyReinstatement:
		msg = "✅ Rule 5 Reinstatement ✅\n"
	case NotifyReport:
		msg = "⚠️ Rule 5 Report ⚠️\n"
	case NotifyInvalid:
		msg = "⚠️ Rule 5 Invalid Request ⚠️\n"
	default:
		msg = "🔥 Rule 5 Bot Error 🔥\n"
	}
	msg += fmt.Sprintf("`u/%s` in `r/%s`\n", note.Username, note.Subreddit)
	if note.PostURL != "" {
		msg += fmt.Sprintf("<%s>\n", note.PostURL)
	}
	if note.Reason != "" {
		msg += fmt.Sprintf("Reason: %s\n", note.Reason)
	}
	return msg
}
