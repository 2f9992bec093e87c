package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DiscordNotifier posts notifications to a discord channel webhook. Same
// shape as the slack notifier, different payload field and success check.
type DiscordNotifier struct {
	WebhookURL string
	Client     *http.Client
}

var _ Notifier = (*DiscordNotifier)(nil)

type DiscordWebhookBody struct {
	Content string `json:"content"`
}

func (n *DiscordNotifier) Send(ctx context.Context, note Notification) error {
	body, err := json.Marshal(DiscordWebhookBody{Content: notificationBody(note)})
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
	// discord returns 204 on success
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed discord webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}
