// Package notify delivers broadcast announcements to an external webhook.
// Delivery is best-effort; the suggestion lifecycle never depends on it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Notifier pushes one announcement to the community's residents.
type Notifier interface {
	Send(ctx context.Context, announcement Announcement) error
}

// Announcement is the payload sent for one broadcast.
type Announcement struct {
	BroadcastID  string   `json:"broadcastId"`
	CommunityID  int64    `json:"communityId"`
	SuggestionID int64    `json:"suggestionId"`
	Message      string   `json:"message"`
	Channels     []string `json:"channels"`
	RecipientIDs []int64  `json:"recipientIds"`
}

// WebhookNotifier POSTs announcements to a configured endpoint.
type WebhookNotifier struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewWebhookNotifier creates a Notifier for the given webhook URL.
func NewWebhookNotifier(webhookURL string, timeout time.Duration, logger zerolog.Logger) *WebhookNotifier {
	client := resty.New().
		SetBaseURL(webhookURL).
		SetTimeout(timeout)

	return &WebhookNotifier{client: client, logger: logger}
}

func (n *WebhookNotifier) Send(ctx context.Context, announcement Announcement) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(announcement).
		Post("")
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	n.logger.Debug().
		Str("broadcastID", announcement.BroadcastID).
		Int("recipients", len(announcement.RecipientIDs)).
		Msg("Broadcast announcement delivered")
	return nil
}

// NopNotifier drops announcements. Used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, Announcement) error { return nil }
