// Package notify delivers alert notifications to an external channel.
//
// Delivery is fire-and-forget: the engine sends a notification once when
// an alert becomes active and does not retry, at-least-once delivery is
// the channel's contract.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ledgerline/backend/internal/models"
)

// Notifier is implemented by all notification channels.
type Notifier interface {
	AlertActivated(alert models.Alert) error
}

// Discard is a Notifier that drops all notifications. It is used when no
// notification channel is configured.
type Discard struct{}

func (Discard) AlertActivated(_ models.Alert) error {
	return nil
}

// WebhookNotifier posts alert notifications to a configured URL.
type WebhookNotifier struct {
	client *http.Client
	url    string
}

// NewWebhook returns a WebhookNotifier for the URL.
func NewWebhook(url string) *WebhookNotifier {
	return &WebhookNotifier{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		url: url,
	}
}

func (n *WebhookNotifier) AlertActivated(alert models.Alert) error {
	payload := map[string]any{
		"alertId":      alert.ID,
		"budgetId":     alert.BudgetID,
		"allocationId": alert.AllocationID,
		"type":         alert.Type,
		"threshold":    alert.Threshold,
		"actual":       alert.Actual,
		"timestamp":    alert.CreatedAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ledgerline-backend")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
