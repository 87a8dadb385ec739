// Package notify delivers user-facing notifications for mode transitions.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"controlling_evse/internal/logger"
)

// Notifier receives one (title, body) pair per detected mode transition.
type Notifier interface {
	Notify(title, body string)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(title, body string) {
	if n.log != nil {
		n.log.Infow("notification", "title", title, "body", body)
	}
}

// WebhookNotifier POSTs notifications as JSON to a configured URL, so an
// external push service (ntfy, Home Assistant, etc.) can deliver them.
// Delivery is best-effort: failures are logged and dropped.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

const webhookTimeout = 5 * time.Second

func NewWebhookNotifier(url string, log *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		log:    log,
	}
}

type webhookPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (n *WebhookNotifier) Notify(title, body string) {
	buf, err := json.Marshal(webhookPayload{Title: title, Body: body})
	if err != nil {
		return
	}
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(buf))
	if err != nil {
		if n.log != nil {
			n.log.Warnw("notification_webhook_failed", "err", err)
		}
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if n.log != nil {
			n.log.Warnw("notification_webhook_rejected", "err", fmt.Errorf("HTTP %d", resp.StatusCode))
		}
	}
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

func (m Multi) Notify(title, body string) {
	for _, n := range m {
		n.Notify(title, body)
	}
}
