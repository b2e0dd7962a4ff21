// Package notify delivers card events to an external webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// EventCardGenerated is the event name sent for every stored card.
const EventCardGenerated = "card.generated"

// CardEvent is the JSON body sent to the configured webhook URL.
type CardEvent struct {
	Event     string `json:"event"`
	ID        string `json:"id"`
	Payload   string `json:"payload"`
	Skin      string `json:"skin"`
	Preview   bool   `json:"preview"`
	Checksum  string `json:"checksum"`
	Timestamp int64  `json:"timestamp"`
}

// WebhookSender posts card events to an HTTP endpoint, skipping IDs it has
// already delivered recently.
type WebhookSender struct {
	url    string
	seen   map[string]time.Time // card ID -> first sent time
	mu     sync.Mutex
	client *http.Client
	log    *slog.Logger
}

// seenTTL is the time-to-live for entries in the deduplication map.
const seenTTL = 5 * time.Minute

// NewWebhookSender creates a WebhookSender for url. An empty url makes Send a
// no-op.
func NewWebhookSender(url string, log *slog.Logger) *WebhookSender {
	return &WebhookSender{
		url:  url,
		seen: make(map[string]time.Time),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Enabled reports whether a webhook URL is configured.
func (w *WebhookSender) Enabled() bool { return w.url != "" }

// Send delivers event. It returns nil without sending when no URL is
// configured or the event ID was already sent. Transport failures and 5xx
// responses are returned as errors; other non-2xx responses are only logged.
func (w *WebhookSender) Send(ctx context.Context, event *CardEvent) error {
	if w.url == "" {
		return nil
	}
	if event.Event == "" {
		event.Event = EventCardGenerated
	}

	w.mu.Lock()
	w.cleanupSeenLocked()
	if _, ok := w.seen[event.ID]; ok {
		w.mu.Unlock()
		w.log.Debug("webhook skipping duplicate card", "card_id", event.ID)
		return nil
	}
	w.seen[event.ID] = time.Now()
	w.mu.Unlock()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.forget(event.ID)
		w.log.Error("webhook delivery failed", "error", err, "card_id", event.ID)
		return fmt.Errorf("webhook POST: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		w.log.Info("webhook delivered", "status", resp.StatusCode, "card_id", event.ID)
	case resp.StatusCode >= 500:
		w.forget(event.ID)
		return fmt.Errorf("webhook POST: server responded %d", resp.StatusCode)
	default:
		w.log.Warn("webhook non-2xx response", "status", resp.StatusCode, "card_id", event.ID)
	}
	return nil
}

// forget drops id from the dedup map so a later attempt is not skipped.
func (w *WebhookSender) forget(id string) {
	w.mu.Lock()
	delete(w.seen, id)
	w.mu.Unlock()
}

// cleanupSeenLocked removes stale entries from the seen map. The caller MUST
// hold w.mu.
func (w *WebhookSender) cleanupSeenLocked() {
	cutoff := time.Now().Add(-seenTTL)
	for id, t := range w.seen {
		if t.Before(cutoff) {
			delete(w.seen, id)
		}
	}
}
