package notify

import (
	"context"
	"time"
)

// maxBackoff is the upper limit for exponential backoff between delivery attempts.
const maxBackoff = 5 * time.Minute

// SendWithRetry calls Send up to attempts times. The wait between attempts
// starts at initial (at least one second when zero) and doubles each time,
// capped at maxBackoff. It stops early when ctx is cancelled.
func (w *WebhookSender) SendWithRetry(ctx context.Context, event *CardEvent, attempts int, initial time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := initial
	if backoff <= 0 {
		backoff = time.Second
	}

	var err error
	for i := 1; ; i++ {
		if err = w.Send(ctx, event); err == nil || i == attempts {
			return err
		}

		w.log.Warn("webhook retry scheduled", "card_id", event.ID, "attempt", i, "backoff", backoff, "error", err)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
