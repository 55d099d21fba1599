package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thenoetrevino/groupboard/internal/replica"
)

// Flusher is a transport that queues batches it could not write.
type Flusher interface {
	Flush(ctx context.Context) error
}

// SendWithRetry sends ops with retry logic.
// It makes up to maxRetries attempts with exponential backoff, which covers
// a client that is in the middle of reconnecting. Once the transport has
// queued the batch, later attempts flush the queue instead of sending again.
// Returns the error from the final attempt if all retries fail.
func SendWithRetry(ctx context.Context, t replica.Transport, ops []replica.Op, maxRetries int) error {
	if t == nil || len(ops) == 0 {
		return nil
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	baseDelay := 50 * time.Millisecond
	send := func() error { return t.Send(ctx, ops) }

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := send()
		if err == nil {
			if attempt > 0 {
				slog.Debug("ops sent after retry", "attempt", attempt+1, "ops", len(ops))
			}
			return nil
		}
		lastErr = err
		if errors.Is(err, replica.ErrTransportClosed) {
			break
		}
		if f, ok := t.(Flusher); ok && errors.Is(err, ErrQueued) {
			send = func() error { return f.Flush(ctx) }
		}

		// Don't sleep after the last attempt
		if attempt < maxRetries-1 {
			// Exponential backoff: 50ms, 100ms, 200ms
			delay := baseDelay * (1 << attempt)
			slog.Debug("send failed, retrying",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"retry_delay", delay,
				"error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	// Log final failure at warn level since peers miss these changes
	slog.Warn("send failed after all retries", "attempts", maxRetries, "ops", len(ops), "error", lastErr)
	return lastErr
}

// retrying wraps a transport so every Send goes through SendWithRetry.
type retrying struct {
	replica.Transport
	retries int
}

func (r retrying) Send(ctx context.Context, ops []replica.Op) error {
	return SendWithRetry(ctx, r.Transport, ops, r.retries)
}

// WithSendRetries returns t with sends retried up to retries times.
func WithSendRetries(t replica.Transport, retries int) replica.Transport {
	if retries <= 1 {
		return t
	}
	return retrying{Transport: t, retries: retries}
}
