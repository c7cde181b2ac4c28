// Package queue moves opaque payloads between producers and a pool of
// consumers. Payloads whose handler fails are parked in a dead-letter store.
package queue

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("queue: closed")

// Handler processes one payload. A non-nil error dead-letters the payload.
type Handler func(ctx context.Context, payload []byte) error

type Queue interface {
	Publish(ctx context.Context, payload []byte) error
	// Consume blocks, feeding payloads to h until ctx is cancelled or the
	// queue is closed. Several goroutines may consume concurrently.
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
