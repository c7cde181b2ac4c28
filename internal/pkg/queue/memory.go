package queue

import (
	"context"
	"sync"
)

const DefaultBuffer = 1024

// MemoryQueue is a buffered channel queue for single-process deployments
// and tests. Payloads do not survive a restart.
type MemoryQueue struct {
	ch     chan []byte
	closed chan struct{}
	once   sync.Once

	mu   sync.Mutex
	dead [][]byte
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &MemoryQueue{
		ch:     make(chan []byte, buffer),
		closed: make(chan struct{}),
	}
}

func (q *MemoryQueue) Publish(ctx context.Context, payload []byte) error {
	select {
	case <-q.closed:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- payload:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, h Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-q.closed:
			return nil
		case payload := <-q.ch:
			err := h(ctx, payload)
			switch {
			case err == nil:
			case ctx.Err() != nil:
				q.requeue(payload)
			default:
				q.mu.Lock()
				q.dead = append(q.dead, payload)
				q.mu.Unlock()
			}
		}
	}
}

// requeue returns a payload whose handler was interrupted. When the buffer
// is full it is dead-lettered instead of blocking shutdown.
func (q *MemoryQueue) requeue(payload []byte) {
	select {
	case q.ch <- payload:
	default:
		q.mu.Lock()
		q.dead = append(q.dead, payload)
		q.mu.Unlock()
	}
}

func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}

// DeadLetters returns a copy of the payloads whose handler failed.
func (q *MemoryQueue) DeadLetters() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([][]byte, len(q.dead))
	copy(out, q.dead)
	return out
}

// Len reports payloads waiting to be consumed.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}
