// Package notification sends transactional emails asynchronously. Producers
// enqueue typed jobs; a worker pool drains the queue and delivers them with
// a per-type retry policy.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelbooking/internal/pkg/queue"
)

type Config struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:    2,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	}
}

type retryPolicy struct {
	maxRetries int
	delay      time.Duration
}

type Dispatcher struct {
	queue  queue.Queue
	mailer Mailer
	cfg    Config
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewDispatcher(q queue.Queue, mailer Mailer, cfg Config, log logrus.FieldLogger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Dispatcher{
		queue:  q,
		mailer: mailer,
		cfg:    cfg,
		log:    log.WithField("component", "notification"),
		now:    time.Now,
	}
}

// Booking-created mail is informational and never retried.
func (d *Dispatcher) policy(jobType string) retryPolicy {
	if jobType == TypePaymentConfirmed {
		return retryPolicy{maxRetries: d.cfg.MaxRetries, delay: d.cfg.RetryDelay}
	}
	return retryPolicy{}
}

func (d *Dispatcher) NotifyBookingCreated(ctx context.Context, email, bookingID string) error {
	return d.enqueue(ctx, Job{Type: TypeBookingCreated, Email: email, BookingID: bookingID})
}

func (d *Dispatcher) NotifyPaymentConfirmed(ctx context.Context, email, bookingID, amount string) error {
	return d.enqueue(ctx, Job{Type: TypePaymentConfirmed, Email: email, BookingID: bookingID, Amount: amount})
}

func (d *Dispatcher) enqueue(ctx context.Context, job Job) error {
	job.ID = uuid.NewString()
	job.EnqueuedAt = d.now().UTC()

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode %s job: %w", job.Type, err)
	}
	if err := d.queue.Publish(ctx, payload); err != nil {
		return fmt.Errorf("enqueue %s job: %w", job.Type, err)
	}

	d.log.WithFields(logrus.Fields{
		"job_id":     job.ID,
		"type":       job.Type,
		"booking_id": job.BookingID,
	}).Debug("notification enqueued")
	return nil
}

// Start runs the worker pool and blocks until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.WithField("workers", d.cfg.Workers).Info("notification workers started")

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := d.queue.Consume(ctx, d.handle); err != nil {
				d.log.WithError(err).WithField("worker", worker).Error("notification worker stopped")
			}
		}(i)
	}
	wg.Wait()

	d.log.Info("notification workers stopped")
}

// handle delivers one job. A returned error tells the queue to dead-letter
// the payload.
func (d *Dispatcher) handle(ctx context.Context, payload []byte) error {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		d.log.WithError(err).Error("undecodable notification job")
		return fmt.Errorf("decode job: %w", err)
	}

	entry := d.log.WithFields(logrus.Fields{
		"job_id":     job.ID,
		"type":       job.Type,
		"booking_id": job.BookingID,
	})

	msg, ok := render(job)
	if !ok {
		entry.Error("unknown notification type")
		return fmt.Errorf("unknown job type %q", job.Type)
	}

	p := d.policy(job.Type)
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			if err := queue.Sleep(ctx, p.delay); err != nil {
				entry.WithField("attempts", job.Attempts).Warn("shutdown interrupted notification retries")
				return err
			}
		}

		job.Attempts++
		if lastErr = d.mailer.Send(ctx, msg); lastErr == nil {
			entry.WithField("attempts", job.Attempts).Info("notification delivered")
			return nil
		}
		entry.WithError(lastErr).WithField("attempts", job.Attempts).Warn("notification attempt failed")
	}

	if p.maxRetries == 0 {
		entry.WithError(lastErr).Warn("notification dropped")
		return nil
	}

	entry.WithError(lastErr).WithField("attempts", job.Attempts).Error("notification retries exhausted")
	return fmt.Errorf("deliver %s job %s: %w", job.Type, job.ID, lastErr)
}
