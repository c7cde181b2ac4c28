package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultPopTimeout = 5 * time.Second
	reconnectDelay    = time.Second
)

type RedisConfig struct {
	Key           string
	ProcessingKey string
	DeadLetterKey string
	PopTimeout    time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Key:           "travelbooking:notifications",
		ProcessingKey: "travelbooking:notifications:processing",
		DeadLetterKey: "travelbooking:notifications:dlq",
		PopTimeout:    defaultPopTimeout,
	}
}

// RedisQueue is a durable list queue. Publish LPUSHes; consumers atomically
// move a payload onto the processing list (BRPOPLPUSH) and remove it only
// once the handler has finished, so a crash leaves it recoverable.
// Failed payloads go to the dead-letter list; payloads whose handler was
// cut short by shutdown go back to the main list.
type RedisQueue struct {
	client redis.UniversalClient
	cfg    RedisConfig
	log    logrus.FieldLogger
}

// DialRedis opens a client and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisQueue(client redis.UniversalClient, cfg RedisConfig, log logrus.FieldLogger) *RedisQueue {
	def := DefaultRedisConfig()
	if cfg.Key == "" {
		cfg.Key = def.Key
	}
	if cfg.ProcessingKey == "" {
		cfg.ProcessingKey = cfg.Key + ":processing"
	}
	if cfg.DeadLetterKey == "" {
		cfg.DeadLetterKey = def.DeadLetterKey
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = def.PopTimeout
	}
	return &RedisQueue{
		client: client,
		cfg:    cfg,
		log:    log.WithField("queue", cfg.Key),
	}
}

func (q *RedisQueue) Publish(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.cfg.Key, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", q.cfg.Key, err)
	}
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context, h Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		raw, err := q.client.BRPopLPush(ctx, q.cfg.Key, q.cfg.ProcessingKey, q.cfg.PopTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil
			}
			q.log.WithError(err).Warn("queue pop failed")
			if Sleep(ctx, reconnectDelay) != nil {
				return nil
			}
			continue
		}

		payload := []byte(raw)
		herr := h(ctx, payload)
		switch {
		case herr == nil:
			q.ack(raw)
		case ctx.Err() != nil:
			q.requeue(raw)
		default:
			q.deadLetter(raw, herr)
		}
	}
}

// settle runs fn on a fresh context; the consumer context may already be
// cancelled.
func (q *RedisQueue) settle(fn func(ctx context.Context, pipe redis.Pipeliner) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error { return fn(ctx, pipe) })
	return err
}

func (q *RedisQueue) ack(raw string) {
	err := q.settle(func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.cfg.ProcessingKey, 1, raw)
		return nil
	})
	if err != nil {
		q.log.WithError(err).Error("remove payload from processing list")
	}
}

// requeue puts an interrupted payload back at the consuming end of the main
// list so it is the next one handled after restart.
func (q *RedisQueue) requeue(raw string) {
	err := q.settle(func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.cfg.ProcessingKey, 1, raw)
		pipe.RPush(ctx, q.cfg.Key, raw)
		return nil
	})
	if err != nil {
		q.log.WithError(err).Error("requeue interrupted payload, it stays on the processing list")
		return
	}
	q.log.Info("interrupted payload returned to queue")
}

func (q *RedisQueue) deadLetter(raw string, cause error) {
	err := q.settle(func(ctx context.Context, pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.cfg.ProcessingKey, 1, raw)
		pipe.LPush(ctx, q.cfg.DeadLetterKey, raw)
		return nil
	})
	if err != nil {
		q.log.WithError(err).Error("dead-letter push failed, payload stays on the processing list")
		return
	}
	q.log.WithField("dlq", q.cfg.DeadLetterKey).WithError(cause).Warn("payload moved to dead-letter list")
}

// RecoverInFlight moves payloads left on the processing list by a process
// that died mid-job back onto the main list. Call it before any consumer
// starts; with several API instances sharing one key it would also steal
// jobs that are still being handled elsewhere.
func (q *RedisQueue) RecoverInFlight(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.RPopLPush(ctx, q.cfg.ProcessingKey, q.cfg.Key).Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("recover %s: %w", q.cfg.ProcessingKey, err)
		}
		n++
	}
}

// Pending reports the lengths of the main and processing lists.
func (q *RedisQueue) Pending(ctx context.Context) (queued, processing int64, err error) {
	queued, err = q.client.LLen(ctx, q.cfg.Key).Result()
	if err != nil {
		return 0, 0, err
	}
	processing, err = q.client.LLen(ctx, q.cfg.ProcessingKey).Result()
	return queued, processing, err
}

// DeadLetters lists parked payloads, newest first.
func (q *RedisQueue) DeadLetters(ctx context.Context) ([]string, error) {
	return q.client.LRange(ctx, q.cfg.DeadLetterKey, 0, -1).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
