package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	// MaxDequeue is how many failed deliveries a message gets before it is
	// moved to the poison list.
	MaxDequeue  int
	PollTimeout time.Duration
}

// RedisQueue keeps each named queue as a list. Consumers move entries into a
// processing list while the handler runs, so a crashed consumer leaves its
// in-flight messages behind for Recover.
type RedisQueue struct {
	client *redis.Client
	opts   RedisOptions
}

func NewRedisQueue(client *redis.Client, opts RedisOptions) *RedisQueue {
	if opts.MaxDequeue <= 0 {
		opts.MaxDequeue = 5
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	return &RedisQueue{client: client, opts: opts}
}

func queueKey(name string) string      { return "queue:" + name }
func processingKey(name string) string { return "queue:" + name + ":processing" }
func attemptsKey(name string) string   { return "queue:" + name + ":attempts" }
func poisonKey(name string) string     { return "queue:" + poisonName(name) }

func (q *RedisQueue) Publish(ctx context.Context, queueName string, msg Message) error {
	if err := q.client.LPush(ctx, queueKey(queueName), EncodeBody(msg.Body)).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", queueName, err)
	}
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context, queueName string, handler Handler) error {
	log.Printf("[QUEUE] [INFO] consuming %s (max dequeue %d)", queueName, q.opts.MaxDequeue)
	for {
		if ctx.Err() != nil {
			return nil
		}

		raw, err := q.client.BLMove(ctx, queueKey(queueName), processingKey(queueName), "RIGHT", "LEFT", q.opts.PollTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[QUEUE] [ERROR] receive from %s failed: %v", queueName, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		q.deliver(ctx, queueName, raw, handler)
	}
}

func (q *RedisQueue) deliver(ctx context.Context, queueName, raw string, handler Handler) {
	body, err := DecodeBody([]byte(raw))
	if err != nil {
		log.Printf("[QUEUE] [ERROR] undecodable message on %s, moving to poison: %v", queueName, err)
		q.poison(ctx, queueName, raw)
		return
	}

	if err := handler(ctx, body); err != nil {
		q.fail(ctx, queueName, raw, err)
		return
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, processingKey(queueName), 1, raw)
		pipe.HDel(ctx, attemptsKey(queueName), raw)
		return nil
	})
	if err != nil {
		log.Printf("[QUEUE] [ERROR] ack on %s failed: %v", queueName, err)
	}
}

func (q *RedisQueue) fail(ctx context.Context, queueName, raw string, cause error) {
	count, err := q.client.HIncrBy(ctx, attemptsKey(queueName), raw, 1).Result()
	if err != nil {
		log.Printf("[QUEUE] [ERROR] attempt counter on %s failed: %v", queueName, err)
		return
	}

	if count >= int64(q.opts.MaxDequeue) {
		log.Printf("[QUEUE] [ERROR] message on %s failed %d times, moving to poison: %v", queueName, count, cause)
		q.poison(ctx, queueName, raw)
		return
	}

	log.Printf("[QUEUE] [WARN] message on %s failed (attempt %d/%d), requeueing: %v", queueName, count, q.opts.MaxDequeue, cause)
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, processingKey(queueName), 1, raw)
		pipe.LPush(ctx, queueKey(queueName), raw)
		return nil
	})
	if err != nil {
		log.Printf("[QUEUE] [ERROR] requeue on %s failed: %v", queueName, err)
	}
}

func (q *RedisQueue) poison(ctx context.Context, queueName, raw string) {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, processingKey(queueName), 1, raw)
		pipe.HDel(ctx, attemptsKey(queueName), raw)
		pipe.LPush(ctx, poisonKey(queueName), raw)
		return nil
	})
	if err != nil {
		log.Printf("[QUEUE] [ERROR] poison move on %s failed: %v", queueName, err)
	}
}

// Recover moves messages left in the processing list by a previous consumer
// back onto the queue. It returns how many were moved.
func (q *RedisQueue) Recover(ctx context.Context, queueName string) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, processingKey(queueName), queueKey(queueName), "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("redis recover %s: %w", queueName, err)
		}
		moved++
	}
	if moved > 0 {
		log.Printf("[QUEUE] [INFO] recovered %d in-flight messages on %s", moved, queueName)
	}
	return moved, nil
}

func (q *RedisQueue) Len(ctx context.Context, queueName string) (int64, error) {
	return q.client.LLen(ctx, queueKey(queueName)).Result()
}

func (q *RedisQueue) PoisonLen(ctx context.Context, queueName string) (int64, error) {
	return q.client.LLen(ctx, poisonKey(queueName)).Result()
}
