package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaQueue maps each queue name to a topic. Offsets are committed only
// after the handler succeeds or the message has been parked on the poison
// topic.
type KafkaQueue struct {
	brokers    []string
	groupID    string
	maxDequeue int

	mu      sync.Mutex
	writers map[string]messageWriter

	newReader func(topic string) messageReader
	newWriter func(topic string) messageWriter
}

func NewKafkaQueue(brokers []string, groupID string, maxDequeue int) *KafkaQueue {
	if maxDequeue <= 0 {
		maxDequeue = 5
	}
	q := &KafkaQueue{
		brokers:    brokers,
		groupID:    groupID,
		maxDequeue: maxDequeue,
		writers:    make(map[string]messageWriter),
	}
	q.newReader = func(topic string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  q.brokers,
			Topic:    topic,
			GroupID:  q.groupID,
			MaxBytes: 10e6, // 10MB
		})
	}
	q.newWriter = func(topic string) messageWriter {
		return &kafka.Writer{
			Addr:                   kafka.TCP(q.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		}
	}
	return q
}

func (q *KafkaQueue) writer(topic string) messageWriter {
	q.mu.Lock()
	defer q.mu.Unlock()

	w, ok := q.writers[topic]
	if !ok {
		w = q.newWriter(topic)
		q.writers[topic] = w
	}
	return w
}

func (q *KafkaQueue) Publish(ctx context.Context, queueName string, msg Message) error {
	err := q.writer(queueName).WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: EncodeBody(msg.Body),
	})
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", queueName, err)
	}
	return nil
}

func (q *KafkaQueue) Consume(ctx context.Context, queueName string, handler Handler) error {
	reader := q.newReader(queueName)
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("[QUEUE] [ERROR] closing kafka reader for %s: %v", queueName, err)
		}
	}()

	log.Printf("[QUEUE] [INFO] consuming kafka topic %s as %s", queueName, q.groupID)
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("kafka fetch %s: %w", queueName, err)
		}

		if err := q.deliver(ctx, queueName, m, handler); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// the offset stays uncommitted; the group redelivers after a restart
			return err
		}

		if err := reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[QUEUE] [ERROR] kafka commit on %s failed: %v", queueName, err)
		}
	}
}

// deliver runs the handler up to maxDequeue times. A nil result means the
// offset may be committed.
func (q *KafkaQueue) deliver(ctx context.Context, queueName string, m kafka.Message, handler Handler) error {
	body, err := DecodeBody(m.Value)
	if err != nil {
		log.Printf("[QUEUE] [ERROR] undecodable message on %s, moving to poison: %v", queueName, err)
		return q.park(ctx, queueName, m)
	}

	var lastErr error
	for attempt := 1; attempt <= q.maxDequeue; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = handler(ctx, body); lastErr == nil {
			return nil
		}
		log.Printf("[QUEUE] [WARN] message on %s failed (attempt %d/%d): %v", queueName, attempt, q.maxDequeue, lastErr)
	}

	log.Printf("[QUEUE] [ERROR] message on %s exhausted retries, moving to poison: %v", queueName, lastErr)
	return q.park(ctx, queueName, m)
}

func (q *KafkaQueue) park(ctx context.Context, queueName string, m kafka.Message) error {
	err := q.writer(poisonName(queueName)).WriteMessages(ctx, kafka.Message{
		Key:   m.Key,
		Value: m.Value,
	})
	if err != nil {
		return fmt.Errorf("kafka poison write for %s offset %d: %w", queueName, m.Offset, err)
	}
	return nil
}

func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var errs []error
	for topic, w := range q.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}
