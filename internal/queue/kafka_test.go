package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
	closed    bool
	idle      bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.idle = true
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// drained reports that the consumer came back for more after handling
// every queued message.
func (r *fakeReader) drained() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idle
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestKafkaQueue(maxDequeue int, reader *fakeReader) (*KafkaQueue, map[string]*fakeWriter) {
	writers := map[string]*fakeWriter{}
	q := NewKafkaQueue([]string{"localhost:9092"}, "widgetstore-worker", maxDequeue)
	q.newReader = func(string) messageReader { return reader }
	q.newWriter = func(topic string) messageWriter {
		w := &fakeWriter{}
		writers[topic] = w
		return w
	}
	return q, writers
}

func consumeUntilDrained(t *testing.T, q *KafkaQueue, reader *fakeReader, handler Handler) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- q.Consume(ctx, "orders", handler) }()

	require.Eventually(t, reader.drained, time.Second, 5*time.Millisecond)
	cancel()
	return <-errCh
}

func TestKafkaPublishEncodesAndKeys(t *testing.T) {
	q, writers := newTestKafkaQueue(3, &fakeReader{})

	require.NoError(t, q.Publish(context.Background(), "orders", Message{Key: "o-1", Body: []byte("hi")}))

	require.Len(t, writers["orders"].messages, 1)
	m := writers["orders"].messages[0]
	assert.Equal(t, "o-1", string(m.Key))
	assert.Equal(t, "aGk=", string(m.Value))
}

func TestKafkaCommitsAfterSuccess(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{{Offset: 7, Value: EncodeBody([]byte("payload"))}}}
	q, _ := newTestKafkaQueue(3, reader)

	var got []string
	err := consumeUntilDrained(t, q, reader, func(_ context.Context, body []byte) error {
		got = append(got, string(body))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"payload"}, got)
	require.Len(t, reader.committed, 1)
	assert.Equal(t, int64(7), reader.committed[0].Offset)
	assert.True(t, reader.closed)
}

func TestKafkaExhaustedRetriesGoToPoison(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{{Key: []byte("o-1"), Value: EncodeBody([]byte("payload"))}}}
	q, writers := newTestKafkaQueue(3, reader)

	calls := 0
	err := consumeUntilDrained(t, q, reader, func(context.Context, []byte) error {
		calls++
		return errors.New("boom")
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Contains(t, writers, "orders-poison")
	require.Len(t, writers["orders-poison"].messages, 1)
	assert.Equal(t, "o-1", string(writers["orders-poison"].messages[0].Key))
	assert.Len(t, reader.committed, 1)
}

func TestKafkaPoisonFailureStopsWithoutCommit(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{{Value: []byte("%%%")}}}
	q, _ := newTestKafkaQueue(3, reader)
	q.newWriter = func(string) messageWriter { return &fakeWriter{err: errors.New("broker down")} }

	err := q.Consume(context.Background(), "orders", func(context.Context, []byte) error { return nil })

	require.Error(t, err)
	assert.Empty(t, reader.committed)
}
