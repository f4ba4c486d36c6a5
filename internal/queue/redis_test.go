package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestQueue(t *testing.T, maxDequeue int) (*RedisQueue, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisQueue(client, RedisOptions{MaxDequeue: maxDequeue, PollTimeout: 100 * time.Millisecond}), mr
}

// runConsumer starts Consume in the background and stops it when the test ends.
func runConsumer(t *testing.T, q *RedisQueue, name string, handler Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, q.Consume(ctx, name, handler))
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func TestPublishStoresBase64(t *testing.T) {
	q, mr := setupTestQueue(t, 5)

	require.NoError(t, q.Publish(context.Background(), "orders", Message{Key: "o-1", Body: []byte(`{"orderId":"o-1"}`)}))

	items, err := mr.List(queueKey("orders"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "eyJvcmRlcklkIjoiby0xIn0=", items[0])
}

func TestConsumeDeliversDecodedBody(t *testing.T) {
	q, mr := setupTestQueue(t, 5)
	require.NoError(t, q.Publish(context.Background(), "orders", Message{Body: []byte(`{"orderId":"o-1"}`)}))

	received := make(chan string, 1)
	runConsumer(t, q, "orders", func(_ context.Context, body []byte) error {
		received <- string(body)
		return nil
	})

	select {
	case body := <-received:
		assert.Equal(t, `{"orderId":"o-1"}`, body)
	case <-time.After(3 * time.Second):
		t.Fatal("message was not delivered")
	}

	require.Eventually(t, func() bool {
		return !mr.Exists(processingKey("orders"))
	}, 2*time.Second, 20*time.Millisecond, "acked message must leave the processing list")
	assert.False(t, mr.Exists(attemptsKey("orders")))
}

func TestFailingMessageMovesToPoison(t *testing.T) {
	q, _ := setupTestQueue(t, 3)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, "orders", Message{Body: []byte(`{"orderId":"o-1"}`)}))

	var calls atomic.Int32
	runConsumer(t, q, "orders", func(context.Context, []byte) error {
		calls.Add(1)
		return errors.New("order not found")
	})

	require.Eventually(t, func() bool {
		n, err := q.PoisonLen(ctx, "orders")
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, int32(3), calls.Load())
	n, err := q.Len(ctx, "orders")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRetryThenSucceed(t *testing.T) {
	q, mr := setupTestQueue(t, 5)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, "orders", Message{Body: []byte(`{}`)}))

	var calls atomic.Int32
	done := make(chan struct{})
	runConsumer(t, q, "orders", func(context.Context, []byte) error {
		if calls.Add(1) < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("message was not redelivered")
	}

	require.Eventually(t, func() bool {
		return !mr.Exists(attemptsKey("orders"))
	}, 2*time.Second, 20*time.Millisecond)
	n, err := q.PoisonLen(ctx, "orders")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUndecodableMessageIsPoisoned(t *testing.T) {
	q, mr := setupTestQueue(t, 5)
	ctx := context.Background()
	mr.Lpush(queueKey("orders"), "%%%not-base64")

	runConsumer(t, q, "orders", func(context.Context, []byte) error {
		t.Error("handler must not see undecodable bodies")
		return nil
	})

	require.Eventually(t, func() bool {
		n, err := q.PoisonLen(ctx, "orders")
		return err == nil && n == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRecoverMovesInFlightBack(t *testing.T) {
	q, mr := setupTestQueue(t, 5)
	ctx := context.Background()
	mr.Lpush(processingKey("orders"), string(EncodeBody([]byte(`{"orderId":"a"}`))))
	mr.Lpush(processingKey("orders"), string(EncodeBody([]byte(`{"orderId":"b"}`))))

	moved, err := q.Recover(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	n, err := q.Len(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, mr.Exists(processingKey("orders")))

	moved, err = q.Recover(ctx, "orders")
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestDecodeBodyRejectsGarbage(t *testing.T) {
	_, err := DecodeBody([]byte("***"))
	assert.Error(t, err)

	body, err := DecodeBody(EncodeBody([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}
