package queue

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher stops calling the wrapped publisher after repeated
// failures and fails fast with gobreaker.ErrOpenState until Timeout passes.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

type BreakerSettings struct {
	ConsecutiveFailures uint32
	Timeout             time.Duration
}

func NewBreakerPublisher(next Publisher, settings BreakerSettings) *BreakerPublisher {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "queue-publish",
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[QUEUE] [WARN] breaker %s: %s -> %s", name, from, to)
		},
	})
	return &BreakerPublisher{next: next, cb: cb}
}

func (b *BreakerPublisher) Publish(ctx context.Context, queueName string, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Publish(ctx, queueName, msg)
	})
	return err
}

func (b *BreakerPublisher) State() gobreaker.State {
	return b.cb.State()
}
