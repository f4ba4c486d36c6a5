package services

import (
	"context"
	"sync"
	"time"

	"widgetstore/internal/queue"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type recordingPublisher struct {
	mu       sync.Mutex
	err      error
	queues   []string
	messages []queue.Message
}

func (p *recordingPublisher) Publish(_ context.Context, queueName string, msg queue.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.queues = append(p.queues, queueName)
	p.messages = append(p.messages, msg)
	return nil
}
