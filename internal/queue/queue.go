// Package queue carries order-processing messages between intake and the
// fulfillment worker. Delivery is at-least-once and bodies travel base64
// encoded on every transport.
package queue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

type Message struct {
	// Key groups related messages; transports that partition use it.
	Key  string
	Body []byte
}

type Publisher interface {
	Publish(ctx context.Context, queueName string, msg Message) error
}

// Handler receives the decoded body. A returned error asks the transport
// to redeliver.
type Handler func(ctx context.Context, body []byte) error

type Consumer interface {
	// Consume blocks until ctx is done or the transport fails.
	Consume(ctx context.Context, queueName string, handler Handler) error
}

func EncodeBody(body []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(body)))
	base64.StdEncoding.Encode(out, body)
	return out
}

func DecodeBody(raw []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
	n, err := base64.StdEncoding.Decode(out, raw)
	if err != nil {
		return nil, fmt.Errorf("decode message body: %w", err)
	}
	return out[:n], nil
}

// PublishJSON marshals v and publishes it under key.
func PublishJSON(ctx context.Context, p Publisher, queueName, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.Publish(ctx, queueName, Message{Key: key, Body: body})
}

func poisonName(queueName string) string {
	return queueName + "-poison"
}
