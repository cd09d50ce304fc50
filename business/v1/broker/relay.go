package broker

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocloud.dev/pubsub"
)

const (
	originKey = "origin"
	typeKey   = "type"
)

// Relay carries hints between server instances over a pubsub topic, so a
// publish on one instance reaches streams connected to the others.
type Relay struct {
	log    *zap.SugaredLogger
	broker *Broker
	topic  *pubsub.Topic
	sub    *pubsub.Subscription
	origin string
}

// NewRelay binds a local broker to a topic and a subscription of that topic.
func NewRelay(log *zap.SugaredLogger, b *Broker, topic *pubsub.Topic, sub *pubsub.Subscription) *Relay {
	return &Relay{
		log:    log,
		broker: b,
		topic:  topic,
		sub:    sub,
		origin: uuid.NewString(),
	}
}

// Origin identifies this instance in relayed messages.
func (r *Relay) Origin() string {
	return r.origin
}

// Forward sends data to the other instances. Local delivery is the caller's job.
func (r *Relay) Forward(ctx context.Context, t MessageType, data []byte) error {
	err := r.topic.Send(ctx, &pubsub.Message{
		Body: data,
		Metadata: map[string]string{
			originKey: r.origin,
			typeKey:   string(t),
		},
	})
	if err != nil {
		return fmt.Errorf("relay forward: %w", err)
	}
	return nil
}

// Run receives relayed hints and publishes them locally until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	for {
		m, err := r.sub.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("relay receive: %w", err)
		}

		if m.Metadata[originKey] != r.origin {
			t := MessageType(m.Metadata[typeKey])
			if t == "" {
				t = NotesUpdated
			}
			n := r.broker.Publish(t, m.Body)
			r.log.Debugw("relay", "from", m.Metadata[originKey], "delivered", n)
		}
		m.Ack()
	}
}
