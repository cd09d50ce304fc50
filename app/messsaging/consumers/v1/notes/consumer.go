package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ribgsilva/note-sync/business/v1/broker"
	"github.com/ribgsilva/note-sync/business/v1/note"
	"github.com/ribgsilva/note-sync/sys"
	"gocloud.dev/pubsub"
)

// Forwarder sends a change hint to the api instances
type Forwarder interface {
	Forward(ctx context.Context, t broker.MessageType, data []byte) error
}

// Consume applies note events from sub with at most maxWorkers in flight,
// forwarding a hint for every applied event, until ctx is done.
func Consume(ctx context.Context, sub *pubsub.Subscription, maxWorkers int, hints Forwarder) error {
	logger := sys.R.Log
	workers := make(chan int, maxWorkers)

	var err error
	for {
		var message *pubsub.Message
		message, err = sub.Receive(ctx)
		if err != nil {
			break
		}

		workers <- 1
		go func(m *pubsub.Message) {
			defer func() { <-workers }()
			defer m.Ack()

			logger.Infow("message received", "body", string(m.Body))
			var e note.Event
			if err := json.Unmarshal(m.Body, &e); err != nil {
				logger.Errorw("failed to parse body", "ERROR", err)
				return
			}

			d, err := apply(ctx, e)
			if err != nil {
				logger.Errorw("failed to apply event", "type", e.Type, "id", e.Id, "ERROR", err)
				return
			}

			hint, err := json.Marshal([]note.Descriptor{d})
			if err != nil {
				logger.Errorw("failed to encode hint", "ERROR", err)
				return
			}
			if err := hints.Forward(ctx, broker.NotesUpdated, hint); err != nil {
				logger.Errorw("failed to forward hint", "id", d.Id, "ERROR", err)
			}
		}(message)
	}

	for w := 0; w < maxWorkers; w++ {
		workers <- 1
	}

	if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return err
	}

	return nil
}

func apply(ctx context.Context, e note.Event) (note.Descriptor, error) {
	switch e.Type {
	case note.EventCreate:
		var c note.NewNote
		if err := json.Unmarshal(e.Data, &c); err != nil {
			return note.Descriptor{}, fmt.Errorf("create data: %w", err)
		}
		created, err := note.Create(ctx, c)
		if err != nil {
			return note.Descriptor{}, err
		}
		return note.Descriptor{Id: created.Id}, nil
	case note.EventUpdate:
		var p note.Patch
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return note.Descriptor{}, fmt.Errorf("update data: %w", err)
		}
		updated, err := note.Update(ctx, e.Id, p)
		if err != nil {
			return note.Descriptor{}, err
		}
		return note.Descriptor{Id: updated.Id}, nil
	case note.EventDelete:
		if err := note.Delete(ctx, e.Id); err != nil && !errors.Is(err, note.ErrNotFound) {
			return note.Descriptor{}, err
		}
		return note.Descriptor{Id: e.Id, Deleted: true}, nil
	default:
		return note.Descriptor{}, fmt.Errorf("unknown event type: %q", e.Type)
	}
}
