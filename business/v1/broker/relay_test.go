package broker

import (
	"context"
	"go.uber.org/zap"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"
	"testing"
	"time"
)

func TestRelayCrossesInstances(t *testing.T) {
	log := zap.NewNop().Sugar()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := mempubsub.NewTopic()
	defer func() {
		_ = topic.Shutdown(context.Background())
	}()

	newInstance := func() (*Broker, *Relay, *pubsub.Subscription) {
		b := New(log)
		b.Start()
		t.Cleanup(b.Stop)
		sub := mempubsub.NewSubscription(topic, time.Second)
		r := NewRelay(log, b, topic, sub)
		go func() {
			_ = r.Run(ctx)
		}()
		return b, r, sub
	}

	local, relay, localSub := newInstance()
	remote, _, remoteSub := newInstance()
	defer func() {
		_ = localSub.Shutdown(context.Background())
		_ = remoteSub.Shutdown(context.Background())
	}()

	localGot := make(chan string, 1)
	remoteGot := make(chan string, 1)
	_, _ = local.Subscribe(NotesUpdated, func(m Message) error { localGot <- string(m.Data); return nil })
	_, _ = remote.Subscribe(NotesUpdated, func(m Message) error { remoteGot <- string(m.Data); return nil })

	if err := relay.Forward(ctx, NotesUpdated, []byte(`[{"id":7,"deleted":true}]`)); err != nil {
		t.Fatalf("Test relay: Should forward: %v", err)
	}

	select {
	case got := <-remoteGot:
		if got != `[{"id":7,"deleted":true}]` {
			t.Fatalf("Test relay: remote instance got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Test relay: remote instance never received the hint")
	}

	select {
	case got := <-localGot:
		t.Fatalf("Test relay: origin instance should skip its own hint, got %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}
