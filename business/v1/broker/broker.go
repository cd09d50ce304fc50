// Package broker fans change hints out to every connected change stream.
//
// Delivery is at-most-once and best effort: nothing is queued or retried, and
// a subscriber that fails a delivery is dropped from the registry.
package broker

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"sync"
)

// MessageType keys the registry.
type MessageType string

// NotesUpdated is the only hint the server publishes.
const NotesUpdated MessageType = "NOTES_UPDATED"

// ErrStopped is returned by Subscribe when the broker is not running.
var ErrStopped = errors.New("broker is not running")

// Message is what a subscriber receives.
type Message struct {
	Type MessageType
	Data []byte
}

// Callback receives a message. Returning an error evicts the subscriber.
type Callback func(Message) error

type subscriber struct {
	id string
	cb Callback
}

// Broker is a process wide publish/subscribe registry with an explicit lifecycle.
type Broker struct {
	log *zap.SugaredLogger

	mu      sync.RWMutex
	subs    map[MessageType]map[string]Callback
	running bool
	done    chan struct{}
}

// New returns a stopped broker.
func New(log *zap.SugaredLogger) *Broker {
	done := make(chan struct{})
	close(done)
	return &Broker{
		log:  log,
		subs: make(map[MessageType]map[string]Callback),
		done: done,
	}
}

// Start makes the broker accept subscriptions.
func (b *Broker) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return
	}
	b.running = true
	b.done = make(chan struct{})
	b.log.Infow("broker", "status", "started")
}

// Stop drops every subscriber and closes Done.
func (b *Broker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}
	b.running = false
	b.subs = make(map[MessageType]map[string]Callback)
	close(b.done)
	b.log.Infow("broker", "status", "stopped")
}

// Done is closed when the broker stops.
func (b *Broker) Done() <-chan struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.done
}

// Subscribe registers cb for t. The returned func unsubscribes and is safe to call twice.
func (b *Broker) Subscribe(t MessageType, cb Callback) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil, ErrStopped
	}
	id := uuid.NewString()
	typed, ok := b.subs[t]
	if !ok {
		typed = make(map[string]Callback)
		b.subs[t] = typed
	}
	typed[id] = cb
	b.log.Debugw("broker", "subscribed", id, "type", t, "total", b.countLocked())

	return func() { b.remove(t, id) }, nil
}

// Publish delivers data to every current subscriber of t and returns how many took it.
func (b *Broker) Publish(t MessageType, data []byte) int {
	b.mu.RLock()
	snapshot := make([]subscriber, 0, len(b.subs[t]))
	for id, cb := range b.subs[t] {
		snapshot = append(snapshot, subscriber{id: id, cb: cb})
	}
	b.mu.RUnlock()

	msg := Message{Type: t, Data: data}
	delivered := 0
	for _, s := range snapshot {
		if err := deliver(s.cb, msg); err != nil {
			b.log.Infow("broker", "evicted", s.id, "type", t, "ERROR", err)
			b.remove(t, s.id)
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of registered subscribers.
func (b *Broker) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countLocked()
}

func (b *Broker) countLocked() int {
	total := 0
	for _, typed := range b.subs {
		total += len(typed)
	}
	return total
}

func (b *Broker) remove(t MessageType, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	typed, ok := b.subs[t]
	if !ok {
		return
	}
	delete(typed, id)
	if len(typed) == 0 {
		delete(b.subs, t)
	}
}

func deliver(cb Callback, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return cb(msg)
}
