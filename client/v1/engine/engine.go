// Package engine is the client Sync Engine: it keeps the Local Store and the
// server converging through reconciliation passes, triggered by local
// mutations, change channel hints, connectivity changes and polling.
package engine

import (
	"context"
	"errors"
	"fmt"
	"github.com/ribgsilva/note-sync/client/v1/remote"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"sync"
	"time"
)

// State of the engine
type State string

const (
	Offline State = "offline"
	Idle    State = "online-idle"
	Syncing State = "online-syncing"
)

var (
	// ErrOffline is returned by Sync while the engine is offline
	ErrOffline = errors.New("sync engine is offline")
	// ErrClosed is returned once Close was called
	ErrClosed = errors.New("sync engine is closed")
	// ErrInvalid is returned by mutations missing a title or content
	ErrInvalid = errors.New("invalid note")
)

// ChannelError describes a change channel failure; the engine recovers from
// it on its own by reconnecting.
type ChannelError struct {
	Attempt int
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("change channel attempt %d: %s", e.Attempt, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Local is the Local Store as the engine uses it
type Local interface {
	List(ctx context.Context) ([]store.Note, error)
	Get(ctx context.Context, id int64) (store.Note, error)
	Put(ctx context.Context, n store.Note) error
	Delete(ctx context.Context, id int64) error
	QueryByStatus(ctx context.Context, statuses ...store.Status) ([]store.Note, error)
}

// Remote is the Remote Store and change channel as the engine uses them
type Remote interface {
	List(ctx context.Context) ([]remote.Note, error)
	Create(ctx context.Context, n remote.NewNote) (remote.Note, error)
	Update(ctx context.Context, id int64, p remote.Patch) (remote.Note, error)
	Delete(ctx context.Context, id int64) error
	Publish(ctx context.Context, descriptors []remote.Descriptor) error
	Subscribe(ctx context.Context) (*remote.Stream, error)
}

// Config of an engine. Zero durations and counts take their defaults.
type Config struct {
	Log    *zap.SugaredLogger
	Local  Local
	Remote Remote

	// ReconnectBase is the first channel reconnect delay, doubled on every failure
	ReconnectBase time.Duration
	// ReconnectAttempts is how many times a failed connect is retried before the
	// listener gives up until the next NetworkOnline
	ReconnectAttempts int
	// EchoWindow is how long hints about notes this engine published are ignored
	EchoWindow time.Duration
	// PollInterval > 0 runs a pass on every tick while online
	PollInterval time.Duration
}

const (
	defaultReconnectBase     = time.Second
	defaultReconnectAttempts = 5
	defaultEchoWindow        = 2 * time.Second
)

// Engine is safe for concurrent use
type Engine struct {
	log    *zap.SugaredLogger
	local  Local
	remote Remote
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	passes singleflight.Group

	mu         sync.Mutex
	state      State
	closed     bool
	listening  bool
	listenGen  int
	stopListen context.CancelFunc
	echoes     map[string][]time.Time
	listeners  map[int]func()
	nextListen int

	// storeMu serializes read-modify-write sequences on the Local Store
	storeMu  sync.Mutex
	inflight map[int64]bool
	lastId   int64

	now func() time.Time
}

// New returns an offline engine; call NetworkOnline to start syncing
func New(cfg Config) *Engine {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}
	if cfg.ReconnectBase <= 0 {
		cfg.ReconnectBase = defaultReconnectBase
	}
	if cfg.ReconnectAttempts <= 0 {
		cfg.ReconnectAttempts = defaultReconnectAttempts
	}
	if cfg.EchoWindow <= 0 {
		cfg.EchoWindow = defaultEchoWindow
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		log:       cfg.Log,
		local:     cfg.Local,
		remote:    cfg.Remote,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		state:     Offline,
		echoes:    make(map[string][]time.Time),
		listeners: make(map[int]func()),
		inflight:  make(map[int64]bool),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	if cfg.PollInterval > 0 {
		e.wg.Add(1)
		go e.poll(cfg.PollInterval)
	}
	return e
}

// State reports the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Listening reports whether the change channel listener is running
func (e *Engine) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listening
}

// NetworkOnline moves the engine online, (re)opens the change channel and
// runs a pass.
func (e *Engine) NetworkOnline() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.state == Offline {
		e.state = Idle
		e.log.Infow("engine", "state", Idle)
	}
	if !e.listening {
		ctx, cancel := context.WithCancel(e.ctx)
		e.stopListen = cancel
		e.listening = true
		e.listenGen++
		e.wg.Add(1)
		go e.listen(ctx, e.listenGen)
	}
	e.mu.Unlock()

	e.Trigger()
}

// NetworkOffline moves the engine offline and closes the change channel.
// An in-flight pass is left to fail on its own.
func (e *Engine) NetworkOffline() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Offline {
		e.log.Infow("engine", "state", Offline)
	}
	e.state = Offline
	e.stopListenerLocked()
}

func (e *Engine) stopListenerLocked() {
	if e.stopListen != nil {
		e.stopListen()
		e.stopListen = nil
	}
	e.listening = false
}

// OnChange registers fn to run after every Local Store change the engine
// makes. The returned func removes it.
func (e *Engine) OnChange(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextListen
	e.nextListen++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *Engine) notify() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close stops every background task and waits for them; the stores are the caller's to close
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.state = Offline
	e.stopListenerLocked()
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}
