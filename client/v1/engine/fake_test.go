package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ribgsilva/note-sync/business/v1/broker"
	"github.com/ribgsilva/note-sync/client/v1/remote"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"go.uber.org/zap"
	"io"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeServer is an in-memory notes server shared by the engines of a test
type fakeServer struct {
	mu     sync.Mutex
	notes  map[int64]remote.Note
	nextId int64

	down          bool
	failDeletes   bool
	refuseStreams bool

	// createGate, when set, holds every Create until it is closed
	createGate    chan struct{}
	createStarted chan struct{}

	lists      int
	subscribes int

	broker *broker.Broker
}

func newFakeServer(t *testing.T) *fakeServer {
	b := broker.New(zap.NewNop().Sugar())
	b.Start()
	t.Cleanup(b.Stop)
	return &fakeServer{
		notes:         make(map[int64]remote.Note),
		nextId:        1,
		createStarted: make(chan struct{}, 16),
		broker:        b,
	}
}

func (f *fakeServer) unavailable(op string) error {
	return &remote.UnavailableError{Op: op, Err: fmt.Errorf("server down")}
}

func (f *fakeServer) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeServer) now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (f *fakeServer) put(n remote.Note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.Images == nil {
		n.Images = []string{}
	}
	f.notes[n.Id] = n
}

func (f *fakeServer) get(id int64) (remote.Note, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	return n, ok
}

func (f *fakeServer) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeServer) List(ctx context.Context) ([]remote.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, f.unavailable("list")
	}
	f.lists++
	notes := make([]remote.Note, 0, len(f.notes))
	for _, n := range f.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Id > notes[j].Id })
	return notes, nil
}

func (f *fakeServer) Create(ctx context.Context, in remote.NewNote) (remote.Note, error) {
	f.mu.Lock()
	gate := f.createGate
	f.mu.Unlock()

	select {
	case f.createStarted <- struct{}{}:
	default:
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return remote.Note{}, f.unavailable("create")
	}
	t := f.now()
	n := remote.Note{
		Id:        f.nextId,
		Title:     in.Title,
		Content:   in.Content,
		Images:    append([]string{}, in.Images...),
		CreatedAt: t,
		UpdatedAt: t,
	}
	f.nextId++
	f.notes[n.Id] = n
	return n, nil
}

func (f *fakeServer) Update(ctx context.Context, id int64, p remote.Patch) (remote.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return remote.Note{}, f.unavailable("update")
	}
	t := f.now()
	n, ok := f.notes[id]
	if !ok {
		n = remote.Note{Id: id, CreatedAt: t, Images: []string{}}
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Images != nil {
		n.Images = append([]string{}, (*p.Images)...)
	}
	n.UpdatedAt = t
	f.notes[id] = n
	return n, nil
}

func (f *fakeServer) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down || f.failDeletes {
		return f.unavailable("delete")
	}
	if _, ok := f.notes[id]; !ok {
		return remote.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeServer) Publish(ctx context.Context, descriptors []remote.Descriptor) error {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		return f.unavailable("publish")
	}
	data, err := json.Marshal(descriptors)
	if err != nil {
		return err
	}
	f.broker.Publish(broker.NotesUpdated, data)
	return nil
}

// Subscribe streams broker messages through a pipe, the way the server
// writes them on GET /notes/sync.
func (f *fakeServer) Subscribe(ctx context.Context) (*remote.Stream, error) {
	f.mu.Lock()
	f.subscribes++
	refuse := f.down || f.refuseStreams
	f.mu.Unlock()
	if refuse {
		return nil, f.unavailable("subscribe")
	}

	events := make(chan []byte, 64)
	unsubscribe, err := f.broker.Subscribe(broker.NotesUpdated, func(m broker.Message) error {
		select {
		case events <- m.Data:
			return nil
		default:
			return fmt.Errorf("slow consumer")
		}
	})
	if err != nil {
		return nil, f.unavailable("subscribe")
	}

	pr, pw := io.Pipe()
	done := f.broker.Done()
	go func() {
		defer unsubscribe()
		if _, err := fmt.Fprint(pw, "data: connected\n\n"); err != nil {
			return
		}
		for {
			select {
			case data := <-events:
				if _, err := fmt.Fprintf(pw, "data: %s\n\n", data); err != nil {
					return
				}
			case <-done:
				_ = pw.Close()
				return
			case <-ctx.Done():
				_ = pw.CloseWithError(ctx.Err())
				return
			}
		}
	}()
	return remote.NewStream(pr), nil
}

// restartStreams ends every open stream, as a server restart would
func (f *fakeServer) restartStreams() {
	f.broker.Stop()
	f.broker.Start()
}

func (f *fakeServer) subscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes
}

type client struct {
	engine *Engine
	local  *store.Store
}

func newClient(t *testing.T, srv *fakeServer, cfg Config) client {
	local, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Test newClient: Should open the local store: %v", err)
	}
	cfg.Local = local
	cfg.Remote = srv
	if cfg.ReconnectBase == 0 {
		cfg.ReconnectBase = 10 * time.Millisecond
	}
	e := New(cfg)
	t.Cleanup(func() {
		e.Close()
		_ = local.Close()
	})
	return client{engine: e, local: local}
}

func (c client) notes(t *testing.T) []store.Note {
	notes, err := c.local.List(context.Background())
	if err != nil {
		t.Fatalf("Test notes: Should list local notes: %v", err)
	}
	return notes
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Test waitFor: Should %s in time", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
