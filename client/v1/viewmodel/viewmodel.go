// Package viewmodel holds the UI-facing list of notes. It mirrors the Local
// Store and forwards every mutation to the Sync Engine.
package viewmodel

import (
	"context"
	"github.com/ribgsilva/note-sync/client/v1/engine"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"go.uber.org/zap"
	"slices"
	"sort"
	"sync"
)

// Engine is the part of the Sync Engine the model forwards to
type Engine interface {
	AddNote(ctx context.Context, title, content string, images []string) (store.Note, error)
	UpdateNote(ctx context.Context, id int64, p engine.Patch) (store.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	Trigger()
	OnChange(fn func()) func()
}

// Lister reads the Local Store
type Lister interface {
	List(ctx context.Context) ([]store.Note, error)
}

// Model is safe for concurrent use
type Model struct {
	log    *zap.SugaredLogger
	engine Engine
	local  Lister
	stop   func()

	mu        sync.Mutex
	notes     []store.Note
	selected  int64
	hasSel    bool
	listeners map[int]func([]store.Note)
	nextId    int
}

// New returns a model that re-reads the Local Store on every engine change
func New(log *zap.SugaredLogger, e Engine, local Lister) *Model {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &Model{
		log:       log,
		engine:    e,
		local:     local,
		notes:     []store.Note{},
		listeners: make(map[int]func([]store.Note)),
	}
	m.stop = e.OnChange(func() {
		if err := m.reload(context.Background()); err != nil {
			m.log.Errorw("viewmodel", "status", "reload failed", "ERROR", err)
		}
	})
	return m
}

// Close stops following the engine
func (m *Model) Close() {
	m.stop()
}

// Fetch reloads the list from the Local Store and asks the engine for a pass
func (m *Model) Fetch(ctx context.Context) ([]store.Note, error) {
	if err := m.reload(ctx); err != nil {
		return nil, err
	}
	m.engine.Trigger()
	return m.Notes(), nil
}

// Create adds a note
func (m *Model) Create(ctx context.Context, title, content string, images []string) (store.Note, error) {
	return m.engine.AddNote(ctx, title, content, images)
}

// Update changes a note
func (m *Model) Update(ctx context.Context, id int64, p engine.Patch) (store.Note, error) {
	return m.engine.UpdateNote(ctx, id, p)
}

// Delete removes a note
func (m *Model) Delete(ctx context.Context, id int64) error {
	return m.engine.DeleteNote(ctx, id)
}

// Select marks the note currently viewed
func (m *Model) Select(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = id
	m.hasSel = true
}

// Unselect clears the selection
func (m *Model) Unselect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasSel = false
}

// Selected returns the selected note while it is still in the list
func (m *Model) Selected() (store.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasSel {
		return store.Note{}, false
	}
	for _, n := range m.notes {
		if n.Id == m.selected {
			return n, true
		}
	}
	return store.Note{}, false
}

// Notes returns the visible notes, most recently updated first
func (m *Model) Notes() []store.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.notes)
}

// OnUpdate registers fn to receive the list every time it is re-derived
func (m *Model) OnUpdate(fn func([]store.Note)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextId
	m.nextId++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Model) reload(ctx context.Context) error {
	all, err := m.local.List(ctx)
	if err != nil {
		return err
	}

	visible := make([]store.Note, 0, len(all))
	for _, n := range all {
		if !n.Deleted {
			visible = append(visible, n)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if !visible[i].UpdatedAt.Equal(visible[j].UpdatedAt) {
			return visible[i].UpdatedAt.After(visible[j].UpdatedAt)
		}
		return visible[i].Id > visible[j].Id
	})

	m.mu.Lock()
	m.notes = visible
	fns := make([]func([]store.Note), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(slices.Clone(visible))
	}
	return nil
}
