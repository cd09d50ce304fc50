package viewmodel

import (
	"context"
	"github.com/ribgsilva/note-sync/client/v1/engine"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"testing"
	"time"
)

func setup(t *testing.T) (*Model, *store.Store) {
	local, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// offline and without a remote: every mutation stays local
	e := engine.New(engine.Config{Local: local})
	m := New(nil, e, local)
	t.Cleanup(func() {
		m.Close()
		e.Close()
		_ = local.Close()
	})
	return m, local
}

func TestCreateShowsNote(t *testing.T) {
	m, _ := setup(t)

	var updates int
	m.OnUpdate(func([]store.Note) { updates++ })

	if _, err := m.Create(context.Background(), "A", "x", nil); err != nil {
		t.Fatalf("Test TestCreateShowsNote: Should create: %v", err)
	}
	notes := m.Notes()
	if len(notes) != 1 || notes[0].Title != "A" || notes[0].SyncStatus != store.Pending {
		t.Fatalf("Test TestCreateShowsNote: Should list the pending note: %+v", notes)
	}
	if updates != 1 {
		t.Fatalf("Test TestCreateShowsNote: Should notify once: %d", updates)
	}
}

func TestOrderAndTombstones(t *testing.T) {
	ctx := context.Background()
	m, local := setup(t)

	at := time.Now().UTC()
	for _, n := range []store.Note{
		{Id: 1, Title: "old", Content: "c", CreatedAt: at, UpdatedAt: at, SyncStatus: store.Synced},
		{Id: 2, Title: "tie", Content: "c", CreatedAt: at, UpdatedAt: at, SyncStatus: store.Synced},
		{Id: 3, Title: "new", Content: "c", CreatedAt: at, UpdatedAt: at.Add(time.Second), SyncStatus: store.Synced},
		{Id: 4, Title: "gone", Content: "c", CreatedAt: at, UpdatedAt: at.Add(time.Hour), SyncStatus: store.Pending, Deleted: true},
	} {
		if err := local.Put(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	notes, err := m.Fetch(ctx)
	if err != nil {
		t.Fatalf("Test TestOrderAndTombstones: Should fetch: %v", err)
	}
	want := []int64{3, 2, 1}
	if len(notes) != len(want) {
		t.Fatalf("Test TestOrderAndTombstones: Should hide tombstones: %+v", notes)
	}
	for i, id := range want {
		if notes[i].Id != id {
			t.Fatalf("Test TestOrderAndTombstones: Should sort by updatedAt then id desc, at %d got %d", i, notes[i].Id)
		}
	}
}

func TestUpdateDeleteSelect(t *testing.T) {
	ctx := context.Background()
	m, _ := setup(t)

	n, err := m.Create(ctx, "A", "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	m.Select(n.Id)
	if got, ok := m.Selected(); !ok || got.Id != n.Id {
		t.Fatalf("Test TestUpdateDeleteSelect: Should return the selected note: %+v %v", got, ok)
	}

	title := "B"
	if _, err := m.Update(ctx, n.Id, engine.Patch{Title: &title}); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Selected(); got.Title != "B" {
		t.Fatalf("Test TestUpdateDeleteSelect: Should reflect the update: %+v", got)
	}

	if err := m.Delete(ctx, n.Id); err != nil {
		t.Fatal(err)
	}
	if len(m.Notes()) != 0 {
		t.Fatalf("Test TestUpdateDeleteSelect: Should hide the deleted note: %+v", m.Notes())
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("Test TestUpdateDeleteSelect: Should drop the selection of a deleted note")
	}

	m.Unselect()
	if _, ok := m.Selected(); ok {
		t.Fatalf("Test TestUpdateDeleteSelect: Should have no selection")
	}
}
