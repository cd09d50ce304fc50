package engine

import (
	"context"
	"errors"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"slices"
	"strings"
	"time"
)

// Patch lists the fields an update changes; nil fields are kept
type Patch struct {
	Title   *string
	Content *string
	Images  *[]string
}

// AddNote stores a new pending note under a provisional id and asks for a
// pass. It returns once the note is stored locally.
func (e *Engine) AddNote(ctx context.Context, title, content string, images []string) (store.Note, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return store.Note{}, errors.Join(ErrInvalid, errors.New("title and content are required"))
	}

	e.storeMu.Lock()
	t := e.now()
	n := store.Note{
		Id:         e.provisionalId(t),
		Title:      title,
		Content:    content,
		Images:     nonNil(slices.Clone(images)),
		CreatedAt:  t,
		UpdatedAt:  t,
		SyncStatus: store.Pending,
	}
	err := e.local.Put(ctx, n)
	e.storeMu.Unlock()
	if err != nil {
		return store.Note{}, err
	}

	e.notify()
	e.Trigger()
	return n, nil
}

// UpdateNote applies p to the local note, marks it pending and asks for a pass
func (e *Engine) UpdateNote(ctx context.Context, id int64, p Patch) (store.Note, error) {
	if (p.Title != nil && strings.TrimSpace(*p.Title) == "") || (p.Content != nil && strings.TrimSpace(*p.Content) == "") {
		return store.Note{}, errors.Join(ErrInvalid, errors.New("title and content cannot be blank"))
	}

	e.storeMu.Lock()
	n, err := e.local.Get(ctx, id)
	if err == nil && n.Deleted {
		err = store.ErrNotFound
	}
	if err != nil {
		e.storeMu.Unlock()
		return store.Note{}, err
	}

	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Images != nil {
		n.Images = nonNil(slices.Clone(*p.Images))
	}
	n.UpdatedAt = e.touch(n.UpdatedAt)
	n.SyncStatus = store.Pending
	err = e.local.Put(ctx, n)
	e.storeMu.Unlock()
	if err != nil {
		return store.Note{}, err
	}

	e.notify()
	e.Trigger()
	return n, nil
}

// DeleteNote hides the note locally and asks for a pass that deletes it on
// the server. Deleting an unknown or already deleted id does nothing.
func (e *Engine) DeleteNote(ctx context.Context, id int64) error {
	e.storeMu.Lock()
	n, err := e.local.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.storeMu.Unlock()
		return nil
	case err != nil:
		e.storeMu.Unlock()
		return err
	case n.Deleted:
		e.storeMu.Unlock()
		return nil
	}

	remoteCopy := !n.Provisional() || e.inflight[n.Id]
	if remoteCopy {
		n.Deleted = true
		n.UpdatedAt = e.touch(n.UpdatedAt)
		n.SyncStatus = store.Pending
		err = e.local.Put(ctx, n)
	} else {
		err = e.local.Delete(ctx, id)
	}
	e.storeMu.Unlock()
	if err != nil {
		return err
	}

	e.notify()
	if remoteCopy {
		e.Trigger()
	}
	return nil
}

// provisionalId hands out negative ids that never repeat; storeMu must be held
func (e *Engine) provisionalId(t time.Time) int64 {
	id := -t.UnixNano()
	if e.lastId != 0 && id >= e.lastId {
		id = e.lastId - 1
	}
	e.lastId = id
	return id
}

// touch returns a modification time strictly after prev
func (e *Engine) touch(prev time.Time) time.Time {
	t := e.now()
	if !t.After(prev) {
		t = prev.Add(time.Nanosecond)
	}
	return t
}

func nonNil(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
