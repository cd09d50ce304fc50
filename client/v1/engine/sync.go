package engine

import (
	"context"
	"errors"
	"github.com/ribgsilva/note-sync/client/v1/remote"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"slices"
)

const passKey = "pass"

// Sync runs a reconciliation pass and waits for it. When a pass is already in
// flight it waits for that one instead of starting another.
func (e *Engine) Sync(ctx context.Context) error {
	ch := e.passes.DoChan(passKey, func() (any, error) {
		return nil, e.pass(e.ctx)
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger asks for a pass without waiting for it; it does nothing while offline
func (e *Engine) Trigger() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.state == Offline {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := e.Sync(e.ctx)
		switch {
		case err == nil, errors.Is(err, ErrOffline), errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
		default:
			e.log.Errorw("sync", "status", "pass failed", "ERROR", err)
		}
	}()
}

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.closed:
		return ErrClosed
	case e.state == Offline:
		return ErrOffline
	}
	e.wg.Add(1)
	e.state = Syncing
	return nil
}

func (e *Engine) end() {
	e.mu.Lock()
	if e.state == Syncing {
		e.state = Idle
	}
	e.mu.Unlock()
	e.wg.Done()
}

func (e *Engine) pass(ctx context.Context) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()
	defer e.notify()

	unconfirmed, err := e.local.QueryByStatus(ctx, store.Pending, store.Failed)
	if err != nil {
		return err
	}

	hint := make([]remote.Descriptor, 0, len(unconfirmed))
	for _, n := range unconfirmed {
		if d, ok := e.push(ctx, n); ok {
			hint = append(hint, d)
		}
	}
	if len(hint) > 0 {
		e.remember(hint)
		if err := e.remote.Publish(ctx, hint); err != nil {
			e.log.Infow("sync", "status", "hint not published", "ERROR", err)
		}
	}

	notes, err := e.remote.List(ctx)
	if err != nil {
		return err
	}
	if err := e.merge(ctx, notes); err != nil {
		return err
	}

	e.log.Debugw("sync", "status", "pass done", "pushed", len(hint), "pulled", len(notes))
	return nil
}

// push sends one unconfirmed note to the server. The returned descriptor is
// set when the server accepted it.
func (e *Engine) push(ctx context.Context, n store.Note) (remote.Descriptor, bool) {
	switch {
	case n.Deleted && n.Provisional():
		// never reached the server
		e.settle(ctx, n, func(store.Note) error {
			return e.local.Delete(ctx, n.Id)
		})
		return remote.Descriptor{}, false
	case n.Deleted:
		return e.pushDelete(ctx, n)
	case n.Provisional():
		return e.pushCreate(ctx, n)
	default:
		return e.pushUpdate(ctx, n)
	}
}

func (e *Engine) pushCreate(ctx context.Context, n store.Note) (remote.Descriptor, bool) {
	// the note may have been edited or dropped since the pass read it
	e.storeMu.Lock()
	cur, err := e.local.Get(ctx, n.Id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.storeMu.Unlock()
		return remote.Descriptor{}, false
	case err != nil:
		e.storeMu.Unlock()
		e.log.Errorw("sync", "status", "could not reload note", "id", n.Id, "ERROR", err)
		return remote.Descriptor{}, false
	case cur.Deleted:
		e.storeMu.Unlock()
		return e.push(ctx, cur)
	}
	n = cur
	e.inflight[n.Id] = true
	e.storeMu.Unlock()

	created, err := e.remote.Create(ctx, remote.NewNote{
		Title:   n.Title,
		Content: n.Content,
		Images:  n.Images,
	})

	e.storeMu.Lock()
	d, ok, gone := e.landCreate(ctx, n, created, err)
	e.storeMu.Unlock()
	if gone != nil {
		return e.pushDelete(ctx, *gone)
	}
	return d, ok
}

// landCreate stores the outcome of a create; storeMu must be held. A note
// deleted or dropped locally while its create was in flight is returned as a
// tombstone under the server id, to be deleted there in the same pass.
func (e *Engine) landCreate(ctx context.Context, n store.Note, created remote.Note, err error) (remote.Descriptor, bool, *store.Note) {
	delete(e.inflight, n.Id)

	cur, gerr := e.local.Get(ctx, n.Id)
	if gerr != nil {
		if !errors.Is(gerr, store.ErrNotFound) {
			e.log.Errorw("sync", "status", "could not reload note", "id", n.Id, "ERROR", gerr)
			return remote.Descriptor{}, false, nil
		}
		if err != nil {
			return remote.Descriptor{}, false, nil
		}
		gone := synced(created)
		gone.Deleted = true
		gone.UpdatedAt = e.touch(gone.UpdatedAt)
		gone.SyncStatus = store.Pending
		if perr := e.local.Put(ctx, gone); perr != nil {
			e.log.Errorw("sync", "status", "could not store note", "id", gone.Id, "ERROR", perr)
			return remote.Descriptor{}, false, nil
		}
		return remote.Descriptor{}, false, &gone
	}

	if err != nil {
		e.log.Infow("sync", "status", "create failed", "id", n.Id, "ERROR", err)
		if cur.Deleted {
			e.deleteLog(ctx, n.Id)
			return remote.Descriptor{}, false, nil
		}
		if unchanged(cur, n) {
			cur.SyncStatus = store.Failed
			e.putLog(ctx, cur)
		}
		return remote.Descriptor{}, false, nil
	}

	// the provisional record moves to the server id either way
	e.deleteLog(ctx, n.Id)
	if unchanged(cur, n) {
		e.putLog(ctx, synced(created))
	} else {
		cur.Id = created.Id
		cur.CreatedAt = created.CreatedAt
		cur.SyncStatus = store.Pending
		e.putLog(ctx, cur)
		if cur.Deleted {
			return remote.Descriptor{}, false, &cur
		}
	}
	return remote.Descriptor{Id: created.Id}, true, nil
}

func (e *Engine) pushUpdate(ctx context.Context, n store.Note) (remote.Descriptor, bool) {
	images := slices.Clone(n.Images)
	updated, err := e.remote.Update(ctx, n.Id, remote.Patch{
		Title:   &n.Title,
		Content: &n.Content,
		Images:  &images,
	})
	if err != nil {
		e.log.Infow("sync", "status", "update failed", "id", n.Id, "ERROR", err)
		e.settle(ctx, n, func(cur store.Note) error {
			cur.SyncStatus = store.Failed
			return e.local.Put(ctx, cur)
		})
		return remote.Descriptor{}, false
	}

	e.settle(ctx, n, func(store.Note) error {
		return e.local.Put(ctx, synced(updated))
	})
	return remote.Descriptor{Id: n.Id}, true
}

func (e *Engine) pushDelete(ctx context.Context, n store.Note) (remote.Descriptor, bool) {
	err := e.remote.Delete(ctx, n.Id)
	if err != nil && !errors.Is(err, remote.ErrNotFound) {
		e.log.Infow("sync", "status", "delete failed, restoring note", "id", n.Id, "ERROR", err)
		e.settle(ctx, n, func(cur store.Note) error {
			cur.Deleted = false
			cur.SyncStatus = store.Pending
			return e.local.Put(ctx, cur)
		})
		return remote.Descriptor{}, false
	}

	e.settle(ctx, n, func(store.Note) error {
		return e.local.Delete(ctx, n.Id)
	})
	return remote.Descriptor{Id: n.Id, Deleted: true}, true
}

// settle applies fn to the current local copy of n, unless the note was
// changed locally after the push started; that newer intent stays pending.
func (e *Engine) settle(ctx context.Context, n store.Note, fn func(cur store.Note) error) {
	e.storeMu.Lock()
	defer e.storeMu.Unlock()

	cur, err := e.local.Get(ctx, n.Id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return
	case err != nil:
		e.log.Errorw("sync", "status", "could not reload note", "id", n.Id, "ERROR", err)
		return
	case !unchanged(cur, n):
		return
	}
	if err := fn(cur); err != nil {
		e.log.Errorw("sync", "status", "could not settle note", "id", n.Id, "ERROR", err)
	}
}

// merge folds the server list into the Local Store: unconfirmed local intent
// wins, other notes take the server copy unless it is older than the local
// synced one, and synced notes the server no longer has are dropped.
func (e *Engine) merge(ctx context.Context, notes []remote.Note) error {
	e.storeMu.Lock()
	defer e.storeMu.Unlock()

	locals, err := e.local.List(ctx)
	if err != nil {
		return err
	}
	byId := make(map[int64]store.Note, len(locals))
	for _, l := range locals {
		byId[l.Id] = l
	}

	onServer := make(map[int64]bool, len(notes))
	for _, s := range notes {
		onServer[s.Id] = true

		l, ok := byId[s.Id]
		if ok {
			if l.Unconfirmed() {
				continue
			}
			if s.UpdatedAt.Before(l.UpdatedAt) || same(l, s) {
				continue
			}
		}
		if err := e.local.Put(ctx, synced(s)); err != nil {
			return err
		}
	}

	for _, l := range locals {
		if l.SyncStatus == store.Synced && !onServer[l.Id] {
			if err := e.local.Delete(ctx, l.Id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) putLog(ctx context.Context, n store.Note) {
	if err := e.local.Put(ctx, n); err != nil {
		e.log.Errorw("sync", "status", "could not store note", "id", n.Id, "ERROR", err)
	}
}

func (e *Engine) deleteLog(ctx context.Context, id int64) {
	if err := e.local.Delete(ctx, id); err != nil {
		e.log.Errorw("sync", "status", "could not delete note", "id", id, "ERROR", err)
	}
}

func synced(n remote.Note) store.Note {
	return store.Note{
		Id:         n.Id,
		Title:      n.Title,
		Content:    n.Content,
		Images:     slices.Clone(n.Images),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		SyncStatus: store.Synced,
	}
}

// unchanged reports whether cur is still the snapshot a push started from
func unchanged(cur, snapshot store.Note) bool {
	return cur.UpdatedAt.Equal(snapshot.UpdatedAt) && cur.Deleted == snapshot.Deleted
}

func same(l store.Note, s remote.Note) bool {
	return !l.Deleted &&
		l.Title == s.Title &&
		l.Content == s.Content &&
		l.UpdatedAt.Equal(s.UpdatedAt) &&
		l.CreatedAt.Equal(s.CreatedAt) &&
		slices.Equal(l.Images, s.Images)
}
