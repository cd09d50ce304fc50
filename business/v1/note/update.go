package note

import (
	"context"
	"errors"
	"github.com/ribgsilva/note-sync/persistence/v1/note"
	"sync"
)

// writes serializes the read-modify-write paths of this process
var writes sync.Mutex

// Update merges the patch into the note; an unknown id is created with that id
func Update(ctx context.Context, id int64, p Patch) (Note, error) {
	if id <= 0 {
		return Note{}, errors.Join(ErrInvalid, errors.New("id must be positive"))
	}

	writes.Lock()
	defer writes.Unlock()

	t := now()
	row, err := note.FindNoCache(ctx, id)
	switch {
	case errors.Is(err, note.ErrNotFound):
		n := Note{Id: id, CreatedAt: t, UpdatedAt: t}
		p.Apply(&n)
		normalize(&n)
		if err := note.Insert(ctx, toRow(n)); err != nil {
			return Note{}, err
		}
		observeId(id)
		return n, nil
	case err != nil:
		return Note{}, err
	}

	n := fromRow(row)
	p.Apply(&n)
	normalize(&n)
	n.UpdatedAt = t
	if err := note.Update(ctx, toRow(n)); err != nil {
		return Note{}, err
	}
	return n, nil
}
