package note

import (
	"context"
	"errors"
	"github.com/ribgsilva/note-sync/persistence/v1/note"
)

// Delete removes the note, returning ErrNotFound when it does not exist
func Delete(ctx context.Context, id int64) error {
	writes.Lock()
	defer writes.Unlock()

	if _, err := note.FindNoCache(ctx, id); err != nil {
		if errors.Is(err, note.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return note.Delete(ctx, id)
}
