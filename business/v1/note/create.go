package note

import (
	"context"
	"github.com/ribgsilva/note-sync/persistence/v1/note"
)

// Create stores a new note with a server assigned id and timestamps
func Create(ctx context.Context, newN NewNote) (Note, error) {
	if err := newN.Validate(); err != nil {
		return Note{}, err
	}

	t := now()
	n := Note{
		Id:        nextId(t),
		Title:     newN.Title,
		Content:   newN.Content,
		Images:    append([]string{}, newN.Images...),
		UpdatedAt: t,
		CreatedAt: t,
	}

	writes.Lock()
	defer writes.Unlock()
	if err := note.Insert(ctx, toRow(n)); err != nil {
		return Note{}, err
	}
	return n, nil
}
