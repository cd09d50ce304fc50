package note

import (
	"context"
	"errors"
	"github.com/ribgsilva/note-sync/persistence/v1/note"
	"sort"
)

// Find returns the note or ErrNotFound
func Find(ctx context.Context, id int64) (Note, error) {
	find, err := note.Find(ctx, id)
	if errors.Is(err, note.ErrNotFound) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, err
	}
	return fromRow(find), nil
}

// List returns every note, most recently updated first
func List(ctx context.Context) ([]Note, error) {
	rows, err := note.List(ctx)
	if err != nil {
		return nil, err
	}
	notes := make([]Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, fromRow(r))
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].Id > notes[j].Id
	})
	return notes, nil
}
