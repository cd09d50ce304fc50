package note

import (
	"github.com/ribgsilva/note-sync/persistence/v1/note"
)

func fromRow(r note.Note) Note {
	n := Note(r)
	normalize(&n)
	return n
}

func toRow(n Note) note.Note {
	return note.Note(n)
}
