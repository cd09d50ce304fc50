package note

import (
	"errors"
	"time"
)

const noteKey = "notes.%d"

// ErrNotFound is returned when no row matches the id
var ErrNotFound = errors.New("note not found")

type Note struct {
	Id        int64
	Title     string
	Content   string
	Images    []string
	UpdatedAt time.Time
	CreatedAt time.Time
}

type cached struct {
	Id        int64    `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
	UpdatedAt int64    `json:"updatedAt"`
	CreatedAt int64    `json:"createdAt"`
}

func toCached(n Note) cached {
	return cached{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		Images:    n.Images,
		UpdatedAt: n.UpdatedAt.UnixMilli(),
		CreatedAt: n.CreatedAt.UnixMilli(),
	}
}

func (c cached) note() Note {
	return Note{
		Id:        c.Id,
		Title:     c.Title,
		Content:   c.Content,
		Images:    c.Images,
		UpdatedAt: time.UnixMilli(c.UpdatedAt).UTC(),
		CreatedAt: time.UnixMilli(c.CreatedAt).UTC(),
	}
}
