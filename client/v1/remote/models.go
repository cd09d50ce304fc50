// Package remote talks to the notes server: the record store endpoints and
// the change channel stream.
package remote

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when the server does not know the id
	ErrNotFound = errors.New("note not found on server")
	// ErrInvalidNote is returned when the server sends a note that misses required fields
	ErrInvalidNote = errors.New("invalid note in server response")
)

// Note is the server representation of a note
type Note struct {
	Id        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNote is the body of a create
type NewNote struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// Patch is the body of an update; nil fields are left untouched by the server
type Patch struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Images  *[]string `json:"images,omitempty"`
}

// Descriptor is one entry of a change hint
type Descriptor struct {
	Id      int64 `json:"id"`
	Deleted bool  `json:"deleted,omitempty"`
}

// UnavailableError is returned when the server could not be reached or
// answered with a status other than success or not found.
type UnavailableError struct {
	Op     string
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote %s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("remote %s: status %d", e.Op, e.Status)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (n *Note) validate() error {
	if n.Id <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidNote, n.Id)
	}
	if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamps on %d", ErrInvalidNote, n.Id)
	}
	if n.Images == nil {
		n.Images = []string{}
	}
	return nil
}
