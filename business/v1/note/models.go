package note

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the id is not known to the server
	ErrNotFound = errors.New("note not found")
	// ErrInvalid is returned when an input does not satisfy the note shape
	ErrInvalid = errors.New("invalid note")
)

// Note is the canonical server representation; it carries no sync status
type Note struct {
	Id        int64     `json:"id" example:"1700000000000"`
	Title     string    `json:"title" example:"my note"`
	Content   string    `json:"content" example:"my note text"`
	Images    []string  `json:"images"`
	UpdatedAt time.Time `json:"updatedAt" example:"2006-01-02T15:04:05Z"`
	CreatedAt time.Time `json:"createdAt" example:"2006-01-02T15:04:05Z"`
}

// NewNote is the input of a create; id and timestamps are assigned by the server
type NewNote struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images"`
}

// Validate checks the required fields
func (n NewNote) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return errors.Join(ErrInvalid, errors.New("title is required"))
	}
	if strings.TrimSpace(n.Content) == "" {
		return errors.Join(ErrInvalid, errors.New("content is required"))
	}
	return nil
}

// Patch is a partial note; nil fields are left untouched
type Patch struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Images  *[]string `json:"images"`
}

// Apply copies the set fields of the patch into n
func (p Patch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Images != nil {
		n.Images = append([]string{}, (*p.Images)...)
	}
}

// Descriptor is one entry of a change hint
type Descriptor struct {
	Id      int64 `json:"id"`
	Deleted bool  `json:"deleted,omitempty"`
}

// Event types accepted by the messaging worker
const (
	EventCreate = "create"
	EventUpdate = "update"
	EventDelete = "delete"
)

// Event is a note mutation arriving through the messaging worker. Data holds
// a NewNote for creates and a Patch for updates.
type Event struct {
	Type string          `json:"type"`
	Id   int64           `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func normalize(n *Note) {
	if n.Images == nil {
		n.Images = []string{}
	}
}
