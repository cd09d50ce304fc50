// Package store is the client's Local Store: every note the client knows
// about, tagged with how far it got in reaching the server.
package store

import (
	"errors"
	"fmt"
	"time"
)

// Status is the sync status of a local note
type Status string

const (
	// Pending notes carry local intent the server has not confirmed yet
	Pending Status = "pending"
	// Synced notes match the last server copy seen
	Synced Status = "synced"
	// Failed notes could not be pushed on the last attempt
	Failed Status = "failed"
)

// ErrNotFound is returned by Get for unknown ids
var ErrNotFound = errors.New("note not found locally")

// Note is the local record of a note. Ids below zero are provisional ones
// handed out before the server assigned the real id.
type Note struct {
	Id         int64
	Title      string
	Content    string
	Images     []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncStatus Status
	// Deleted marks a tombstone: a delete the server has not confirmed yet
	Deleted bool
}

// Provisional reports whether the server has not assigned an id yet
func (n Note) Provisional() bool {
	return n.Id < 0
}

// Unconfirmed reports whether the note carries intent the server has not accepted
func (n Note) Unconfirmed() bool {
	return n.SyncStatus == Pending || n.SyncStatus == Failed
}

// PersistenceError wraps any failure of the underlying database
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("local store %s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func fail(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
