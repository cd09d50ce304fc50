package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	notesPath  = "/notes"
	syncPath   = "/notes/sync"
	healthPath = "/v1/healthcheck"
)

// Client is the Remote Store
type Client struct {
	base   string
	http   *http.Client
	stream *http.Client
}

// New returns a client for the server at baseURL. Requests are bounded by
// timeout; change streams are bounded only by their context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		stream: &http.Client{},
	}
}

// List returns every note on the server
func (c *Client) List(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, "list", http.MethodGet, notesPath, nil, &notes); err != nil {
		return nil, err
	}
	for i := range notes {
		if err := notes[i].validate(); err != nil {
			return nil, &UnavailableError{Op: "list", Status: http.StatusOK, Err: err}
		}
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// Get returns one note or ErrNotFound
func (c *Client) Get(ctx context.Context, id int64) (Note, error) {
	return c.note(ctx, "get", http.MethodGet, fmt.Sprintf("%s/%d", notesPath, id), nil)
}

// Create stores a new note and returns it with the server assigned id
func (c *Client) Create(ctx context.Context, n NewNote) (Note, error) {
	if n.Images == nil {
		n.Images = []string{}
	}
	return c.note(ctx, "create", http.MethodPost, notesPath, n)
}

// Update merges p into the note; the server creates unknown ids
func (c *Client) Update(ctx context.Context, id int64, p Patch) (Note, error) {
	return c.note(ctx, "update", http.MethodPut, fmt.Sprintf("%s/%d", notesPath, id), p)
}

// Delete removes the note, returning ErrNotFound when the server does not have it
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, fmt.Sprintf("%s/%d", notesPath, id), nil, nil)
}

// Publish sends a change hint to every client connected to the server
func (c *Client) Publish(ctx context.Context, descriptors []Descriptor) error {
	if descriptors == nil {
		descriptors = []Descriptor{}
	}
	return c.do(ctx, "publish", http.MethodPost, syncPath, descriptors, nil)
}

// Ping checks the server healthcheck
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, healthPath, nil, nil)
}

// Subscribe opens the change channel. The stream stays open until ctx is
// done, the server ends it, or it is closed.
func (c *Client) Subscribe(ctx context.Context) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+syncPath, nil)
	if err != nil {
		return nil, &UnavailableError{Op: "subscribe", Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, &UnavailableError{Op: "subscribe", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &UnavailableError{Op: "subscribe", Status: resp.StatusCode}
	}
	return NewStream(resp.Body), nil
}

func (c *Client) note(ctx context.Context, op, method, path string, body any) (Note, error) {
	var n Note
	if err := c.do(ctx, op, method, path, body, &n); err != nil {
		return Note{}, err
	}
	if err := n.validate(); err != nil {
		return Note{}, &UnavailableError{Op: op, Status: http.StatusOK, Err: err}
	}
	return n, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote %s: encode: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return &UnavailableError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &UnavailableError{Op: op, Status: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UnavailableError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
