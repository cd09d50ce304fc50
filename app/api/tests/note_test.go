package tests

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/ribgsilva/note-sync/app/api/handlers"
	"github.com/ribgsilva/note-sync/app/api/handlers/v1/changes"
	"github.com/ribgsilva/note-sync/business/v1/broker"
	"github.com/ribgsilva/note-sync/business/v1/note"
	"github.com/ribgsilva/note-sync/persistence/v1/schema"
	"github.com/ribgsilva/note-sync/platform/env"
	"github.com/ribgsilva/note-sync/platform/logger"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"github.com/ribgsilva/note-sync/sys"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/proullon/ramsql/driver"
)

type NoteTests struct {
	app    http.Handler
	cache  *miniredis.Miniredis
	broker *broker.Broker
}

// setupResources points sys at a ramsql database and a miniredis cache.
func setupResources(t *testing.T, dsn string) *miniredis.Miniredis {
	log, err := logger.New("Note-API-Tests")
	if err != nil {
		t.Fatal(err)
	}
	gin.SetMode(gin.TestMode)

	// =======================================================================================================
	// Mocks

	// miniredis
	s := miniredis.RunT(t)

	// =======================================================================================================
	// Setup configs
	sys.Configs.Database.PingTimeout = env.DurationDefault(log, "DATABASE_PING_TIMEOUT", "2s")
	sys.Configs.Database.OperationTimeout = env.DurationDefault(log, "DATABASE_OPERATION_TIMEOUT", "5s")
	sys.Configs.Cache.ConnectionURL = s.Addr()
	sys.Configs.Cache.PingTimeout = env.DurationDefault(log, "CACHE_PING_TIMEOUT", "2s")
	sys.Configs.Cache.OperationTimeout = env.DurationDefault(log, "CACHE_OPERATION_TIMEOUT", "10s")
	sys.Configs.Cache.CacheTTL = env.DurationDefault(log, "CACHE_CACHE_TTL", "24h")

	// =======================================================================================================
	// Setup resources

	// logger
	sys.R.Log = log

	// ramsql
	var db *sql.DB
	if err := func() error {
		ramDb, err := sql.Open("ramsql", dsn)
		if err != nil {
			return fmt.Errorf("error to connecto to database: %w", err)
		}
		dbCtx, dbCancel := context.WithTimeout(context.Background(), sys.Configs.Database.PingTimeout)
		defer dbCancel()
		if err := ramDb.PingContext(dbCtx); err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
		db = ramDb
		return nil
	}(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	sys.R.Database = db

	// redis
	rdb := redis.NewClient(&redis.Options{Addr: sys.Configs.Cache.ConnectionURL})
	rdsCtx, rdsCancel := context.WithTimeout(context.Background(), sys.Configs.Cache.PingTimeout)
	defer rdsCancel()
	if err := rdb.Ping(rdsCtx).Err(); err != nil {
		t.Fatalf("could not connect to redis: %s", err)
	}
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	sys.R.Cache = rdb

	// =======================================================================================================
	// Database setup

	if err := schema.Create(context.Background()); err != nil {
		t.Fatalf("sql.Exec: Error: %s\n", err)
	}
	t.Cleanup(func() {
		_ = schema.Drop(context.Background())
	})

	return s
}

func newNoteTests(t *testing.T, dsn string) NoteTests {
	s := setupResources(t, dsn)

	b := broker.New(sys.R.Log)
	b.Start()
	t.Cleanup(b.Stop)

	engine := gin.New()
	handlers.MapDefaults(engine)
	handlers.MapApi(engine, changes.Handlers{Log: sys.R.Log, Broker: b})

	return NoteTests{app: engine, cache: s, broker: b}
}

func TestNote(t *testing.T) {
	tests := newNoteTests(t, "NoteTest")

	// =======================================================================================================
	// Run tests

	tests.healthcheck200(t)
	tests.listNotes200Empty(t)

	created := tests.createNote200(t)
	tests.createNote400(t)

	tests.getNote200(t, created)
	if !tests.cache.Exists(fmt.Sprintf("notes.%d", created.Id)) {
		t.Fatalf("notes %d not in cache", created.Id)
	}
	tests.getNote200(t, created)
	tests.getNote404(t)
	tests.getNote400(t)

	tests.updateNote200(t, created)
	if tests.cache.Exists(fmt.Sprintf("notes.%d", created.Id)) {
		t.Fatalf("notes %d should have been evicted after update", created.Id)
	}
	tests.updateNote200Upsert(t)

	second := tests.createNote200(t)
	tests.listNotes200Ordered(t, second.Id)

	tests.deleteNote200(t, created.Id)
	tests.deleteNote404(t, created.Id)
	tests.getNote404Deleted(t, created.Id)
}

func (nt *NoteTests) do(method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	nt.app.ServeHTTP(w, r)
	return w
}

func (nt *NoteTests) healthcheck200(t *testing.T) {
	w := nt.do(http.MethodGet, "/v1/healthcheck", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Test healthcheck200: Should receive a status code of 200 for the response : %v", w.Code)
	}
}

func (nt *NoteTests) listNotes200Empty(t *testing.T) {
	w := nt.do(http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Test listNotes200Empty: Should receive a status code of 200 for the response : %v", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("Test listNotes200Empty: Should have received an empty array: %s", body)
	}
}

func (nt *NoteTests) createNote200(t *testing.T) note.Note {
	w := nt.do(http.MethodPost, "/notes", map[string]any{
		"title":   "my note",
		"content": "my note text",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Test createNote200: Should receive a status code of 200 for the response : %v", w.Code)
	}

	var resp note.Note
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Test createNote200: Should be able to unmarshal the response : %v", err)
	}
	if resp.Id <= 0 {
		t.Fatalf("Test createNote200: Should have received a positive id in the response: %v", resp)
	}
	if resp.Title != "my note" || resp.Content != "my note text" {
		t.Fatalf("Test createNote200: Should have received the posted fields in the response: %v", resp)
	}
	if resp.Images == nil || len(resp.Images) != 0 {
		t.Fatalf("Test createNote200: Should have received an empty images list: %v", resp)
	}
	if resp.CreatedAt.IsZero() || !resp.CreatedAt.Equal(resp.UpdatedAt) {
		t.Fatalf("Test createNote200: Should have received equal creation and update times: %v", resp)
	}
	return resp
}

func (nt *NoteTests) createNote400(t *testing.T) {
	w := nt.do(http.MethodPost, "/notes", map[string]any{"title": "no content"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Test createNote400: Should receive a status code of 400 for the response : %v", w.Code)
	}
	var resp handler.Error
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Message == "" {
		t.Fatalf("Test createNote400: Should have received an error message: %v", err)
	}
}

func (nt *NoteTests) getNote200(t *testing.T, want note.Note) {
	w := nt.do(http.MethodGet, fmt.Sprintf("/notes/%d", want.Id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Test getNote200: Should receive a status code of 200 for the response : %v", w.Code)
	}

	var resp note.Note
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Test getNote200: Should be able to unmarshal the response : %v", err)
	}
	if resp.Id != want.Id {
		t.Fatalf("Test getNote200: Should have received %d as id in the response: %v", want.Id, resp)
	}
	if resp.Title != want.Title || resp.Content != want.Content {
		t.Fatalf("Test getNote200: Should have received the stored fields in the response: %v", resp)
	}
	if !resp.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("Test getNote200: Should have received %s as updatedAt: %s", want.UpdatedAt, resp.UpdatedAt)
	}
}

func (nt *NoteTests) getNote404(t *testing.T) {
	w := nt.do(http.MethodGet, "/notes/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Test getNote404: Should receive a status code of 404 for the response : %v", w.Code)
	}
}

func (nt *NoteTests) getNote400(t *testing.T) {
	w := nt.do(http.MethodGet, "/notes/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Test getNote400: Should receive a status code of 400 for the response : %v", w.Code)
	}
}

func (nt *NoteTests) updateNote200(t *testing.T, n note.Note) {
	time.Sleep(2 * time.Millisecond)
	w := nt.do(http.MethodPut, fmt.Sprintf("/notes/%d", n.Id), map[string]any{"title": "renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("Test updateNote200: Should receive a status code of 200 for the response : %v", w.Code)
	}

	var resp note.Note
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Test updateNote200: Should be able to unmarshal the response : %v", err)
	}
	if resp.Title != "renamed" {
		t.Fatalf("Test updateNote200: Should have received \"renamed\" as title: %v", resp)
	}
	if resp.Content != n.Content {
		t.Fatalf("Test updateNote200: Should have kept the content untouched: %v", resp)
	}
	if !resp.UpdatedAt.After(n.UpdatedAt) {
		t.Fatalf("Test updateNote200: Should have advanced updatedAt: %s <= %s", resp.UpdatedAt, n.UpdatedAt)
	}
	if !resp.CreatedAt.Equal(n.CreatedAt) {
		t.Fatalf("Test updateNote200: Should have kept createdAt: %s != %s", resp.CreatedAt, n.CreatedAt)
	}
}

func (nt *NoteTests) updateNote200Upsert(t *testing.T) {
	w := nt.do(http.MethodPut, "/notes/5", map[string]any{"title": "x", "content": "y"})
	if w.Code != http.StatusOK {
		t.Fatalf("Test updateNote200Upsert: Should receive a status code of 200 for the response : %v", w.Code)
	}
	var resp note.Note
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Test updateNote200Upsert: Should be able to unmarshal the response : %v", err)
	}
	if resp.Id != 5 || resp.Title != "x" || resp.Content != "y" {
		t.Fatalf("Test updateNote200Upsert: Should have created note 5: %v", resp)
	}

	w = nt.do(http.MethodGet, "/notes/5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Test updateNote200Upsert: Should find the upserted note : %v", w.Code)
	}
}

func (nt *NoteTests) listNotes200Ordered(t *testing.T, newest int64) {
	w := nt.do(http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Test listNotes200Ordered: Should receive a status code of 200 for the response : %v", w.Code)
	}
	var resp []note.Note
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Test listNotes200Ordered: Should be able to unmarshal the response : %v", err)
	}
	if len(resp) != 3 {
		t.Fatalf("Test listNotes200Ordered: Should have received 3 notes: %v", resp)
	}
	if resp[0].Id != newest {
		t.Fatalf("Test listNotes200Ordered: Should have received %d first: %v", newest, resp)
	}
	for i := 1; i < len(resp); i++ {
		if resp[i].UpdatedAt.After(resp[i-1].UpdatedAt) {
			t.Fatalf("Test listNotes200Ordered: Should be sorted by updatedAt desc: %v", resp)
		}
	}
}

func (nt *NoteTests) deleteNote200(t *testing.T, id int64) {
	w := nt.do(http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Test deleteNote200: Should receive a status code of 200 for the response : %v", w.Code)
	}
	var resp handler.Success
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || !resp.Success {
		t.Fatalf("Test deleteNote200: Should have received success: %v %v", resp, err)
	}
}

func (nt *NoteTests) deleteNote404(t *testing.T, id int64) {
	w := nt.do(http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Test deleteNote404: Should receive a status code of 404 for the response : %v", w.Code)
	}
	var resp handler.Error
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Test deleteNote404: Should be able to unmarshal the response : %v", err)
	}
	if resp.Message != "Note not found" {
		t.Fatalf("Test deleteNote404: Should have received \"Note not found\": %v", resp)
	}
}

func (nt *NoteTests) getNote404Deleted(t *testing.T, id int64) {
	w := nt.do(http.MethodGet, fmt.Sprintf("/notes/%d", id), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Test getNote404Deleted: Should not find a deleted note even if it was cached : %v", w.Code)
	}
}

func TestChanges(t *testing.T) {
	tests := newNoteTests(t, "ChangesTest")

	srv := httptest.NewServer(tests.app)
	defer srv.Close()
	// streams end when the broker stops; this has to run before srv.Close
	defer tests.broker.Stop()

	tests.publish400(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := openStream(t, ctx, srv.URL)
	second := openStream(t, ctx, srv.URL)

	waitFor(t, func() bool { return tests.broker.Count() == 2 })

	w := tests.do(http.MethodPost, "/notes/sync", []note.Descriptor{{Id: 7}, {Id: 8, Deleted: true}})
	if w.Code != http.StatusOK {
		t.Fatalf("Test publish200: Should receive a status code of 200 for the response : %v", w.Code)
	}

	for _, stream := range []*bufio.Reader{first, second} {
		data := readEvent(t, stream)
		var got []note.Descriptor
		if err := json.Unmarshal([]byte(data), &got); err != nil {
			t.Fatalf("Test publish200: Should receive a json array on the stream: %q %v", data, err)
		}
		if len(got) != 2 || got[0].Id != 7 || !got[1].Deleted {
			t.Fatalf("Test publish200: Should receive the published descriptors: %v", got)
		}
	}

	w = tests.do(http.MethodPost, "/notes/sync", []note.Descriptor{})
	if w.Code != http.StatusOK {
		t.Fatalf("Test publish200Empty: Should accept an empty array : %v", w.Code)
	}
	if data := readEvent(t, first); data != "[]" {
		t.Fatalf("Test publish200Empty: Should relay an empty array: %q", data)
	}
}

func (nt *NoteTests) publish400(t *testing.T) {
	for _, body := range []string{`{"id":1}`, `null`, `nope`} {
		r := httptest.NewRequest(http.MethodPost, "/notes/sync", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		nt.app.ServeHTTP(w, r)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Test publish400: Should receive a status code of 400 for %s : %v", body, w.Code)
		}
	}
}

func openStream(t *testing.T, ctx context.Context, base string) *bufio.Reader {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/notes/sync", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Test openStream: Should connect to the stream: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Test openStream: Should receive a status code of 200 for the response : %v", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Test openStream: Should receive an event stream: %s", ct)
	}

	r := bufio.NewReader(resp.Body)
	if data := readEvent(t, r); data != changes.Connected {
		t.Fatalf("Test openStream: Should receive %q first: %q", changes.Connected, data)
	}
	return r
}

func readEvent(t *testing.T, r *bufio.Reader) string {
	var data []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("Test readEvent: Should read a full event: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(data) > 0 {
				return strings.Join(data, "\n")
			}
			continue
		}
		if strings.HasPrefix(line, "data:") {
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Test waitFor: condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
