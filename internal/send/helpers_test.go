// ABOUTME: Shared fixtures for the pipeline tests: an httptest backend with a seeded store
// ABOUTME: Scripted handlers stream chunks, fail with a status, or record request bodies

package send

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/faults"
	"github.com/2389/coven-chat/internal/store"
)

type harness struct {
	store  *store.Store
	faults *faults.Log
	client *api.Client
	srv    *httptest.Server
}

// newHarness serves mux and seeds one active conversation "c1".
func newHarness(t *testing.T, mux *http.ServeMux) *harness {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	fl := faults.New(0, 10, nil)
	t.Cleanup(fl.Close)

	st := store.New(nil)
	st.Merge(store.Partial{
		ActiveConversationID: store.Ptr("c1"),
		Conversations: []store.Conversation{
			{ID: "c1"},
			{ID: "c2", Messages: []store.Message{{ID: "old", Role: store.RoleUser, Content: "untouched"}}},
		},
	})

	return &harness{
		store:  st,
		faults: fl,
		client: api.New(srv.URL),
		srv:    srv,
	}
}

func (h *harness) deps() Deps {
	return Deps{Store: h.store, Transport: h.client, Faults: h.faults}
}

func (h *harness) messages(t *testing.T) []store.Message {
	t.Helper()
	conv, ok := h.store.Read().ActiveConversation()
	require.True(t, ok)
	return conv.Messages
}

// chunked writes each chunk and flushes it so the client sees separate reads.
func chunked(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			_, _ = io.WriteString(w, c)
			flusher.Flush()
		}
	}
}

func failing(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// recorder keeps the decoded JSON body of every request it wraps.
type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (rec *recorder) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, body)
		rec.mu.Unlock()
		next(w, r)
	}
}

func (rec *recorder) all() []map[string]any {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return slices.Clone(rec.bodies)
}
