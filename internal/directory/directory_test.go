// ABOUTME: Tests for the conversation directory against an httptest backend
// ABOUTME: Covers fetch, auto-create on empty documents, prepend-and-activate, scoring and tickets

package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/store"
)

func setup(t *testing.T, mux *http.ServeMux) (*Directory, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	st := store.New(nil)
	return New(st, api.New(srv.URL), nil), st
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchConversations_ActivatesFirst(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "doc-1", r.URL.Query().Get("document_id"))
		writeJSON(w, []store.Conversation{{ID: "a"}, {ID: "b"}})
	})
	d, st := setup(t, mux)

	require.NoError(t, d.FetchConversations(context.Background(), "doc-1"))

	state := st.Read()
	assert.Equal(t, "a", state.ActiveConversationID)
	assert.Len(t, state.Conversations, 2)
}

func TestFetchConversations_EmptyCreatesOne(t *testing.T) {
	var mu sync.Mutex
	creates := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []store.Conversation{})
	})
	mux.HandleFunc("POST /conversations", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		creates++
		mu.Unlock()
		writeJSON(w, store.Conversation{ID: "fresh", DocumentID: r.URL.Query().Get("document_id")})
	})
	d, st := setup(t, mux)

	require.NoError(t, d.FetchConversations(context.Background(), "doc-2"))

	mu.Lock()
	assert.Equal(t, 1, creates)
	mu.Unlock()

	state := st.Read()
	require.Len(t, state.Conversations, 1)
	assert.Equal(t, "fresh", state.ActiveConversationID)
	assert.Equal(t, "doc-2", state.Conversations[0].DocumentID)
}

func TestFetchConversations_Error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	d, st := setup(t, mux)

	err := d.FetchConversations(context.Background(), "doc")
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
	assert.Empty(t, st.Read().Conversations)
}

func TestCreateOpenConversation_Prepends(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations/open", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.Conversation{ID: "open-1"})
	})
	d, st := setup(t, mux)
	st.Merge(store.Partial{
		Conversations:        []store.Conversation{{ID: "existing"}},
		ActiveConversationID: store.Ptr("existing"),
	})

	conv, err := d.CreateOpenConversation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "open-1", conv.ID)

	state := st.Read()
	require.Len(t, state.Conversations, 2)
	assert.Equal(t, "open-1", state.Conversations[0].ID)
	assert.Equal(t, "existing", state.Conversations[1].ID)
	assert.Equal(t, "open-1", state.ActiveConversationID)
}

func TestScoreConversation(t *testing.T) {
	got := make(chan map[string]any, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scores", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["conversation_id"] = r.URL.Query().Get("conversation_id")
		got <- body
		w.WriteHeader(http.StatusNoContent)
	})
	d, st := setup(t, mux)

	assert.ErrorIs(t, d.ScoreConversation(context.Background(), 1), api.ErrNoConversation)

	st.Merge(store.Partial{
		Conversations:        []store.Conversation{{ID: "c9"}},
		ActiveConversationID: store.Ptr("c9"),
	})
	require.NoError(t, d.ScoreConversation(context.Background(), -1))

	body := <-got
	assert.Equal(t, "c9", body["conversation_id"])
	assert.InDelta(t, -1, body["score"], 0)
}

func TestCreateJiraTicket(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /integration/jira", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"summary":"s"}`, string(data))
		writeJSON(w, map[string]string{"key": "PROJ-1"})
	})
	d, st := setup(t, mux)

	out, err := d.CreateJiraTicket(context.Background(), map[string]string{"summary": "s"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"PROJ-1"}`, string(out))

	state := st.Read()
	assert.True(t, state.IsCompleted)
	assert.False(t, state.Loading)
}

func TestCreateJiraTicket_Failure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /integration/jira", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"detail":"jira unreachable"}`)
	})
	d, st := setup(t, mux)

	_, err := d.CreateJiraTicket(context.Background(), map[string]string{})
	require.Error(t, err)

	state := st.Read()
	assert.Equal(t, "jira unreachable", state.Error)
	assert.False(t, state.Loading)
	assert.False(t, state.IsCompleted)
}
