// ABOUTME: Tests for the backend HTTP client
// ABOUTME: Covers headers, cookies, status errors and raw streamed responses

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/auth"
)

func TestPost_SendsJSONAndDecodes(t *testing.T) {
	var gotBody InputRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/conversations/c1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"role":"assistant","content":"hi"}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	var out struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	err := c.Post(context.Background(), MessagesPath("c1", false), InputRequest{Input: "hello"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "hello", gotBody.Input)
	assert.Equal(t, "assistant", out.Role)
	assert.Equal(t, "hi", out.Content)
}

func TestGet_NoContentTypeWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		assert.Equal(t, "d1", r.URL.Query().Get("document_id"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var out []map[string]any
	require.NoError(t, New(srv.URL).Get(context.Background(), ConversationsPath("d1"), &out))
	assert.Empty(t, out)
}

func TestClient_SendsCookiesBack(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		} else {
			cookie, err := r.Cookie("session")
			require.NoError(t, err)
			assert.Equal(t, "abc", cookie.Value)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Post(context.Background(), "/first", nil, nil))
	require.NoError(t, c.Post(context.Background(), "/second", nil, nil))
	assert.Equal(t, 2, calls)
}

func TestClient_BearerToken(t *testing.T) {
	token, err := auth.Issue([]byte("secret-secret-secret-secret-1234"), "user:t", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, WithToken(token)).Post(context.Background(), "/x", nil, nil))
}

func TestPost_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad input"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).Post(context.Background(), "/x", InputRequest{}, nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
	assert.Equal(t, "bad input", ErrorMessage(err))
}

func TestPostRaw_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"organic":[]}`))
	}))
	defer srv.Close()

	data, err := New(srv.URL).PostRaw(context.Background(), MetadataPath("c1"), SearchRequest{Input: "q"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"organic":[]}`, string(data))
}

func TestStream_ReturnsErrorStatusesWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Stream(context.Background(), OpenStreamPath("c1"), SearchRequest{Input: "q"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "down", string(body))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Contains(t, ErrorMessage(err), "failed to execute request")
}

func TestEndpointPaths(t *testing.T) {
	assert.Equal(t, "/conversations/c%201/metadata", MetadataPath("c 1"))
	assert.Equal(t, "/conversations/c1/open?stream=true", OpenStreamPath("c1"))
	assert.Equal(t, "/conversations/c1/graph", GraphPath("c1"))
	assert.Equal(t, "/conversations/c1/messages?stream=true", MessagesPath("c1", true))
	assert.Equal(t, "/conversations/c1/messages", MessagesPath("c1", false))
	assert.Equal(t, "/conversations/c1/image", ImagePath("c1"))
	assert.Equal(t, "/conversations?document_id=d+1", ConversationsPath("d 1"))
	assert.Equal(t, "/scores?conversation_id=c1", ScoresPath("c1"))
}
