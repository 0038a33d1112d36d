// ABOUTME: Tests for the fake backend's HTTP surface
// ABOUTME: Exercised through api.Client so the request shapes match what the client sends

package fakeapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/auth"
	"github.com/2389/coven-chat/internal/store"
)

func setup(t *testing.T, opts ...Option) (*Server, *api.Client) {
	t.Helper()
	s := New(opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, api.New(srv.URL)
}

func TestConversations_CreateAndList(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	var created store.Conversation
	require.NoError(t, c.Post(ctx, api.ConversationsPath("doc"), nil, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "doc", created.DocumentID)

	s.AddConversation("other")

	var list []store.Conversation
	require.NoError(t, c.Get(ctx, api.ConversationsPath("doc"), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	var open store.Conversation
	require.NoError(t, c.Get(ctx, api.OpenConversationPath(), &open))
	assert.Empty(t, open.DocumentID)
}

func TestMessages_StreamRecordsExchange(t *testing.T) {
	s, c := setup(t)
	conv := s.AddConversation("doc")

	resp, err := c.Stream(context.Background(), api.MessagesPath(conv.ID, true), api.MessageRequest{Input: "hello there"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Echo: **hello there**")

	stored, ok := s.Conversation(conv.ID)
	require.True(t, ok)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, store.RoleUser, stored.Messages[0].Role)
	assert.Equal(t, string(body), stored.Messages[1].Content)
}

func TestMessages_DiagramTemplate(t *testing.T) {
	s, c := setup(t)
	conv := s.AddConversation("doc")

	resp, err := c.Stream(context.Background(), api.MessagesPath(conv.ID, true), api.MessageRequest{
		Input:    "login flow",
		Template: "\nGenerate a corresponding mermaid code.",
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "```mermaid")
}

func TestSync_ReturnsMessage(t *testing.T) {
	s, c := setup(t)
	conv := s.AddConversation("doc")

	var msg store.Message
	require.NoError(t, c.Post(context.Background(), api.ImagePath(conv.ID), api.InputRequest{Input: "cat"}, &msg))
	assert.Equal(t, store.RoleAssistant, msg.Role)
	assert.Contains(t, msg.Content, "https://images.example.com/cat.png")
}

func TestValidation(t *testing.T) {
	s, c := setup(t)
	conv := s.AddConversation("doc")
	ctx := context.Background()

	err := c.Post(ctx, api.MessagesPath(conv.ID, false), api.InputRequest{}, nil)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Status)
	assert.Equal(t, "input is required", api.ErrorMessage(err))

	err = c.Post(ctx, api.MessagesPath("missing", false), api.InputRequest{Input: "x"}, nil)
	assert.Equal(t, "conversation not found", api.ErrorMessage(err))
}

func TestFail_InjectsUntilCleared(t *testing.T) {
	s, c := setup(t)
	conv := s.AddConversation("doc")
	s.Fail(RouteMessages, Failure{Status: http.StatusServiceUnavailable, Body: "<!doctype html><p>maintenance</p>"})

	resp, err := c.Stream(context.Background(), api.MessagesPath(conv.ID, true), api.MessageRequest{Input: "x"})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "<!doctype html><p>maintenance</p>", string(body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	s.ClearFailures()
	resp, err = c.Stream(context.Background(), api.MessagesPath(conv.ID, true), api.MessageRequest{Input: "x"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScoresAndTickets(t *testing.T) {
	s, c := setup(t)
	conv := s.AddConversation("doc")
	ctx := context.Background()

	require.NoError(t, c.Post(ctx, api.ScoresPath(conv.ID), api.ScoreRequest{Score: 1}, nil))
	assert.Equal(t, []Score{{ConversationID: conv.ID, Score: 1}}, s.Scores())

	var out map[string]string
	require.NoError(t, c.Post(ctx, api.JiraPath(), map[string]string{"summary": "bug"}, &out))
	assert.Equal(t, "CHAT-1", out["key"])
	require.Len(t, s.Tickets(), 1)
	assert.JSONEq(t, `{"summary":"bug"}`, string(s.Tickets()[0]))
}

func TestWithSecret(t *testing.T) {
	secret := []byte("test-secret")
	s := New(WithSecret(secret))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	err := api.New(srv.URL).Get(context.Background(), api.ConversationsPath("doc"), &[]store.Conversation{})
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)

	token, err := auth.Issue(secret, "tester", time.Hour)
	require.NoError(t, err)
	var list []store.Conversation
	require.NoError(t, api.New(srv.URL, api.WithToken(token)).Get(context.Background(), api.ConversationsPath("doc"), &list))
	assert.Empty(t, list)
}
