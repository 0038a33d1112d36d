// ABOUTME: Tests for the chat REPL against the fake backend
// ABOUTME: Drives slash commands and sends, then checks rendered output and store state

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/fakeapi"
)

func newTestSession(t *testing.T) (*chatSession, *fakeapi.Server, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL

	a := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(a.Close)

	var out bytes.Buffer
	s := newChatSession(a, &out)
	s.opts.UseStreaming = true
	t.Cleanup(s.render(t.Context()))

	require.NoError(t, a.dir.FetchConversations(context.Background(), "doc"))
	return s, backend, &out
}

func TestSession_StreamedReplyIsRendered(t *testing.T) {
	s, _, out := newTestSession(t)

	assert.False(t, s.handle(context.Background(), "hello"))
	assert.Contains(t, out.String(), "Echo: **hello**")
	assert.False(t, s.app.store.Read().Loading)
}

func TestSession_ImageIsOneShotAndSync(t *testing.T) {
	s, _, out := newTestSession(t)
	ctx := context.Background()

	s.handle(ctx, "/image")
	s.handle(ctx, "a cat")
	assert.Contains(t, out.String(), "https://images.example.com/a%20cat.png")
	assert.False(t, s.nextImage)
	assert.True(t, s.opts.UseStreaming, "streaming toggle is unchanged")
}

func TestSession_PromptAndDocs(t *testing.T) {
	s, _, out := newTestSession(t)
	ctx := context.Background()

	s.handle(ctx, "/prompt Epic")
	assert.Equal(t, "Epic", s.app.store.Read().ActivePrompt)
	assert.Equal(t, "[Epic]> ", s.promptLabel())

	s.handle(ctx, "/prompt Haiku")
	assert.Contains(t, out.String(), `unknown prompt "Haiku"`)

	s.handle(ctx, "/docs a, b,,")
	assert.Equal(t, []string{"a", "b"}, s.app.store.Read().DocIDList)

	s.handle(ctx, "question")
	assert.Empty(t, s.app.store.Read().ActivePrompt, "prompt is consumed by the plain send")
	assert.Contains(t, out.String(), "Searched documents: a, b")
}

func TestSession_DiagramCommand(t *testing.T) {
	s, _, out := newTestSession(t)
	ctx := context.Background()

	s.handle(ctx, "/prompt Diagram")
	s.handle(ctx, "signup")
	out.Reset()
	s.handle(ctx, "/diagram")

	assert.Contains(t, out.String(), "graph TD\n  A[signup] --> B[Answer]")
	assert.Equal(t, "graph TD\n  A[signup] --> B[Answer]", s.app.store.Read().DiagramContent)
}

func TestSession_FaultsAndScore(t *testing.T) {
	s, backend, out := newTestSession(t)
	ctx := context.Background()

	backend.Fail(fakeapi.RouteMessages, fakeapi.Failure{Status: http.StatusServiceUnavailable, Body: "<!doctype html>busy"})
	s.handle(ctx, "hello")
	assert.Contains(t, out.String(), "server error 503 recorded")

	out.Reset()
	s.handle(ctx, "/faults")
	assert.Contains(t, out.String(), "503 text/html x1")

	s.handle(ctx, "/score 1")
	require.Len(t, backend.Scores(), 1)
	assert.Equal(t, 1, backend.Scores()[0].Score)

	out.Reset()
	s.handle(ctx, "/score high")
	assert.Contains(t, out.String(), "usage: /score")
}

func TestSession_OpenConversation(t *testing.T) {
	s, _, out := newTestSession(t)
	ctx := context.Background()

	s.handle(ctx, "/open")
	assert.True(t, s.openChat)
	s.handle(ctx, "kubernetes")

	assert.Contains(t, out.String(), "Searching the web for **kubernetes**")
	assert.Contains(t, out.String(), "related: kubernetes examples | kubernetes explained")
}

func TestSession_UnknownAndQuit(t *testing.T) {
	s, _, out := newTestSession(t)
	ctx := context.Background()

	assert.False(t, s.handle(ctx, "/bogus"))
	assert.Contains(t, out.String(), "unknown command /bogus")
	assert.True(t, s.handle(ctx, "/quit"))
}

func TestRepl_EndsAtEOF(t *testing.T) {
	s, _, out := newTestSession(t)

	err := repl(context.Background(), s, strings.NewReader("/stream off\nhi\n"))
	require.NoError(t, err)
	assert.False(t, s.opts.UseStreaming)
	assert.Contains(t, out.String(), "Echo: **hi**")
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 120))

	long := strings.Repeat("é", 200)
	got := truncate(long, 120)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 120)+"...", got)
}
