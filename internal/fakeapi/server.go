// ABOUTME: In-memory fake of the chat backend: conversations, streamed and sync replies, metadata
// ABOUTME: Supports scripted failures per route and optional bearer token checks

package fakeapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/auth"
	"github.com/2389/coven-chat/internal/store"
)

// Route names a group of endpoints for failure injection.
type Route string

const (
	RouteMetadata      Route = "metadata"
	RouteOpen          Route = "open"
	RouteGraph         Route = "graph"
	RouteMessages      Route = "messages"
	RouteImage         Route = "image"
	RouteConversations Route = "conversations"
	RouteScores        Route = "scores"
	RouteJira          Route = "jira"
)

// Failure is a scripted error response.
type Failure struct {
	Status      int
	Body        string
	ContentType string // defaults to text/plain, or application/json for JSON bodies
}

// Score is one recorded feedback call.
type Score struct {
	ConversationID string
	Score          int
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	mu            sync.Mutex
	conversations map[string]*store.Conversation
	order         []string // conversation IDs, oldest first
	failures      map[Route]Failure
	scores        []Score
	tickets       []json.RawMessage

	chunkDelay time.Duration
	secret     []byte
	metadata   func(input string) any
	logger     *slog.Logger
}

// Option is a functional option for configuring the server
type Option func(*Server)

// WithChunkDelay pauses between streamed chunks
func WithChunkDelay(d time.Duration) Option {
	return func(s *Server) {
		s.chunkDelay = d
	}
}

// WithSecret requires a bearer token signed with secret on every request
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithMetadata replaces the generated open search metadata
func WithMetadata(fn func(input string) any) Option {
	return func(s *Server) {
		s.metadata = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates an empty fake backend.
func New(opts ...Option) *Server {
	s := &Server{
		conversations: make(map[string]*store.Conversation),
		failures:      make(map[Route]Failure),
		metadata:      defaultMetadata,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "fakeapi")
	return s
}

// Handler returns the backend's routes, rooted at "/".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", s.handleListConversations)
	mux.HandleFunc("POST /conversations", s.handleCreateConversation)
	mux.HandleFunc("GET /conversations/open", s.handleOpenConversation)
	mux.HandleFunc("POST /conversations/{id}/metadata", s.handleMetadata)
	mux.HandleFunc("POST /conversations/{id}/open", s.handleStream(RouteOpen))
	mux.HandleFunc("POST /conversations/{id}/graph", s.handleGraph)
	mux.HandleFunc("POST /conversations/{id}/messages", s.handleMessages)
	mux.HandleFunc("POST /conversations/{id}/image", s.handleSync(RouteImage))
	mux.HandleFunc("POST /scores", s.handleScore)
	mux.HandleFunc("POST /integration/jira", s.handleJira)

	if s.secret != nil {
		return auth.RequireBearer(s.secret, mux)
	}
	return mux
}

// Fail makes every request to route answer with f until ClearFailures.
func (s *Server) Fail(route Route, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = f
}

// ClearFailures removes all scripted failures.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[Route]Failure)
}

// AddConversation seeds a conversation for documentID.
func (s *Server) AddConversation(documentID string) store.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(documentID)
}

// Conversation returns a copy of the stored conversation.
func (s *Server) Conversation(id string) (store.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return store.Conversation{}, false
	}
	return cloneConversation(conv), true
}

// Scores returns the recorded feedback calls.
func (s *Server) Scores() []Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Score(nil), s.scores...)
}

// Tickets returns the recorded ticket payloads.
func (s *Server) Tickets() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.tickets...)
}

func (s *Server) createLocked(documentID string) store.Conversation {
	conv := &store.Conversation{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Messages:   []store.Message{},
	}
	s.conversations[conv.ID] = conv
	s.order = append(s.order, conv.ID)
	return cloneConversation(conv)
}

func cloneConversation(c *store.Conversation) store.Conversation {
	out := *c
	out.Messages = append([]store.Message{}, c.Messages...)
	return out
}

// injected writes the scripted failure for route, if any.
func (s *Server) injected(w http.ResponseWriter, route Route) bool {
	s.mu.Lock()
	f, ok := s.failures[route]
	s.mu.Unlock()
	if !ok {
		return false
	}

	ct := f.ContentType
	if ct == "" {
		ct = "text/plain; charset=utf-8"
		if json.Valid([]byte(f.Body)) {
			ct = "application/json"
		}
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(f.Status)
	_, _ = io.WriteString(w, f.Body)

	s.logger.Debug("injected failure", "route", route, "status", f.Status)
	return true
}

// record appends a user/assistant exchange to a conversation.
func (s *Server) record(id string, msgs ...store.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[id]; ok {
		conv.Messages = append(conv.Messages, msgs...)
	}
}

func (s *Server) exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[id]
	return ok
}

// sendJSON writes v as a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"message": message})
}

var (
	errInvalidJSON   = errors.New("invalid JSON body")
	errInputRequired = errors.New("input is required")
)

// parseInput decodes the request body and requires a non-empty input.
func parseInput[T any](r io.Reader, input func(T) string) (T, error) {
	var req T
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, errInvalidJSON
	}
	if strings.TrimSpace(input(req)) == "" {
		return req, errInputRequired
	}
	return req, nil
}

func inputOf(req api.InputRequest) string { return req.Input }

func searchInputOf(req api.SearchRequest) string { return req.Input }

func messageInputOf(req api.MessageRequest) string { return req.Input }
