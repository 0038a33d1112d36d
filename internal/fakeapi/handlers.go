// ABOUTME: HTTP handlers of the fake backend
// ABOUTME: Streamed replies are flushed word by word; sync replies return one message object

package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/store"
)

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteConversations) {
		return
	}
	documentID := r.URL.Query().Get("document_id")

	s.mu.Lock()
	convs := []store.Conversation{}
	// newest first, like the backend
	for i := len(s.order) - 1; i >= 0; i-- {
		conv := s.conversations[s.order[i]]
		if conv.DocumentID == documentID {
			convs = append(convs, cloneConversation(conv))
		}
	}
	s.mu.Unlock()

	s.sendJSON(w, http.StatusOK, convs)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteConversations) {
		return
	}
	s.mu.Lock()
	conv := s.createLocked(r.URL.Query().Get("document_id"))
	s.mu.Unlock()

	s.logger.Info("conversation created", "conversation_id", conv.ID, "document_id", conv.DocumentID)
	s.sendJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleOpenConversation(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteConversations) {
		return
	}
	s.mu.Lock()
	conv := s.createLocked("")
	s.mu.Unlock()

	s.sendJSON(w, http.StatusOK, conv)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteMetadata) {
		return
	}
	if !s.exists(r.PathValue("id")) {
		s.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	req, err := parseInput(r.Body, searchInputOf)
	if err != nil {
		s.sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.sendJSON(w, http.StatusOK, s.metadata(req.Input))
}

// handleStream answers an open search stream.
func (s *Server) handleStream(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.injected(w, route) {
			return
		}
		id := r.PathValue("id")
		if !s.exists(id) {
			s.sendJSONError(w, http.StatusNotFound, "conversation not found")
			return
		}
		req, err := parseInput(r.Body, searchInputOf)
		if err != nil {
			s.sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.streamReply(w, r, id, req.Input, searchReply(req.Input, req.IsConfluenceSearch))
	}
}

// handleGraph serves the attachment endpoint, streamed or not.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteGraph) {
		return
	}
	id := r.PathValue("id")
	if !s.exists(id) {
		s.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	req, err := parseInput(r.Body, inputOf)
	if err != nil {
		s.sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	reply := attachmentReply(req.Input)
	if wantsStream(r) {
		s.streamReply(w, r, id, req.Input, reply)
		return
	}
	s.syncReply(w, id, req.Input, reply)
}

// handleMessages serves the plain endpoint. Streamed requests carry a
// prompt template and document list; synchronous ones only the input.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteMessages) {
		return
	}
	id := r.PathValue("id")
	if !s.exists(id) {
		s.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	req, err := parseInput(r.Body, messageInputOf)
	if err != nil {
		s.sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	reply := plainReply(req.Input, req.Template, req.DocList)
	if wantsStream(r) {
		s.streamReply(w, r, id, req.Input, reply)
		return
	}
	s.syncReply(w, id, req.Input, reply)
}

// handleSync serves a synchronous-only endpoint.
func (s *Server) handleSync(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.injected(w, route) {
			return
		}
		id := r.PathValue("id")
		if !s.exists(id) {
			s.sendJSONError(w, http.StatusNotFound, "conversation not found")
			return
		}
		req, err := parseInput(r.Body, inputOf)
		if err != nil {
			s.sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.syncReply(w, id, req.Input, imageReply(req.Input))
	}
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteScores) {
		return
	}
	id := r.URL.Query().Get("conversation_id")
	if !s.exists(id) {
		s.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	var req api.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	s.mu.Lock()
	s.scores = append(s.scores, Score{ConversationID: id, Score: req.Score})
	s.mu.Unlock()

	s.sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleJira(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteJira) {
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(data) {
		s.sendJSONError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	s.mu.Lock()
	s.tickets = append(s.tickets, json.RawMessage(data))
	key := "CHAT-" + strconv.Itoa(len(s.tickets))
	s.mu.Unlock()

	s.sendJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func wantsStream(r *http.Request) bool {
	return r.URL.Query().Get("stream") == "true"
}

// streamReply writes reply in word-sized chunks, flushing after each one.
func (s *Server) streamReply(w http.ResponseWriter, r *http.Request, id, input, reply string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for _, chunk := range strings.SplitAfter(reply, " ") {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		_, _ = io.WriteString(w, chunk)
		flusher.Flush()
		if s.chunkDelay > 0 {
			time.Sleep(s.chunkDelay)
		}
	}

	s.record(id,
		store.Message{ID: uuid.New().String(), Role: store.RoleUser, Content: input},
		store.Message{ID: uuid.New().String(), Role: store.RoleAssistant, Content: reply},
	)
}

func (s *Server) syncReply(w http.ResponseWriter, id, input, reply string) {
	msg := store.Message{ID: uuid.New().String(), Role: store.RoleAssistant, Content: reply}
	s.record(id,
		store.Message{ID: uuid.New().String(), Role: store.RoleUser, Content: input},
		msg,
	)
	s.sendJSON(w, http.StatusOK, msg)
}
