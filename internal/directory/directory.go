// ABOUTME: Conversation lifecycle against the backend: list, create, open, score, ticket
// ABOUTME: Fetched and created conversations are written into the Store and activated

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/store"
)

// Client is the part of api.Client the directory uses.
type Client interface {
	Get(ctx context.Context, path string, result any) error
	Post(ctx context.Context, path string, body, result any) error
}

// Directory manages which conversations the Store holds.
type Directory struct {
	store  *store.Store
	client Client
	logger *slog.Logger
}

// New creates a Directory. Pass nil logger for default.
func New(st *store.Store, client Client, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		store:  st,
		client: client,
		logger: logger.With("component", "directory"),
	}
}

// FetchConversations loads the conversations of a document and activates the
// first one. A document without conversations gets a new one.
func (d *Directory) FetchConversations(ctx context.Context, documentID string) error {
	var convs []store.Conversation
	if err := d.client.Get(ctx, api.ConversationsPath(documentID), &convs); err != nil {
		return fmt.Errorf("failed to fetch conversations: %w", err)
	}

	if len(convs) == 0 {
		d.logger.Info("no conversations for document, creating one", "document_id", documentID)
		_, err := d.CreateConversation(ctx, documentID)
		return err
	}

	d.store.Merge(store.Partial{
		Conversations:        convs,
		ActiveConversationID: &convs[0].ID,
	})
	d.logger.Debug("conversations loaded", "document_id", documentID, "count", len(convs))
	return nil
}

// CreateConversation creates a conversation for a document, puts it first
// and activates it.
func (d *Directory) CreateConversation(ctx context.Context, documentID string) (store.Conversation, error) {
	var conv store.Conversation
	if err := d.client.Post(ctx, api.ConversationsPath(documentID), nil, &conv); err != nil {
		return store.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	d.prepend(conv)
	return conv, nil
}

// CreateOpenConversation obtains a conversation not bound to any document,
// puts it first and activates it.
func (d *Directory) CreateOpenConversation(ctx context.Context) (store.Conversation, error) {
	var conv store.Conversation
	if err := d.client.Get(ctx, api.OpenConversationPath(), &conv); err != nil {
		return store.Conversation{}, fmt.Errorf("failed to open conversation: %w", err)
	}
	d.prepend(conv)
	return conv, nil
}

func (d *Directory) prepend(conv store.Conversation) {
	d.store.Update(func(st *store.ChatState) {
		convs := make([]store.Conversation, 0, len(st.Conversations)+1)
		convs = append(convs, conv)
		convs = append(convs, st.Conversations...)
		st.Conversations = convs
		st.ActiveConversationID = conv.ID
	})
	d.logger.Info("conversation activated", "conversation_id", conv.ID)
}

// ScoreConversation sends a feedback score for the active conversation.
func (d *Directory) ScoreConversation(ctx context.Context, score int) error {
	id := d.store.Read().ActiveConversationID
	if id == "" {
		return api.ErrNoConversation
	}
	if err := d.client.Post(ctx, api.ScoresPath(id), api.ScoreRequest{Score: score}, nil); err != nil {
		return fmt.Errorf("failed to score conversation: %w", err)
	}
	return nil
}

// CreateJiraTicket files a ticket from payload. On success IsCompleted is
// set; on failure the error field is. Loading is cleared either way.
func (d *Directory) CreateJiraTicket(ctx context.Context, payload any) (json.RawMessage, error) {
	d.store.Merge(store.Partial{Loading: store.Ptr(true)})

	var out json.RawMessage
	if err := d.client.Post(ctx, api.JiraPath(), payload, &out); err != nil {
		msg := api.ErrorMessage(err)
		d.store.Merge(store.Partial{Error: &msg, Loading: store.Ptr(false)})
		d.logger.Warn("ticket creation failed", "error", err)
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	d.store.Merge(store.Partial{IsCompleted: store.Ptr(true), Loading: store.Ptr(false)})
	return out, nil
}
