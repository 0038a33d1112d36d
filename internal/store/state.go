// ABOUTME: ChatState data model: messages, conversations and transient UI fields
// ABOUTME: Snapshots are values; slices inside them are replaced, never written in place

package store

import "slices"

// Role identifies who authored a message.
type Role string

// Message roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RolePending   Role = "pending" // placeholder reserved before real content arrives
)

// Source is one citation attached to an assistant message.
type Source struct {
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// RelatedSearch is a follow-up query suggested alongside an open search answer.
type RelatedSearch struct {
	Query string `json:"query"`
}

// MediaItem is an image or news entry returned by the open search metadata call.
type MediaItem struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl,omitempty"`
	Source   string `json:"source,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
	Date     string `json:"date,omitempty"`
	Position int    `json:"position,omitempty"`
}

// Message is one turn in a conversation.
type Message struct {
	ID                 string   `json:"id,omitempty"`
	Role               Role     `json:"role,omitempty"`
	Content            string   `json:"content"`
	MetaData           []Source `json:"metaData,omitempty"`
	ShowLoading        bool     `json:"showLoading,omitempty"`
	IsOpenChat         bool     `json:"isOpenChat,omitempty"`
	IsConfluenceSearch bool     `json:"isConfluenceSearch,omitempty"`
	IsAnalysis         bool     `json:"isAnalysis,omitempty"`
	Prompt             string   `json:"prompt,omitempty"`
}

// Conversation is an ordered, append-only list of messages.
type Conversation struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id,omitempty"`
	Messages   []Message `json:"messages"`
}

// ChatState is everything the UI can observe.
type ChatState struct {
	Error                string
	Loading              bool
	ActiveConversationID string // empty when no conversation is active
	Conversations        []Conversation
	SelectedText         string
	ShowRelatedSearches  bool
	ShowImageSection     bool
	ShowNewsSection      bool
	Images               []MediaItem
	News                 []MediaItem
	RelatedSearches      []RelatedSearch
	DocIDList            []string
	IsCompleted          bool
	BlogContent          string
	ActivePrompt         string
	DiagramContent       string
}

// Initial returns the default state used at start-up and on Reset.
func Initial() ChatState {
	return ChatState{}
}

// ActiveConversation returns the conversation that mutations target.
func (s ChatState) ActiveConversation() (Conversation, bool) {
	i := s.activeIndex()
	if i < 0 {
		return Conversation{}, false
	}
	return s.Conversations[i], true
}

func (s ChatState) activeIndex() int {
	if s.ActiveConversationID == "" {
		return -1
	}
	return slices.IndexFunc(s.Conversations, func(c Conversation) bool {
		return c.ID == s.ActiveConversationID
	})
}

// EditActive replaces the active conversation's messages with fn's result.
// fn receives a private copy it may modify freely. The conversations slice
// is copied too, so earlier snapshots and the other conversations keep their
// original backing arrays. Returns false when no conversation is active.
func (s *ChatState) EditActive(fn func(messages []Message) []Message) bool {
	i := s.activeIndex()
	if i < 0 {
		return false
	}

	convs := slices.Clone(s.Conversations)
	conv := convs[i]
	conv.Messages = fn(slices.Clone(conv.Messages))
	convs[i] = conv
	s.Conversations = convs
	return true
}

// TranscriptEntry is the role/content pair sent to a backend as history.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript returns the active conversation's history without pending
// placeholders.
func (s ChatState) Transcript() []TranscriptEntry {
	conv, ok := s.ActiveConversation()
	if !ok {
		return []TranscriptEntry{}
	}

	out := make([]TranscriptEntry, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if m.Role == RolePending {
			continue
		}
		out = append(out, TranscriptEntry{Role: m.Role, Content: m.Content})
	}
	return out
}
