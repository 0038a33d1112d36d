// ABOUTME: Backend endpoint paths and request bodies
// ABOUTME: Paths are relative to the client's base URL

package api

import (
	"fmt"
	"net/url"
)

// SearchRequest is the body of the open search metadata and stream calls.
type SearchRequest struct {
	Input              string `json:"input"`
	IsConfluenceSearch bool   `json:"isConfluenceSearch"`
}

// InputRequest is the body of attachment, image and synchronous message calls.
type InputRequest struct {
	Input string `json:"input"`
}

// MessageRequest is the body of the plain streamed message call.
type MessageRequest struct {
	Input    string   `json:"input"`
	Template string   `json:"template"`
	DocList  []string `json:"docList"`
}

// ScoreRequest is the body of the feedback call.
type ScoreRequest struct {
	Score int `json:"score"`
}

func conversationPath(conversationID, suffix string) string {
	return fmt.Sprintf("/conversations/%s/%s", url.PathEscape(conversationID), suffix)
}

// MetadataPath returns the open search metadata endpoint.
func MetadataPath(conversationID string) string {
	return conversationPath(conversationID, "metadata")
}

// OpenStreamPath returns the streamed open search endpoint.
func OpenStreamPath(conversationID string) string {
	return conversationPath(conversationID, "open?stream=true")
}

// GraphPath returns the attachment-augmented endpoint, streamed or not.
func GraphPath(conversationID string) string {
	return conversationPath(conversationID, "graph")
}

// MessagesPath returns the plain message endpoint.
func MessagesPath(conversationID string, stream bool) string {
	if stream {
		return conversationPath(conversationID, "messages?stream=true")
	}
	return conversationPath(conversationID, "messages")
}

// ImagePath returns the image-producing endpoint.
func ImagePath(conversationID string) string {
	return conversationPath(conversationID, "image")
}

// ConversationsPath lists or creates conversations for a document.
func ConversationsPath(documentID string) string {
	return "/conversations?document_id=" + url.QueryEscape(documentID)
}

// OpenConversationPath returns the open (document-less) conversation endpoint.
func OpenConversationPath() string {
	return "/conversations/open"
}

// ScoresPath returns the feedback endpoint for a conversation.
func ScoresPath(conversationID string) string {
	return "/scores?conversation_id=" + url.QueryEscape(conversationID)
}

// JiraPath returns the ticket integration endpoint.
func JiraPath() string {
	return "/integration/jira"
}
