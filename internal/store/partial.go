// ABOUTME: Partial is the shallow-merge payload for Store.Merge
// ABOUTME: Also holds the named single-field setters used by the UI layer

package store

import "slices"

// Partial names the ChatState fields a Merge should overwrite. Nil fields
// are left unchanged.
type Partial struct {
	Error                *string
	Loading              *bool
	ActiveConversationID *string
	Conversations        []Conversation // nil leaves conversations unchanged
	SelectedText         *string
	ShowRelatedSearches  *bool
	ShowImageSection     *bool
	ShowNewsSection      *bool
	Images               []MediaItem
	News                 []MediaItem
	RelatedSearches      []RelatedSearch
	DocIDList            []string
	IsCompleted          *bool
	BlogContent          *string
	ActivePrompt         *string
	DiagramContent       *string
}

// Ptr returns a pointer to v, for building Partial values inline.
func Ptr[T any](v T) *T {
	return &v
}

func (p Partial) apply(st *ChatState) {
	if p.Error != nil {
		st.Error = *p.Error
	}
	if p.Loading != nil {
		st.Loading = *p.Loading
	}
	if p.ActiveConversationID != nil {
		st.ActiveConversationID = *p.ActiveConversationID
	}
	if p.Conversations != nil {
		st.Conversations = slices.Clone(p.Conversations)
	}
	if p.SelectedText != nil {
		st.SelectedText = *p.SelectedText
	}
	if p.ShowRelatedSearches != nil {
		st.ShowRelatedSearches = *p.ShowRelatedSearches
	}
	if p.ShowImageSection != nil {
		st.ShowImageSection = *p.ShowImageSection
	}
	if p.ShowNewsSection != nil {
		st.ShowNewsSection = *p.ShowNewsSection
	}
	if p.Images != nil {
		st.Images = slices.Clone(p.Images)
	}
	if p.News != nil {
		st.News = slices.Clone(p.News)
	}
	if p.RelatedSearches != nil {
		st.RelatedSearches = slices.Clone(p.RelatedSearches)
	}
	if p.DocIDList != nil {
		st.DocIDList = slices.Clone(p.DocIDList)
	}
	if p.IsCompleted != nil {
		st.IsCompleted = *p.IsCompleted
	}
	if p.BlogContent != nil {
		st.BlogContent = *p.BlogContent
	}
	if p.ActivePrompt != nil {
		st.ActivePrompt = *p.ActivePrompt
	}
	if p.DiagramContent != nil {
		st.DiagramContent = *p.DiagramContent
	}
}

// ResetError clears the conversational error field.
func (s *Store) ResetError() {
	s.Merge(Partial{Error: Ptr("")})
}

// SetActiveConversationID selects the conversation mutations target.
func (s *Store) SetActiveConversationID(id string) {
	s.Merge(Partial{ActiveConversationID: &id})
}

func (s *Store) SetSelectedText(text string) {
	s.Merge(Partial{SelectedText: &text})
}

func (s *Store) SetShowRelatedSearches(show bool) {
	s.Merge(Partial{ShowRelatedSearches: &show})
}

func (s *Store) SetShowImageSection(show bool) {
	s.Merge(Partial{ShowImageSection: &show})
}

func (s *Store) SetShowNewsSection(show bool) {
	s.Merge(Partial{ShowNewsSection: &show})
}

// SetDocIDList replaces the documents plain sends are scoped to.
func (s *Store) SetDocIDList(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	s.Merge(Partial{DocIDList: ids})
}

// ResetComplete clears the completion flag set by ticket creation.
func (s *Store) ResetComplete() {
	s.Merge(Partial{IsCompleted: Ptr(false)})
}

// AppendBlogContent concatenates content onto the existing blog text.
func (s *Store) AppendBlogContent(content string) {
	s.Update(func(st *ChatState) {
		st.BlogContent += content
	})
}

// SetActivePrompt selects the prompt template used by the next plain send.
func (s *Store) SetActivePrompt(name string) {
	s.Merge(Partial{ActivePrompt: &name})
}

func (s *Store) ResetActivePrompt() {
	s.Merge(Partial{ActivePrompt: Ptr("")})
}

func (s *Store) SetDiagramContent(content string) {
	s.Merge(Partial{DiagramContent: &content})
}
