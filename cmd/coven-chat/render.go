// ABOUTME: Renders store updates to the terminal: reply text as it grows, errors as they appear
// ABOUTME: Runs inside the store subscription, so output follows mutation order

package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/store"
)

type renderer struct {
	session *chatSession

	mu         sync.Mutex
	printed    map[string]int // message ID -> bytes of content already written
	lastError  string
	wasLoading bool
}

// render subscribes to the store and returns a function that stops rendering.
func (s *chatSession) render(ctx context.Context) func() {
	r := &renderer{session: s, printed: make(map[string]int)}
	ctx, cancel := context.WithCancel(ctx)
	s.app.store.Subscribe(ctx, r.update)
	return cancel
}

func (r *renderer) update(st store.ChatState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.session.out

	if conv, ok := st.ActiveConversation(); ok {
		for _, m := range conv.Messages {
			if m.Role != store.RoleAssistant {
				continue
			}
			done, seen := r.printed[m.ID]
			if !seen && !st.Loading && !r.wasLoading {
				// history loaded from the backend, not a live reply
				r.printed[m.ID] = len(m.Content)
				continue
			}
			if done < len(m.Content) {
				fmt.Fprint(out, m.Content[done:])
				r.printed[m.ID] = len(m.Content)
			}
		}
	}

	if st.Error != "" && st.Error != r.lastError {
		fmt.Fprintln(out, color.RedString("\nerror: %s", st.Error))
	}
	r.lastError = st.Error

	if r.wasLoading && !st.Loading {
		fmt.Fprintln(out)
		r.printSources(st)
	}
	r.wasLoading = st.Loading
}

// printSources lists citations and related searches of the latest reply.
func (r *renderer) printSources(st store.ChatState) {
	conv, ok := st.ActiveConversation()
	if !ok || len(conv.Messages) == 0 {
		return
	}
	last := conv.Messages[len(conv.Messages)-1]
	out := r.session.out
	gray := color.New(color.FgHiBlack)

	for i, src := range last.MetaData {
		gray.Fprintf(out, "[%d] %s %s\n", i+1, src.Title, src.Link)
	}
	if st.ShowRelatedSearches && len(st.RelatedSearches) > 0 {
		queries := make([]string, 0, len(st.RelatedSearches))
		for _, rs := range st.RelatedSearches {
			queries = append(queries, rs.Query)
		}
		gray.Fprintf(out, "related: %s\n", strings.Join(queries, " | "))
	}
}
