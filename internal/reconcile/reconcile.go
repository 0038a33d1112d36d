// ABOUTME: Reconciler inserts, patches and removes messages in the active conversation
// ABOUTME: Patches are keyed by message ID; citation/image/news lists use sticky replace

package reconcile

import (
	"log/slog"
	"slices"

	"github.com/2389/coven-chat/internal/store"
)

// Metadata travels with a patch. Each non-empty list replaces the stored one;
// empty lists never clear what is already there.
type Metadata struct {
	Organic         []store.Source
	RelatedSearches []store.RelatedSearch
	Images          []store.MediaItem
	News            []store.MediaItem
}

// Reconciler edits messages of the active conversation through a Store.
type Reconciler struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a Reconciler over st. Pass nil logger for default.
func New(st *store.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:  st,
		logger: logger.With("component", "reconcile"),
	}
}

// Append pushes msg onto the active conversation. A message whose ID is
// already in the conversation is rejected; Append reports whether msg was added.
func (r *Reconciler) Append(msg store.Message) bool {
	var added bool
	r.store.Update(func(st *store.ChatState) {
		ok := st.EditActive(func(msgs []store.Message) []store.Message {
			if slices.ContainsFunc(msgs, func(m store.Message) bool { return m.ID == msg.ID }) {
				return msgs
			}
			added = true
			return append(msgs, msg)
		})
		switch {
		case !ok:
			r.logger.Debug("append skipped, no active conversation", "message_id", msg.ID)
		case !added:
			r.logger.Warn("append rejected, duplicate message id", "message_id", msg.ID)
		}
	})
	return added
}

// Contains reports whether the active conversation holds a message with id.
func (r *Reconciler) Contains(id string) bool {
	conv, ok := r.store.Read().ActiveConversation()
	return ok && slices.ContainsFunc(conv.Messages, func(m store.Message) bool { return m.ID == id })
}

// Remove deletes the message with the given ID. Absent IDs are ignored.
func (r *Reconciler) Remove(id string) {
	r.store.Update(func(st *store.ChatState) {
		st.EditActive(func(msgs []store.Message) []store.Message {
			return slices.DeleteFunc(msgs, func(m store.Message) bool { return m.ID == id })
		})
	})
}

// Patch appends delta to the message with the given ID, marks it as an
// assistant message and applies meta. Once the message holds any content it
// stops showing the loading indicator and related searches become visible.
// Absent IDs leave the state untouched.
func (r *Reconciler) Patch(id, delta string, meta Metadata) {
	r.patch(id, delta, meta, false)
}

// Seed attaches metadata to a placeholder before any content has arrived.
// The placeholder is put back in the not-yet-started state: it shows the
// loading indicator and related searches stay hidden.
func (r *Reconciler) Seed(id string, meta Metadata) {
	r.patch(id, "", meta, true)
}

func (r *Reconciler) patch(id, delta string, meta Metadata, seeding bool) {
	r.store.Update(func(st *store.ChatState) {
		conv, ok := st.ActiveConversation()
		if !ok || !slices.ContainsFunc(conv.Messages, func(m store.Message) bool { return m.ID == id }) {
			r.logger.Debug("patch target not found", "message_id", id)
			return
		}

		var hasContent bool
		st.EditActive(func(msgs []store.Message) []store.Message {
			for i := range msgs {
				if msgs[i].ID != id {
					continue
				}
				m := &msgs[i]
				m.Content += delta
				m.Role = store.RoleAssistant
				if len(meta.Organic) > 0 {
					m.MetaData = slices.Clone(meta.Organic)
				}
				hasContent = !seeding && m.Content != ""
				m.ShowLoading = !hasContent
			}
			return msgs
		})

		st.ShowRelatedSearches = hasContent
		if len(meta.Images) > 0 {
			st.Images = slices.Clone(meta.Images)
		}
		if len(meta.News) > 0 {
			st.News = slices.Clone(meta.News)
		}
		if len(meta.RelatedSearches) > 0 {
			st.RelatedSearches = slices.Clone(meta.RelatedSearches)
		}
	})
}
