// Package reconcile applies message-level edits to the active conversation.
//
// Every operation is scoped to the conversation named by
// ChatState.ActiveConversationID and is a no-op when none is active:
//
//   - Append(msg): push a message
//   - Remove(id): drop the message with that ID
//   - Patch(id, delta, meta): concatenate streamed text onto a message
//   - Seed(id, meta): attach metadata to a placeholder before content arrives
//
// Citation, image, news and related-search lists follow sticky replace: a
// non-empty incoming list replaces the stored one, an empty list is ignored.
package reconcile
