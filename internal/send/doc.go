// Package send turns a user message into state updates: it appends the
// message and a placeholder to the active conversation, talks to the backend
// and reconciles the reply into the placeholder.
//
// Two pipelines exist. Stream reads the reply as a sequence of chunks and
// patches each one into the placeholder as it arrives. Sync awaits one
// complete reply and inserts it next to the placeholder. Dispatcher picks
// between them from the Mode alone.
//
// Neither pipeline returns an error. Conversational failures are written to
// ChatState.Error; server-class stream failures go to a faults.Log instead.
// Loading is cleared on every exit path.
package send
