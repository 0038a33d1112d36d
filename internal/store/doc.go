// Package store owns the client-side chat state.
//
// # Overview
//
// A Store holds exactly one ChatState for the lifetime of an application
// instance. Other packages never keep their own copy; they read a snapshot
// or ask the Store to change it:
//
//	st := store.New(logger)
//	snap := st.Read()
//	st.Merge(store.Partial{Loading: store.Ptr(true)})
//	st.Update(func(s *store.ChatState) { ... })
//
// # Snapshots
//
// Snapshots are plain values. Slices inside a snapshot are never written
// after publication: mutations allocate replacement slices. Message edits go
// through ChatState.EditActive, which copies only the active conversation so
// every other conversation keeps its backing array.
//
// # Subscriptions
//
// Subscribe registers a callback that receives the new state after every
// Update or Merge. Delivery happens on the mutating goroutine, before the
// mutation call returns, in mutation order.
package store
