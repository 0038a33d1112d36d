// ABOUTME: Store owns the single ChatState and publishes every change to subscribers
// ABOUTME: Exposes Read/Update/Merge/Subscribe; delivery is synchronous and in mutation order

package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Subscriber receives the state produced by each Update or Merge.
type Subscriber func(ChatState)

type subscription struct {
	id   string
	fn   Subscriber
	stop chan struct{}
}

// Store is the state owner for one application instance. It is safe for use
// from multiple goroutines; mutations are serialized and each one is fully
// delivered to subscribers before the next one is applied.
type Store struct {
	// publishMu serializes mutate+deliver so subscribers observe states in
	// the order they were produced.
	publishMu sync.Mutex

	mu     sync.RWMutex
	state  ChatState
	subs   []subscription
	logger *slog.Logger
}

// New creates a Store holding Initial(). Pass nil logger for default.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:  Initial(),
		logger: logger.With("component", "store"),
	}
}

// Read returns the current snapshot. Snapshots are never modified after
// they are returned.
func (s *Store) Read() ChatState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn to a shallow copy of the live state and publishes the
// result. fn must not write into slices it did not allocate; use
// ChatState.EditActive for message edits and assign fresh slices otherwise.
// Subscribers must not call Update or Merge.
func (s *Store) Update(fn func(*ChatState)) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	next, subs := s.apply(fn)
	for _, sub := range subs {
		sub.fn(next)
	}
}

func (s *Store) apply(fn func(*ChatState)) (ChatState, []subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	fn(&next)
	s.state = next
	return next, slices.Clone(s.subs)
}

// Merge shallow-merges the non-nil fields of p into the state.
func (s *Store) Merge(p Partial) {
	s.Update(p.apply)
}

// Reset restores the default state.
func (s *Store) Reset() {
	s.Update(func(st *ChatState) {
		*st = Initial()
	})
	s.logger.Debug("state reset")
}

// Subscribe registers fn and returns a subscription ID. The subscription is
// removed when ctx is cancelled or Unsubscribe is called.
func (s *Store) Subscribe(ctx context.Context, fn Subscriber) string {
	id := uuid.New().String()
	stop := make(chan struct{})

	s.mu.Lock()
	s.subs = append(s.subs, subscription{id: id, fn: fn, stop: stop})
	s.mu.Unlock()

	s.logger.Debug("subscriber added", "sub_id", id)

	go func() {
		select {
		case <-ctx.Done():
			s.Unsubscribe(id)
		case <-stop:
		}
	}()

	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (s *Store) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.subs, func(sub subscription) bool { return sub.id == id })
	if i < 0 {
		return
	}
	close(s.subs[i].stop)
	s.subs = slices.Delete(s.subs, i, i+1)

	s.logger.Debug("subscriber removed", "sub_id", id)
}
