// ABOUTME: Bounded, TTL-expiring list of low-level faults (server errors, broken transports)
// ABOUTME: Repeats of the same fault collapse into one entry with a count

package faults

import (
	"container/list"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Content types attached to a fault body.
const (
	ContentTypeHTML  = "text/html"
	ContentTypePlain = "text/plain"
)

// Fault is one recorded low-level failure.
type Fault struct {
	ID          string
	Status      int
	Message     string
	ContentType string
	At          time.Time
	Count       int
}

// ContentTypeOf returns ContentTypeHTML when body starts with a doctype
// declaration, ContentTypePlain otherwise.
func ContentTypeOf(body string) string {
	head := strings.ToLower(strings.TrimSpace(body))
	if strings.HasPrefix(head, "<!doctype html") {
		return ContentTypeHTML
	}
	return ContentTypePlain
}

type entry struct {
	fault   Fault
	element *list.Element
}

// Log is a thread-safe, TTL-based, size-limited fault list. Insertion order
// is kept in a doubly-linked list so eviction of the oldest entry is O(1).
type Log struct {
	mu      sync.RWMutex
	byKey   map[string]*entry
	order   *list.List // keys, oldest at front
	ttl     time.Duration
	maxSize int
	logger  *slog.Logger
	done    chan struct{}
	closed  bool
}

// New creates a fault log. A ttl of zero keeps faults until they are
// dismissed or evicted. Pass nil logger for default.
func New(ttl time.Duration, maxSize int, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSize <= 0 {
		maxSize = 1
	}
	l := &Log{
		byKey:   make(map[string]*entry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		logger:  logger.With("component", "faults"),
		done:    make(chan struct{}),
	}
	if ttl > 0 {
		go l.cleanup()
	}
	return l
}

func faultKey(f Fault) string {
	return fmt.Sprintf("%d|%s", f.Status, f.Message)
}

// Add records f and returns the stored entry. A fault equal in status and
// message to a live one bumps that entry's count and makes it newest.
func (l *Log) Add(f Fault) Fault {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	key := faultKey(f)

	if e, exists := l.byKey[key]; exists {
		if !l.expired(e, now) {
			e.fault.Count++
			e.fault.At = now
			l.order.MoveToBack(e.element)
			return e.fault
		}
		l.removeLocked(key)
	}

	if len(l.byKey) >= l.maxSize {
		l.evictOldest()
	}

	f.ID = uuid.New().String()
	f.At = now
	f.Count = 1
	if f.ContentType == "" {
		f.ContentType = ContentTypeOf(f.Message)
	}

	elem := l.order.PushBack(key)
	l.byKey[key] = &entry{fault: f, element: elem}

	l.logger.Warn("fault recorded",
		"fault_id", f.ID,
		"status", f.Status,
		"content_type", f.ContentType)

	return f
}

// List returns the live faults, oldest first.
func (l *Log) List() []Fault {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := time.Now()
	out := make([]Fault, 0, len(l.byKey))
	for el := l.order.Front(); el != nil; el = el.Next() {
		key, _ := el.Value.(string)
		e := l.byKey[key]
		if e == nil || l.expired(e, now) {
			continue
		}
		out = append(out, e.fault)
	}
	return out
}

// Dismiss removes the fault with the given ID. Returns false if absent.
func (l *Log) Dismiss(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.byKey {
		if e.fault.ID == id {
			l.removeLocked(key)
			return true
		}
	}
	return false
}

// Clear removes every fault.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.byKey = make(map[string]*entry)
	l.order.Init()
}

func (l *Log) expired(e *entry, now time.Time) bool {
	return l.ttl > 0 && now.Sub(e.fault.At) >= l.ttl
}

// removeLocked drops key. Must be called with mu held.
func (l *Log) removeLocked(key string) {
	e, ok := l.byKey[key]
	if !ok {
		return
	}
	l.order.Remove(e.element)
	delete(l.byKey, key)
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (l *Log) evictOldest() {
	front := l.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	l.removeLocked(key)
}

// cleanup periodically drops expired faults until Close is called.
func (l *Log) cleanup() {
	interval := l.ttl
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.runCleanup()
		case <-l.done:
			return
		}
	}
}

func (l *Log) runCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.byKey {
		if l.expired(e, now) {
			l.removeLocked(key)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		close(l.done)
		l.closed = true
	}
}
