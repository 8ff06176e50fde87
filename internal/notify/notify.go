// Package notify delivers "settings changed" notifications to subscribers.
//
// Delivery is synchronous on the goroutine that made the change. The
// subscriber table is guarded so subscriptions can be added or removed from
// any goroutine.
package notify

import (
	"sort"
	"strings"
	"sync"
)

// ChangeType represents the type of settings change.
type ChangeType int

const (
	// ChangeComment indicates the comment header was replaced.
	ChangeComment ChangeType = iota

	// ChangeValue indicates the JSON value was modified.
	ChangeValue

	// ChangeSaved indicates the document was written to disk.
	ChangeSaved
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeComment:
		return "comment"
	case ChangeValue:
		return "value"
	case ChangeSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Change represents a settings change event.
type Change struct {
	// Type is the type of change.
	Type ChangeType

	// Key is the dotted value path that changed. Empty when the whole
	// value or the comment changed.
	Key string

	// Path is the file path for saved events, or the document's source path.
	Path string
}

// Observer is called when settings change.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	key      string
	observer Observer
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]entry
	nextID    uint64
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{observers: make(map[uint64]entry)}
}

// Subscribe registers observer for every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribeKey("", observer)
}

// SubscribeKey registers observer for changes to key or anything below it.
// Changes without a key (comment, whole value, save) are always delivered.
func (n *Notifier) SubscribeKey(key string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.observers[n.nextID] = entry{key: key, observer: observer}
	return &Subscription{id: n.nextID, notifier: n}
}

func (e entry) matches(change Change) bool {
	if e.key == "" || change.Key == "" || change.Key == e.key {
		return true
	}
	return strings.HasPrefix(change.Key, e.key+".") || strings.HasPrefix(e.key, change.Key+".")
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Notify calls every matching observer in subscription order. Observers
// may subscribe or unsubscribe from inside the callback.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id, e := range n.observers {
		if e.matches(change) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}
	n.mu.RUnlock()

	for _, observer := range observers {
		observer(change)
	}
}
