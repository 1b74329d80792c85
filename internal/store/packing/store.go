// Package packing holds the packing list state and the views derived from it.
//
// The store keeps an ordered item list plus a filter string. Three views are
// derived from those two inputs: the filtered list, its packed subset and its
// unpacked subset. Callers read the views directly or subscribe to them.
package packing

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/idilsaglam/jetsetter/internal/model"
)

// View names one of the derived views.
type View int

const (
	ViewItems View = iota
	ViewPacked
	ViewUnpacked
)

func (v View) String() string {
	switch v {
	case ViewItems:
		return "items"
	case ViewPacked:
		return "packed"
	case ViewUnpacked:
		return "unpacked"
	}
	return "unknown"
}

// Listener receives a view snapshot. The slice belongs to the listener.
type Listener func(items []model.Item)

type subscription struct {
	view View
	fn   Listener
	seen uint64 // version of the last value handed to fn
}

// snapshot is one consistent evaluation of all three views.
type snapshot struct {
	version  uint64
	items    []model.Item
	packed   []model.Item
	unpacked []model.Item
}

func (s snapshot) view(v View) []model.Item {
	switch v {
	case ViewPacked:
		return s.packed
	case ViewUnpacked:
		return s.unpacked
	default:
		return s.items
	}
}

// Store is the packing list. Build one with New and share the pointer.
type Store struct {
	mu      sync.Mutex
	seq     *model.Sequence
	items   []model.Item
	filter  string
	version uint64

	subs   map[int]*subscription
	nextID int

	// Pending notifications, delivered in version order by one drain at a
	// time. A mutation made from inside a listener is queued behind the
	// current one instead of racing it.
	queue    []snapshot
	cursor   int // next subscriber id for queue[0]
	draining bool
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithSequence sets the id source used by Add.
func WithSequence(seq *model.Sequence) Option {
	return func(s *Store) { s.seq = seq }
}

// WithItems preloads the list. The id source is moved past the highest id.
func WithItems(items []model.Item) Option {
	return func(s *Store) {
		s.items = append([]model.Item(nil), items...)
	}
}

// New builds a store. With no options it is empty and owns a fresh id source.
func New(opts ...Option) *Store {
	s := &Store{subs: make(map[int]*subscription)}
	for _, opt := range opts {
		opt(s)
	}
	if s.seq == nil {
		s.seq = &model.Sequence{}
	}
	for _, it := range s.items {
		s.seq.Observe(it.ID)
	}
	return s
}

// Seed returns the starting list, minted from seq.
func Seed(seq *model.Sequence) []model.Item {
	return []model.Item{
		seq.NewItem("Tooth Brush", false),
		seq.NewItem("Tooth Paste", false),
		seq.NewItem("Deoderant", false),
		seq.NewItem("iPhone Charger", false),
		seq.NewItem("Hoodie", true),
	}
}

// NewSeeded builds a store holding the seed list.
func NewSeeded() *Store {
	seq := &model.Sequence{}
	return New(WithSequence(seq), WithItems(Seed(seq)))
}

// Add appends a new unpacked item and returns it.
func (s *Store) Add(title string) model.Item {
	var added model.Item
	s.update(func(items []model.Item) []model.Item {
		added = s.seq.NewItem(title, false)
		next := make([]model.Item, 0, len(items)+1)
		next = append(next, items...)
		return append(next, added)
	})
	return added
}

// Remove drops the item with the given id. It reports whether one matched;
// an unknown id leaves the list as it was.
func (s *Store) Remove(id int64) bool {
	found := false
	s.update(func(items []model.Item) []model.Item {
		next := make([]model.Item, 0, len(items))
		for _, it := range items {
			if it.ID == id {
				found = true
				continue
			}
			next = append(next, it)
		}
		return next
	})
	return found
}

// Toggle flips Packed on the item with the given id and reports whether
// one matched.
func (s *Store) Toggle(id int64) bool {
	found := false
	s.update(func(items []model.Item) []model.Item {
		next := make([]model.Item, len(items))
		for i, it := range items {
			if it.ID == id {
				it.Packed = !it.Packed
				found = true
			}
			next[i] = it
		}
		return next
	})
	return found
}

// MarkAllAsUnpacked clears Packed on every item.
func (s *Store) MarkAllAsUnpacked() { s.setAllPacked(false) }

// MarkAllPacked sets Packed on every item.
func (s *Store) MarkAllPacked() { s.setAllPacked(true) }

func (s *Store) setAllPacked(packed bool) {
	s.update(func(items []model.Item) []model.Item {
		next := make([]model.Item, len(items))
		for i, it := range items {
			it.Packed = packed
			next[i] = it
		}
		return next
	})
}

// RemoveAll empties the list.
func (s *Store) RemoveAll() {
	s.update(func([]model.Item) []model.Item { return []model.Item{} })
}

// SetFilter replaces the filter. Matching happens at read time and ignores case.
func (s *Store) SetFilter(text string) {
	s.mu.Lock()
	s.filter = text
	s.publishLocked()
	s.mu.Unlock()
	s.drain()
}

// Filter returns the current filter text.
func (s *Store) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Items returns the filtered list.
func (s *Store) Items() []model.Item { return s.read(ViewItems) }

// Packed returns the packed part of the filtered list.
func (s *Store) Packed() []model.Item { return s.read(ViewPacked) }

// Unpacked returns the unpacked part of the filtered list.
func (s *Store) Unpacked() []model.Item { return s.read(ViewUnpacked) }

// All returns the whole list with no filter applied.
func (s *Store) All() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// Version counts mutations. Every mutation call bumps it, no-ops included.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers fn for view. fn is called right away with the current
// value, then again after every mutation. The returned func unsubscribes.
func (s *Store) Subscribe(view View, fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = &subscription{view: view, fn: fn, seen: s.version}
	current := s.snapshotLocked().view(view)
	s.mu.Unlock()

	fn(clone(current))

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// update swaps the list for fn's result and notifies subscribers.
// fn must build a new slice; snapshots already handed out stay untouched.
func (s *Store) update(fn func([]model.Item) []model.Item) {
	s.mu.Lock()
	s.items = fn(s.items)
	s.publishLocked()
	s.mu.Unlock()
	s.drain()
}

// publishLocked bumps the version and queues the new state for subscribers.
func (s *Store) publishLocked() {
	s.version++
	s.queue = append(s.queue, s.snapshotLocked())
}

// drain delivers queued snapshots. Listeners run without the lock held, so
// they may call back into the store; anything they change is queued and
// delivered after the current snapshot reaches every subscriber. A
// subscriber never receives a snapshot older than one it already has.
func (s *Store) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	for {
		fn, items, ok := s.nextDelivery()
		if !ok {
			return
		}
		fn(items)
	}
}

// nextDelivery pops the next (listener, view) pair off the queue.
func (s *Store) nextDelivery() (Listener, []model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) > 0 {
		snap := s.queue[0]
		for s.cursor < s.nextID {
			sub, ok := s.subs[s.cursor]
			s.cursor++
			if !ok || sub.seen >= snap.version {
				continue
			}
			sub.seen = snap.version
			return sub.fn, clone(snap.view(sub.view)), true
		}
		s.queue[0] = snapshot{}
		s.queue = s.queue[1:]
		s.cursor = 0
	}
	return nil, nil, false
}

func (s *Store) read(v View) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked().view(v)
}

func (s *Store) snapshotLocked() snapshot {
	items := filterByPrefix(s.items, s.filter)
	snap := snapshot{version: s.version, items: items}
	for _, it := range items {
		if it.Packed {
			snap.packed = append(snap.packed, it)
		} else {
			snap.unpacked = append(snap.unpacked, it)
		}
	}
	return snap
}

func filterByPrefix(items []model.Item, filter string) []model.Item {
	if filter == "" {
		return clone(items)
	}
	prefix := fold(filter)
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(fold(it.Title), prefix) {
			out = append(out, it)
		}
	}
	return out
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func clone(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}
