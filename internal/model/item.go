package model

import "sync/atomic"

// Item is the domain model for a packing-list entry.
// ID and Title are fixed at creation; only Packed changes.
type Item struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Packed bool   `json:"packed"`
}

// Sequence hands out item ids. Ids only ever grow, so every id it returns
// is distinct from all earlier ones. The zero value is ready to use.
type Sequence struct {
	last atomic.Int64
}

// Next returns a fresh id.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Observe makes sure ids handed out later are greater than id.
// Used when items come from somewhere else (a snapshot file).
func (s *Sequence) Observe(id int64) {
	for {
		cur := s.last.Load()
		if id <= cur {
			return
		}
		if s.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

// NewItem mints an item with a fresh id.
func (s *Sequence) NewItem(title string, packed bool) Item {
	return Item{ID: s.Next(), Title: title, Packed: packed}
}
