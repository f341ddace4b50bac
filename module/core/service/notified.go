package service

import (
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// NotifiedSet records the landmark ids already alerted in a session. Ids are
// only ever added.
type NotifiedSet struct {
	ids cmap.ConcurrentMap[string, time.Time]

	mu    sync.Mutex
	order []string
}

func NewNotifiedSet() *NotifiedSet {
	return &NotifiedSet{ids: cmap.New[time.Time]()}
}

func (s *NotifiedSet) Has(id string) bool {
	return s.ids.Has(id)
}

// Add marks id as notified at the given time. It reports false when id was
// already present.
func (s *NotifiedSet) Add(id string, at time.Time) bool {
	if !s.ids.SetIfAbsent(id, at) {
		return false
	}
	s.mu.Lock()
	s.order = append(s.order, id)
	s.mu.Unlock()
	return true
}

func (s *NotifiedSet) NotifiedAt(id string) (time.Time, bool) {
	return s.ids.Get(id)
}

func (s *NotifiedSet) Len() int {
	return s.ids.Count()
}

// IDs returns the notified ids in the order they were added.
func (s *NotifiedSet) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}
