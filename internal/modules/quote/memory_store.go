// README: In-process quote store for single-instance runs and tests; consume is an atomic CAS.
package quote

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"transferquote/internal/types"
)

type MemoryStore struct {
	quotes sync.Map // types.ID -> *memoryEntry
}

type memoryEntry struct {
	quote Quote
	used  atomic.Bool
	usage atomic.Pointer[usage]
}

type usage struct {
	at    time.Time
	class types.VehicleClass
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, q *Quote) error {
	e := &memoryEntry{quote: *q}
	e.quote.IsUsed, e.quote.UsedAt, e.quote.SelectedClass = false, nil, ""
	if _, loaded := s.quotes.LoadOrStore(q.ID, e); loaded {
		return fmt.Errorf("quote %s already exists", q.ID)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Quote, error) {
	v, ok := s.quotes.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	e := v.(*memoryEntry)
	q := e.quote
	if u := e.usage.Load(); u != nil {
		at := u.at
		q.IsUsed = true
		q.UsedAt = &at
		q.SelectedClass = u.class
	} else if e.used.Load() {
		q.IsUsed = true
	}
	return &q, nil
}

func (s *MemoryStore) MarkUsed(_ context.Context, id types.ID, class types.VehicleClass, now time.Time) error {
	v, ok := s.quotes.Load(id)
	if !ok {
		return ErrNotFound
	}
	e := v.(*memoryEntry)
	if e.quote.ExpiredAt(now) {
		return ErrExpired
	}
	if !e.used.CompareAndSwap(false, true) {
		return ErrAlreadyUsed
	}
	e.usage.Store(&usage{at: now, class: class})
	return nil
}
