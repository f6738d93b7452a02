// Package memstore is an in-process implementation of the advertiser,
// event and waitlist stores.  It backs STORE_DRIVER=memory and the service
// tests.  All three views share one mutex so that Accept is atomic across
// the waitlist and the event table, like the MySQL transaction.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/repository"
)

// Store holds the shared state.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	advertisers map[uint64]model.Advertiser
	events      map[uint64]model.Event
	entries     map[uint64]model.WaitlistEntry
	nextAdv     uint64
	nextEvent   uint64
	nextEntry   uint64

	// FailEventInsert, when set, makes the next event insert fail with the
	// returned error.  Used to exercise rollback of Accept.
	FailEventInsert func() error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		advertisers: make(map[uint64]model.Advertiser),
		events:      make(map[uint64]model.Event),
		entries:     make(map[uint64]model.WaitlistEntry),
	}
}

// SetClock replaces the clock used for data_criacao/data_solicitacao defaults.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Advertisers returns the advertiser view.
func (s *Store) Advertisers() *AdvertiserStore { return &AdvertiserStore{s: s} }

// Events returns the event view.
func (s *Store) Events() *EventStore { return &EventStore{s: s} }

// Waitlist returns the waitlist view.
func (s *Store) Waitlist() *WaitlistStore { return &WaitlistStore{s: s} }

// AdvertiserStore is the advertiser view of a Store.
type AdvertiserStore struct{ s *Store }

// Create assigns the next id and the creation time.
func (a *AdvertiserStore) Create(_ context.Context, adv *model.Advertiser) error {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAdv++
	adv.ID = s.nextAdv
	adv.CreatedAt = s.now()
	s.advertisers[adv.ID] = *adv
	return nil
}

// GetByID returns repository.ErrAdvertiserNotFound for unknown ids.
func (a *AdvertiserStore) GetByID(_ context.Context, id uint64) (*model.Advertiser, error) {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	adv, ok := s.advertisers[id]
	if !ok {
		return nil, repository.ErrAdvertiserNotFound
	}
	return &adv, nil
}

// GetByUserID returns the oldest advertiser owned by userID.
func (a *AdvertiserStore) GetByUserID(_ context.Context, userID uint64) (*model.Advertiser, error) {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *model.Advertiser
	for _, adv := range s.advertisers {
		if adv.UserID == userID && (found == nil || adv.ID < found.ID) {
			cp := adv
			found = &cp
		}
	}
	if found == nil {
		return nil, repository.ErrAdvertiserNotFound
	}
	return found, nil
}

// EventStore is the event view of a Store.
type EventStore struct{ s *Store }

// Create inserts ev with the next id.
func (e *EventStore) Create(_ context.Context, ev *model.Event) error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEventLocked(ev)
}

func (s *Store) insertEventLocked(ev *model.Event) error {
	if s.FailEventInsert != nil {
		if err := s.FailEventInsert(); err != nil {
			return err
		}
	}
	s.nextEvent++
	ev.ID = s.nextEvent
	ev.CreatedAt = s.now()
	ev.StartsAt = ev.StartsAt.UTC()
	ev.EndsAt = ev.EndsAt.UTC()
	s.events[ev.ID] = *ev
	return nil
}

// GetByID returns repository.ErrEventNotFound for unknown ids.
func (e *EventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &ev, nil
}

// ListByAdvertiser orders by start time, then id, in the given direction.
func (e *EventStore) ListByAdvertiser(_ context.Context, advertiserID uint64, order model.SortOrder) ([]model.Event, error) {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, 0)
	for _, ev := range s.events {
		if ev.AdvertiserID == advertiserID {
			out = append(out, ev)
		}
	}
	sortEvents(out, order)
	return out, nil
}

// UpdateStatus sets status without any transition rule.
func (e *EventStore) UpdateStatus(_ context.Context, id uint64, status model.EventStatus) error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	ev.Status = status
	s.events[id] = ev
	return nil
}

// FindOverlapping returns events of advertiserID intersecting [start, end),
// excluding excludeID.
func (e *EventStore) FindOverlapping(_ context.Context, advertiserID uint64, start, end time.Time, excludeID uint64) ([]model.Event, error) {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, 0)
	for _, ev := range s.events {
		if ev.AdvertiserID == advertiserID && ev.ID != excludeID && ev.Overlaps(start, end) {
			out = append(out, ev)
		}
	}
	sortEvents(out, model.SortAsc)
	return out, nil
}

func sortEvents(evs []model.Event, order model.SortOrder) {
	sort.Slice(evs, func(i, j int) bool {
		a, b := evs[i], evs[j]
		if order == model.SortDesc {
			a, b = b, a
		}
		if !a.StartsAt.Equal(b.StartsAt) {
			return a.StartsAt.Before(b.StartsAt)
		}
		return a.ID < b.ID
	})
}

// WaitlistStore is the waitlist view of a Store.
type WaitlistStore struct{ s *Store }

// Create stores entry as a fresh pendente request.
func (w *WaitlistStore) Create(_ context.Context, entry *model.WaitlistEntry) error {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntry++
	entry.ID = s.nextEntry
	entry.Status = model.WaitlistPending
	entry.RequestedAt = s.now()
	entry.StartsAt = entry.StartsAt.UTC()
	entry.EndsAt = entry.EndsAt.UTC()
	entry.RejectReason, entry.SuggestedDate, entry.SuggestedTime = nil, nil, nil
	entry.CreatedEventID, entry.RespondedAt = nil, nil
	s.entries[entry.ID] = *entry
	return nil
}

// GetByID returns repository.ErrEntryNotFound for unknown ids.
func (w *WaitlistStore) GetByID(_ context.Context, id uint64) (*model.WaitlistEntry, error) {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, repository.ErrEntryNotFound
	}
	return &entry, nil
}

// ListByAdvertiser lists requests addressed to advertiserID, newest first.
func (w *WaitlistStore) ListByAdvertiser(_ context.Context, advertiserID uint64) ([]model.WaitlistEntry, error) {
	return w.filter(func(e model.WaitlistEntry) bool { return e.AdvertiserID == advertiserID }), nil
}

// ListByUser lists requests submitted by userID, newest first.
func (w *WaitlistStore) ListByUser(_ context.Context, userID uint64) ([]model.WaitlistEntry, error) {
	return w.filter(func(e model.WaitlistEntry) bool { return e.RequesterID == userID }), nil
}

func (w *WaitlistStore) filter(keep func(model.WaitlistEntry) bool) []model.WaitlistEntry {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.WaitlistEntry, 0)
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.After(out[j].RequestedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Accept mirrors the MySQL transaction: nothing is written unless both the
// status change and the event insert succeed.
func (w *WaitlistStore) Accept(_ context.Context, id uint64, ev *model.Event, at time.Time) error {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || entry.Status != model.WaitlistPending {
		return repository.ErrConflict
	}
	if err := s.insertEventLocked(ev); err != nil {
		return err
	}
	at = at.UTC()
	eventID := ev.ID
	entry.Status = model.WaitlistAccepted
	entry.RespondedAt = &at
	entry.CreatedEventID = &eventID
	s.entries[id] = entry
	return nil
}

// Resolve applies a rejection or counter-proposal when the entry is still
// pendente and returns repository.ErrConflict otherwise.
func (w *WaitlistStore) Resolve(_ context.Context, id uint64, res model.Resolution) error {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || entry.Status != model.WaitlistPending {
		return repository.ErrConflict
	}
	at := res.RespondedAt.UTC()
	entry.Status = res.Status
	entry.RejectReason = res.RejectReason
	entry.SuggestedDate = res.SuggestedDate
	entry.SuggestedTime = res.SuggestedTime
	entry.RespondedAt = &at
	s.entries[id] = entry
	return nil
}
