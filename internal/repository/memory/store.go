// Package memory is an in-process implementation of the repository ports. It
// mirrors the Postgres semantics (atomic submit, cascades, single-step ledger
// updates) under one mutex and backs tests and STORAGE_DRIVER=memory.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

type Store struct {
	mu sync.Mutex

	places       map[uuid.UUID]*domain.Place
	listings     map[uuid.UUID]*domain.Listing
	listingOrder []uuid.UUID
	users        map[uuid.UUID]*domain.User
	userOrder    []uuid.UUID
	sessions     map[string]*domain.Session
	sessionSeq   int64

	now  func() time.Time
	fail error
}

func NewStore() *Store {
	return &Store{
		places:   make(map[uuid.UUID]*domain.Place),
		listings: make(map[uuid.UUID]*domain.Listing),
		users:    make(map[uuid.UUID]*domain.User),
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// SetFailure makes every subsequent call return err until cleared with nil.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) Places() *PlaceRepository     { return &PlaceRepository{s: s} }
func (s *Store) Listings() *ListingRepository { return &ListingRepository{s: s} }
func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Sessions() *SessionRepository { return &SessionRepository{s: s} }

// lock acquires the store and reports any injected failure.
func (s *Store) lock() error {
	s.mu.Lock()
	if s.fail != nil {
		err := s.fail
		s.mu.Unlock()
		return err
	}
	return nil
}

// placeReferencedLocked reports whether any listing, favorites set or history
// list still points at id.
func (s *Store) placeReferencedLocked(id uuid.UUID) bool {
	for _, l := range s.listings {
		if l.PlaceID == id {
			return true
		}
	}
	key := id.String()
	for _, u := range s.users {
		if containsID(u.Favorites, key) || containsID(u.History, key) {
			return true
		}
	}
	return false
}

func (s *Store) deleteListingLocked(id uuid.UUID) {
	delete(s.listings, id)
	s.listingOrder = removeUUID(s.listingOrder, id)
}

func clonePlace(p *domain.Place) *domain.Place {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Category = append(pq.StringArray(nil), p.Category...)
	if p.Phone != nil {
		v := *p.Phone
		clone.Phone = &v
	}
	if p.Website != nil {
		v := *p.Website
		clone.Website = &v
	}
	return &clone
}

func cloneListing(l *domain.Listing) *domain.Listing {
	clone := *l
	if l.AdminNote != nil {
		v := *l.AdminNote
		clone.AdminNote = &v
	}
	return &clone
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Favorites = append(pq.StringArray(nil), u.Favorites...)
	clone.History = append(pq.StringArray(nil), u.History...)
	clone.PasswordHash = append([]byte(nil), u.PasswordHash...)
	clone.PasswordSalt = append([]byte(nil), u.PasswordSalt...)
	if u.Name != nil {
		v := *u.Name
		clone.Name = &v
	}
	if u.ImageURL != nil {
		v := *u.ImageURL
		clone.ImageURL = &v
	}
	return &clone
}

func containsID(list pq.StringArray, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(list pq.StringArray, id string) pq.StringArray {
	out := make(pq.StringArray, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeUUID(list []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
