package memory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

type ListingRepository struct {
	s *Store
}

func (r *ListingRepository) CreateWithPlace(_ context.Context, place *domain.Place, ownerID uuid.UUID) (*domain.ListingDetail, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[ownerID]; !ok {
		return nil, sql.ErrNoRows
	}
	if r.s.ownerHasPlaceLocked(ownerID, place, uuid.Nil) {
		return nil, ports.ErrConflict
	}

	stored := r.s.insertPlaceLocked(place)
	now := r.s.now()
	listing := &domain.Listing{
		ID:        uuid.New(),
		PlaceID:   stored.ID,
		OwnerID:   ownerID,
		Status:    domain.ListingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.listings[listing.ID] = listing
	r.s.listingOrder = append(r.s.listingOrder, listing.ID)

	return &domain.ListingDetail{Listing: *cloneListing(listing), Place: clonePlace(stored)}, nil
}

// ownerHasPlaceLocked reports whether ownerID has a listing other than except
// whose place matches place on name, address and city.
func (s *Store) ownerHasPlaceLocked(ownerID uuid.UUID, place *domain.Place, except uuid.UUID) bool {
	for id, l := range s.listings {
		if l.OwnerID != ownerID || id == except {
			continue
		}
		if existing := s.places[l.PlaceID]; existing != nil && samePlace(existing, place) {
			return true
		}
	}
	return false
}

func samePlace(a, b *domain.Place) bool {
	eq := func(x, y string) bool { return strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(y)) }
	return eq(a.Name, b.Name) && eq(a.Address, b.Address) && eq(a.City, b.City)
}

func (r *ListingRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) FindDetail(_ context.Context, id uuid.UUID) (*domain.ListingDetail, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	detail, ok := r.s.detailLocked(l)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &detail, nil
}

func (s *Store) detailLocked(l *domain.Listing) (domain.ListingDetail, bool) {
	place, ok := s.places[l.PlaceID]
	if !ok {
		return domain.ListingDetail{}, false
	}
	owner, ok := s.users[l.OwnerID]
	if !ok {
		return domain.ListingDetail{}, false
	}
	submitter := &domain.ListingSubmitter{Email: owner.Email}
	if owner.Name != nil {
		name := *owner.Name
		submitter.Name = &name
	}
	return domain.ListingDetail{Listing: *cloneListing(l), Place: clonePlace(place), Submitter: submitter}, true
}

func (r *ListingRepository) List(_ context.Context, filter domain.ListingFilter) ([]domain.ListingDetail, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := make([]domain.ListingDetail, 0)
	for i := len(r.s.listingOrder) - 1; i >= 0; i-- {
		l := r.s.listings[r.s.listingOrder[i]]
		if filter.OwnerID != nil && l.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, l.Status) {
			continue
		}
		if detail, ok := r.s.detailLocked(l); ok {
			out = append(out, detail)
		}
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

func hasStatus(statuses []domain.ListingStatus, s domain.ListingStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (r *ListingRepository) SetStatus(_ context.Context, id uuid.UUID, status domain.ListingStatus, note *string) (*domain.Listing, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	updated := cloneListing(l)
	updated.Status = status
	updated.AdminNote = nil
	if note != nil && strings.TrimSpace(*note) != "" {
		v := strings.TrimSpace(*note)
		updated.AdminNote = &v
	}
	updated.NeedsReview = false
	updated.UpdatedAt = r.s.now()
	r.s.listings[id] = updated
	return cloneListing(updated), nil
}

func (r *ListingRepository) UpdatePlace(_ context.Context, id uuid.UUID, fields domain.PlaceFields, repend bool) (*domain.ListingDetail, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	place, ok := r.s.mergePlaceLocked(l.PlaceID, fields)
	if !ok {
		return nil, sql.ErrNoRows
	}
	if r.s.ownerHasPlaceLocked(l.OwnerID, place, id) {
		return nil, ports.ErrConflict
	}
	r.s.places[l.PlaceID] = place
	updated := cloneListing(l)
	if repend {
		updated.Status = domain.ListingStatusPending
		updated.NeedsReview = true
	}
	updated.UpdatedAt = r.s.now()
	r.s.listings[id] = updated
	return &domain.ListingDetail{Listing: *cloneListing(updated), Place: clonePlace(place)}, nil
}

func (r *ListingRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if err := r.s.lock(); err != nil {
		return false, err
	}
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return false, sql.ErrNoRows
	}
	r.s.deleteListingLocked(id)
	if r.s.placeReferencedLocked(l.PlaceID) {
		return false, nil
	}
	delete(r.s.places, l.PlaceID)
	return true, nil
}

var _ ports.ListingRepository = (*ListingRepository)(nil)
