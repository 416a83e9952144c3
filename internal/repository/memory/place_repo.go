package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

type PlaceRepository struct {
	s *Store
}

func (r *PlaceRepository) Create(_ context.Context, place *domain.Place) (*domain.Place, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	return clonePlace(r.s.insertPlaceLocked(place)), nil
}

func (s *Store) insertPlaceLocked(place *domain.Place) *domain.Place {
	now := s.now()
	stored := clonePlace(place)
	stored.ID = uuid.New()
	stored.Name = strings.TrimSpace(stored.Name)
	stored.City = strings.TrimSpace(stored.City)
	stored.Address = strings.TrimSpace(stored.Address)
	stored.Category = trimCategories(stored.Category)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.places[stored.ID] = stored
	return stored
}

func (r *PlaceRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Place, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	p, ok := r.s.places[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clonePlace(p), nil
}

func (r *PlaceRepository) List(_ context.Context, filter domain.PlaceListFilter) ([]domain.Place, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	hidden := make(map[uuid.UUID]struct{})
	for _, l := range r.s.listings {
		if l.Status != domain.ListingStatusAccepted {
			hidden[l.PlaceID] = struct{}{}
		}
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	city := strings.TrimSpace(filter.City)
	categories := trimCategories(filter.Categories)

	out := make([]domain.Place, 0)
	for id, p := range r.s.places {
		if _, skip := hidden[id]; skip {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.Address), search) {
			continue
		}
		if city != "" && !strings.EqualFold(p.City, city) {
			continue
		}
		if len(categories) > 0 && !overlaps(p.Category, categories) {
			continue
		}
		if filter.PriceLevel != nil && p.PriceLevel != *filter.PriceLevel {
			continue
		}
		out = append(out, *clonePlace(p))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch filter.Sort {
		case domain.PlaceSortNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case domain.PlaceSortNameDesc:
			if a.Name != b.Name {
				return a.Name > b.Name
			}
		case domain.PlaceSortRatingDesc:
			if a.RatingAverage != b.RatingAverage {
				return a.RatingAverage > b.RatingAverage
			}
			return a.Name < b.Name
		case domain.PlaceSortRatingAsc:
			if a.RatingAverage != b.RatingAverage {
				return a.RatingAverage < b.RatingAverage
			}
			return a.Name < b.Name
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID.String() < b.ID.String()
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *PlaceRepository) Update(_ context.Context, id uuid.UUID, fields domain.PlaceFields) (*domain.Place, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	p, ok := r.s.updatePlaceLocked(id, fields)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clonePlace(p), nil
}

func (s *Store) updatePlaceLocked(id uuid.UUID, fields domain.PlaceFields) (*domain.Place, bool) {
	updated, ok := s.mergePlaceLocked(id, fields)
	if !ok {
		return nil, false
	}
	s.places[id] = updated
	return updated, true
}

// mergePlaceLocked returns the place with fields applied without storing it.
func (s *Store) mergePlaceLocked(id uuid.UUID, fields domain.PlaceFields) (*domain.Place, bool) {
	p, ok := s.places[id]
	if !ok {
		return nil, false
	}
	updated := clonePlace(p)
	fields.Apply(updated)
	updated.Name = strings.TrimSpace(updated.Name)
	updated.City = strings.TrimSpace(updated.City)
	updated.Address = strings.TrimSpace(updated.Address)
	updated.Category = trimCategories(updated.Category)
	updated.UpdatedAt = s.now()
	return updated, true
}

func (r *PlaceRepository) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.places[id]; !ok {
		return sql.ErrNoRows
	}
	for lid, l := range r.s.listings {
		if l.PlaceID == id {
			r.s.deleteListingLocked(lid)
		}
	}
	delete(r.s.places, id)

	key := id.String()
	now := r.s.now()
	for _, u := range r.s.users {
		if containsID(u.Favorites, key) || containsID(u.History, key) {
			u.Favorites = removeID(u.Favorites, key)
			u.History = removeID(u.History, key)
			u.UpdatedAt = now
		}
	}
	return nil
}

func trimCategories(values []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func overlaps(have pq.StringArray, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return make([]T, 0)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var _ ports.PlaceRepository = (*PlaceRepository)(nil)
