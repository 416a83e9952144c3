package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/metrics"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
	"github.com/njprem/PlaceBook_BackEnd/internal/transport/events"
)

const (
	defaultPlacePageSize = 20
	maxPlacePageSize     = 100
)

type PlaceServiceConfig struct {
	AllowedCategories []string
}

// PlaceQuery is the public directory filter. Categories match on overlap.
type PlaceQuery struct {
	Search     string
	City       string
	Categories []string
	PriceLevel *int
	Sort       string
	Limit      int
	Offset     int
}

type PlaceDeletedEvent struct {
	PlaceID    uuid.UUID `json:"place_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PlaceService struct {
	places ports.PlaceRepository
	cache  ports.PlaceCache
	events ports.EventPublisher
	logger *zap.Logger
	rules  placeRules
	now    func() time.Time
}

func NewPlaceService(places ports.PlaceRepository, cache ports.PlaceCache, publisher ports.EventPublisher, logger *zap.Logger, cfg PlaceServiceConfig) *PlaceService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaceService{
		places: places,
		cache:  cache,
		events: publisher,
		logger: logger,
		rules: placeRules{
			requireAll:        true,
			allowRatings:      true,
			allowedCategories: newCategorySet(cfg.AllowedCategories),
		},
		now: time.Now,
	}
}

func (s *PlaceService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

func (s *PlaceService) List(ctx context.Context, q PlaceQuery) ([]domain.Place, error) {
	sortKey, err := parsePlaceSort(q.Sort)
	if err != nil {
		return nil, err
	}
	if q.PriceLevel != nil && (*q.PriceLevel < domain.MinPriceLevel || *q.PriceLevel > domain.MaxPriceLevel) {
		return nil, validationError("price_level must be between 1 and 4")
	}
	limit, offset := normalizePagination(q.Limit, q.Offset, defaultPlacePageSize, maxPlacePageSize)
	var categories []string
	for _, c := range q.Categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			categories = append(categories, c)
		}
	}
	places, err := s.places.List(ctx, domain.PlaceListFilter{
		Search:     strings.TrimSpace(q.Search),
		City:       strings.TrimSpace(q.City),
		Categories: categories,
		PriceLevel: q.PriceLevel,
		Sort:       sortKey,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, storageError("list places", err)
	}
	return places, nil
}

// Get reads through the place cache. Cache failures degrade to the store.
func (s *PlaceService) Get(ctx context.Context, id uuid.UUID) (*domain.Place, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("place cache read failed", zap.String("place_id", id.String()), zap.Error(err))
		} else {
			metrics.ObservePlaceCache(ok)
			if ok {
				return cached, nil
			}
		}
	}
	place, err := s.places.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, storageError("find place", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, place); err != nil {
			s.logger.Warn("place cache write failed", zap.String("place_id", id.String()), zap.Error(err))
		}
	}
	return place, nil
}

func (s *PlaceService) Create(ctx context.Context, p domain.Principal, draft domain.PlaceFields) (*domain.Place, error) {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	fields, err := normalizePlaceFields(draft, s.rules)
	if err != nil {
		return nil, err
	}
	place := &domain.Place{}
	fields.Apply(place)
	created, err := s.places.Create(ctx, place)
	if err != nil {
		return nil, storageError("create place", err)
	}
	return created, nil
}

func (s *PlaceService) Update(ctx context.Context, p domain.Principal, id uuid.UUID, edits domain.PlaceFields) (*domain.Place, error) {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !hasPlaceChanges(edits) {
		return nil, validationError("no changes supplied")
	}
	rules := s.rules
	rules.requireAll = false
	fields, err := normalizePlaceFields(edits, rules)
	if err != nil {
		return nil, err
	}
	updated, err := s.places.Update(ctx, id, fields)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, storageError("update place", err)
	}
	invalidatePlace(ctx, s.cache, s.logger, id)
	return updated, nil
}

// Delete removes the place with its listings and prunes it from every ledger.
func (s *PlaceService) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.places.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrPlaceNotFound
		}
		return storageError("delete place", err)
	}
	invalidatePlace(ctx, s.cache, s.logger, id)
	publishEvent(ctx, s.events, s.logger, events.SubjectPlaceDeleted, PlaceDeletedEvent{
		PlaceID:    id,
		ActorID:    p.UserID,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

func parsePlaceSort(raw string) (domain.PlaceSort, error) {
	switch sortKey := domain.PlaceSort(strings.ToLower(strings.TrimSpace(raw))); sortKey {
	case "":
		return domain.PlaceSortNewest, nil
	case domain.PlaceSortNewest, domain.PlaceSortNameAsc, domain.PlaceSortNameDesc,
		domain.PlaceSortRatingDesc, domain.PlaceSortRatingAsc:
		return sortKey, nil
	default:
		return "", validationError("unknown sort %q", raw)
	}
}
