package service

import (
	"context"
	"errors"
	"fmt"
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
	maxListingPageSize = 200
	maxAdminNoteLength     = 1000
)

type ListingServiceConfig struct {
	AllowedCategories []string
}

// ListingQuery is the admin listing filter. Status is a comma separated list.
type ListingQuery struct {
	Status string
	Limit  int
	Offset int
}

// PageLimit is the limit ListAll applies: 0 (everything) when none was asked
// for, otherwise the requested limit capped at the page maximum.
func (q ListingQuery) PageLimit() int {
	if q.Limit <= 0 {
		return 0
	}
	if q.Limit > maxListingPageSize {
		return maxListingPageSize
	}
	return q.Limit
}

type ListingService struct {
	listings ports.ListingRepository
	users    ports.UserRepository
	cache    ports.PlaceCache
	events   ports.EventPublisher
	logger   *zap.Logger
	rules    placeRules
	now      func() time.Time
}

func NewListingService(listings ports.ListingRepository, users ports.UserRepository, cache ports.PlaceCache, publisher ports.EventPublisher, logger *zap.Logger, cfg ListingServiceConfig) *ListingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		listings: listings,
		users:    users,
		cache:    cache,
		events:   publisher,
		logger:   logger,
		rules:    placeRules{requireAll: true, allowedCategories: newCategorySet(cfg.AllowedCategories)},
		now:      time.Now,
	}
}

func (s *ListingService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

func (s *ListingService) Submit(ctx context.Context, p domain.Principal, draft domain.PlaceFields) (*domain.ListingDetail, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	fields, err := normalizePlaceFields(draft, s.rules)
	if err != nil {
		return nil, err
	}
	place := &domain.Place{}
	fields.Apply(place)

	detail, err := s.listings.CreateWithPlace(ctx, place, p.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, ErrDuplicateListing
		}
		return nil, storageError("create listing", err)
	}
	metrics.ObserveListingTransition("submit", string(detail.Status))
	s.publish(ctx, events.SubjectListingSubmitted, s.event(p, &detail.Listing))
	return detail, nil
}

func (s *ListingService) ListAll(ctx context.Context, p domain.Principal, q ListingQuery) ([]domain.ListingDetail, error) {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	statuses, err := parseStatusFilter(q.Status)
	if err != nil {
		return nil, err
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	items, err := s.listings.List(ctx, domain.ListingFilter{Statuses: statuses, Limit: q.PageLimit(), Offset: offset})
	if err != nil {
		return nil, storageError("list listings", err)
	}
	return items, nil
}

func (s *ListingService) ListMine(ctx context.Context, p domain.Principal) ([]domain.ListingDetail, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	owner := p.UserID
	items, err := s.listings.List(ctx, domain.ListingFilter{OwnerID: &owner})
	if err != nil {
		return nil, storageError("list own listings", err)
	}
	for i := range items {
		items[i].Submitter = nil
	}
	return items, nil
}

func (s *ListingService) GetOne(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.ListingDetail, error) {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return nil, err
	}
	detail, err := s.listings.FindDetail(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, storageError("find listing", err)
	}
	if err := RequireOwner(p, detail.OwnerID); err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		detail.Submitter = nil
	}
	return detail, nil
}

// UpdateStatus moves a listing to any of the three states. Accepting a listing
// promotes a plain user submitter to owner.
func (s *ListingService) UpdateStatus(ctx context.Context, p domain.Principal, id uuid.UUID, rawStatus string, note *string) (*domain.Listing, error) {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	status, ok := domain.ParseListingStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not one of pending, accepted, rejected", ErrInvalidStatus, rawStatus)
	}
	if note != nil {
		trimmed := strings.TrimSpace(*note)
		if len([]rune(trimmed)) > maxAdminNoteLength {
			return nil, validationError("admin_note is too long")
		}
		if trimmed == "" {
			note = nil
		} else {
			note = &trimmed
		}
	}

	listing, err := s.listings.SetStatus(ctx, id, status, note)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, storageError("set listing status", err)
	}

	if status == domain.ListingStatusAccepted {
		promoted, err := s.users.PromoteRole(ctx, listing.OwnerID, domain.RoleUser, domain.RoleOwner)
		if err != nil {
			s.logger.Warn("promote listing owner failed",
				zap.String("listing_id", listing.ID.String()),
				zap.String("owner_id", listing.OwnerID.String()),
				zap.Error(err))
		} else if promoted {
			s.logger.Info("listing owner promoted",
				zap.String("owner_id", listing.OwnerID.String()))
		}
	}
	s.invalidate(ctx, listing.PlaceID)
	metrics.ObserveListingTransition("status", string(listing.Status))
	s.publish(ctx, events.SubjectListingStatus, s.event(p, listing))
	return listing, nil
}

// UpdateOwn edits the listing's place. Edits by anyone other than an admin send
// the listing back to pending for another review.
func (s *ListingService) UpdateOwn(ctx context.Context, p domain.Principal, id uuid.UUID, edits domain.PlaceFields) (*domain.ListingDetail, error) {
	if err := RequireRole(p, domain.RoleOwner); err != nil {
		return nil, err
	}
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, storageError("find listing", err)
	}
	if err := RequireOwner(p, listing.OwnerID); err != nil {
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

	detail, err := s.listings.UpdatePlace(ctx, id, fields, !p.IsAdmin())
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, ErrDuplicateListing
		}
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, storageError("update listing place", err)
	}
	s.invalidate(ctx, detail.PlaceID)
	metrics.ObserveListingTransition("edit", string(detail.Status))
	s.publish(ctx, events.SubjectListingUpdated, s.event(p, &detail.Listing))
	if !p.IsAdmin() {
		detail.Submitter = nil
	}
	return detail, nil
}

// DeleteOwn removes a listing owned by the caller, or any listing for admins.
func (s *ListingService) DeleteOwn(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := RequireRole(p, domain.RoleUser); err != nil {
		return err
	}
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrListingNotFound
		}
		return storageError("find listing", err)
	}
	if err := RequireOwner(p, listing.OwnerID); err != nil {
		return err
	}
	placeDeleted, err := s.listings.Delete(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrListingNotFound
		}
		return storageError("delete listing", err)
	}
	s.invalidate(ctx, listing.PlaceID)
	metrics.ObserveListingTransition("delete", string(listing.Status))
	evt := s.event(p, listing)
	evt.PlaceDeleted = placeDeleted
	s.publish(ctx, events.SubjectListingDeleted, evt)
	return nil
}

func (s *ListingService) event(p domain.Principal, l *domain.Listing) events.ListingEvent {
	return events.ListingEvent{
		ListingID:  l.ID,
		PlaceID:    l.PlaceID,
		OwnerID:    l.OwnerID,
		ActorID:    p.UserID,
		Status:     string(l.Status),
		OccurredAt: s.now().UTC(),
	}
}

func (s *ListingService) publish(ctx context.Context, subject string, payload any) {
	publishEvent(ctx, s.events, s.logger, subject, payload)
}

func (s *ListingService) invalidate(ctx context.Context, placeID uuid.UUID) {
	invalidatePlace(ctx, s.cache, s.logger, placeID)
}

func parseStatusFilter(raw string) ([]domain.ListingStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var statuses []domain.ListingStatus
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		status, ok := domain.ParseListingStatus(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not one of pending, accepted, rejected", ErrInvalidStatus, part)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func normalizePagination(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func publishEvent(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, subject string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, subject, payload); err != nil {
		logger.Warn("publish event failed", zap.String("subject", subject), zap.Error(err))
	}
}

func invalidatePlace(ctx context.Context, cache ports.PlaceCache, logger *zap.Logger, placeID uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, placeID); err != nil {
		logger.Warn("place cache invalidate failed", zap.String("place_id", placeID.String()), zap.Error(err))
	}
}
