package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

type ListingRepository interface {
	// CreateWithPlace stores the place and a pending listing owned by ownerID
	// atomically. It returns ErrConflict when the owner already has a listing for
	// a place with the same name, address and city (case-insensitive).
	CreateWithPlace(ctx context.Context, place *domain.Place, ownerID uuid.UUID) (*domain.ListingDetail, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*domain.ListingDetail, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]domain.ListingDetail, error)
	// SetStatus writes status and note in one statement and clears needs_review.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, note *string) (*domain.Listing, error)
	// UpdatePlace applies edits to the listing's place. When repend is set the
	// listing returns to pending with needs_review raised, in the same transaction.
	UpdatePlace(ctx context.Context, id uuid.UUID, fields domain.PlaceFields, repend bool) (*domain.ListingDetail, error)
	// Delete removes the listing and, when nothing else references it, its place.
	Delete(ctx context.Context, id uuid.UUID) (placeDeleted bool, err error)
}
