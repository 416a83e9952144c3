package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

type PlaceRepository interface {
	Create(ctx context.Context, place *domain.Place) (*domain.Place, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Place, error)
	// List returns publicly visible places: those no pending or rejected listing
	// refers to.
	List(ctx context.Context, filter domain.PlaceListFilter) ([]domain.Place, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.PlaceFields) (*domain.Place, error)
	// Delete removes the place, every listing referencing it, and prunes it from
	// all favorites and history lists in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}
