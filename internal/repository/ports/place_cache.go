package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

type PlaceCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Place, bool, error)
	Set(ctx context.Context, place *domain.Place) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}
