package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

type UserRepository interface {
	CreateEmailUser(ctx context.Context, email string, name *string, passwordHash, passwordSalt []byte) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, email string, name *string, imageURL *string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name *string, imageURL *string) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	// PromoteRole changes the role only while it still equals from.
	PromoteRole(ctx context.Context, id uuid.UUID, from, to domain.Role) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	// Delete removes the user together with their listings and sessions.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerRepository mutates a user's favorites and history. Each call is a single
// atomic update of the user row; the referenced place must exist at that moment
// or sql.ErrNoRows is returned.
type LedgerRepository interface {
	AddFavorite(ctx context.Context, userID, placeID uuid.UUID) ([]uuid.UUID, error)
	RemoveFavorite(ctx context.Context, userID, placeID uuid.UUID) ([]uuid.UUID, error)
	RecordVisit(ctx context.Context, userID, placeID uuid.UUID, limit int) ([]uuid.UUID, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) error
	GetLedger(ctx context.Context, userID uuid.UUID) (*domain.Ledger, error)
}
