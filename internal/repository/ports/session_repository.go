package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

// SessionRepository stores token digests, never raw tokens.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.Session, error)
	RevokeSession(ctx context.Context, tokenHash string) error
	FindActiveSession(ctx context.Context, tokenHash string) (*domain.Session, error)
}
