package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

const sessionColumns = `id, user_id, token_hash, created_at, expires_at, revoked_at`

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.Session, error) {
	query := `
        INSERT INTO sessions (user_id, token_hash, expires_at)
        VALUES ($1, $2, $3)
        RETURNING ` + sessionColumns

	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, userID, tokenHash, expiresAt); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) RevokeSession(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE sessions SET revoked_at = NOW()
        WHERE token_hash = $1 AND revoked_at IS NULL
    `, tokenHash)
	return err
}

func (r *SessionRepository) FindActiveSession(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
        SELECT ` + sessionColumns + `
        FROM sessions
        WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
    `
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, tokenHash); err != nil {
		return nil, err
	}
	return &session, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
