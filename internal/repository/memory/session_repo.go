package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

type SessionRepository struct {
	s *Store
}

func (r *SessionRepository) CreateSession(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.Session, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, sql.ErrNoRows
	}
	r.s.sessionSeq++
	session := &domain.Session{
		ID:        r.s.sessionSeq,
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: r.s.now(),
		ExpiresAt: expiresAt,
	}
	r.s.sessions[tokenHash] = session
	clone := *session
	return &clone, nil
}

func (r *SessionRepository) RevokeSession(_ context.Context, tokenHash string) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	if session, ok := r.s.sessions[tokenHash]; ok && session.RevokedAt == nil {
		now := r.s.now()
		session.RevokedAt = &now
	}
	return nil
}

func (r *SessionRepository) FindActiveSession(_ context.Context, tokenHash string) (*domain.Session, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[tokenHash]
	if !ok || !session.Active(r.s.now()) {
		return nil, sql.ErrNoRows
	}
	clone := *session
	return &clone, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
