package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

// Gate turns a bearer token into a Principal. It keeps no per-request state:
// every call re-verifies the token, the session row and the user's current role.
type Gate struct {
	jwt      *util.JWTManager
	sessions ports.SessionRepository
	users    ports.UserRepository
}

func NewGate(jwt *util.JWTManager, sessions ports.SessionRepository, users ports.UserRepository) *Gate {
	return &Gate{jwt: jwt, sessions: sessions, users: users}
}

func (g *Gate) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Anonymous, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	claims, err := g.jwt.Parse(token)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	session, err := g.sessions.FindActiveSession(ctx, util.HashToken(token))
	if err != nil {
		if isNotFound(err) {
			return domain.Anonymous, fmt.Errorf("%w: session expired or revoked", ErrUnauthenticated)
		}
		return domain.Anonymous, storageError("find session", err)
	}
	if session.UserID != claims.UserID {
		return domain.Anonymous, fmt.Errorf("%w: session does not match token", ErrUnauthenticated)
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return domain.Anonymous, fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
		}
		return domain.Anonymous, storageError("find user", err)
	}
	principal := user.Principal()
	if !principal.Authenticated() {
		return domain.Anonymous, fmt.Errorf("%w: account has no valid role", ErrUnauthenticated)
	}
	return principal, nil
}

// RequireRole fails with ErrUnauthenticated for anonymous principals and with
// ErrForbidden when the role does not include required.
func RequireRole(p domain.Principal, required domain.Role) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if !p.Role.Includes(required) {
		return fmt.Errorf("%w: requires role %s", ErrForbidden, required)
	}
	return nil
}

// RequireOwner passes for the resource owner and for admins.
func RequireOwner(p domain.Principal, ownerID uuid.UUID) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if p.IsAdmin() || p.UserID == ownerID {
		return nil
	}
	return fmt.Errorf("%w: not the owner of this resource", ErrForbidden)
}
