package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 200
	maxDisplayNameRunes = 100
)

// GoogleTokenValidator verifies a Google ID token for the given audience.
type GoogleTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type AuthServiceConfig struct {
	GoogleAudience string
}

type RegisterInput struct {
	Email    string
	Password string
	Name     *string
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	jwt      *util.JWTManager
	google   GoogleTokenValidator
	audience string
	logger   *zap.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, jwt *util.JWTManager, logger *zap.Logger, cfg AuthServiceConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		jwt:      jwt,
		google:   idtoken.Validate,
		audience: strings.TrimSpace(cfg.GoogleAudience),
		logger:   logger,
	}
}

func (s *AuthService) SetGoogleValidator(v GoogleTokenValidator) {
	if v == nil {
		v = idtoken.Validate
	}
	s.google = v
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	name, err := normalizeDisplayName(in.Name)
	if err != nil {
		return nil, err
	}
	hash, salt, err := util.DerivePassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("derive password: %w", err)
	}
	user, err := s.users.CreateEmailUser(ctx, email, name, hash, salt)
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, storageError("create user", err)
	}
	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("find user", err)
	}
	if len(user.PasswordHash) == 0 || !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, validationError("id_token is required")
	}
	if s.audience == "" {
		return nil, fmt.Errorf("%w: google login is not configured", ErrInvalidCredentials)
	}
	payload, err := s.google(ctx, idToken, s.audience)
	if err != nil {
		s.logger.Info("google token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid google token", ErrInvalidCredentials)
	}
	email, _ := payload.Claims["email"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: google email is not verified", ErrInvalidCredentials)
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: google token has no usable email", ErrInvalidCredentials)
	}
	name := claimString(payload.Claims, "name")
	picture := claimString(payload.Claims, "picture")

	user, err := s.users.UpsertGoogleUser(ctx, email, name, picture)
	if err != nil {
		return nil, storageError("upsert google user", err)
	}
	return s.issue(ctx, user)
}

// Logout revokes the session bound to token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrUnauthenticated
	}
	if err := s.sessions.RevokeSession(ctx, util.HashToken(token)); err != nil && !isNotFound(err) {
		return storageError("revoke session", err)
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.User, error) {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	limit, offset = normalizePagination(limit, offset, defaultUserPageSize, maxUserPageSize)
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

func (s *AuthService) ChangeRole(ctx context.Context, p domain.Principal, id uuid.UUID, rawRole string) (*domain.User, error) {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, validationError("role must be one of user, owner, admin")
	}
	if id == p.UserID && role != domain.RoleAdmin {
		return nil, validationError("admins cannot demote themselves")
	}
	user, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("update role", err)
	}
	s.logger.Info("user role changed",
		zap.String("user_id", id.String()),
		zap.String("role", string(role)),
		zap.String("actor_id", p.UserID.String()))
	return user, nil
}

// DeleteUser removes the account, its sessions and its listings. Places stay.
func (s *AuthService) DeleteUser(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := RequireRole(p, domain.RoleAdmin); err != nil {
		return err
	}
	if id == p.UserID {
		return validationError("admins cannot delete their own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return storageError("delete user", err)
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()), zap.String("actor_id", p.UserID.String()))
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, util.HashToken(token), expiresAt); err != nil {
		return nil, storageError("create session", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("email is not valid")
	}
	return email, nil
}

func normalizeDisplayName(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > maxDisplayNameRunes {
		return nil, validationError("name is too long")
	}
	return &trimmed, nil
}

func claimString(claims map[string]any, key string) *string {
	v, _ := claims[key].(string)
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
