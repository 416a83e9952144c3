package memory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) CreateEmailUser(_ context.Context, email string, name *string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if r.s.userByEmailLocked(email) != nil {
		return nil, ports.ErrConflict
	}
	user := r.s.newUserLocked(email, name, nil)
	user.PasswordHash = append([]byte(nil), passwordHash...)
	user.PasswordSalt = append([]byte(nil), passwordSalt...)
	return cloneUser(user), nil
}

func (r *UserRepository) UpsertGoogleUser(_ context.Context, email string, name *string, imageURL *string) (*domain.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if existing := r.s.userByEmailLocked(email); existing != nil {
		if existing.Name == nil {
			existing.Name = trimmedPtr(name)
		}
		if existing.ImageURL == nil {
			existing.ImageURL = trimmedPtr(imageURL)
		}
		existing.UpdatedAt = r.s.now()
		return cloneUser(existing), nil
	}
	return cloneUser(r.s.newUserLocked(email, name, imageURL)), nil
}

func (s *Store) newUserLocked(email string, name, imageURL *string) *domain.User {
	now := s.now()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      trimmedPtr(name),
		ImageURL:  trimmedPtr(imageURL),
		Role:      domain.RoleUser,
		Favorites: pq.StringArray{},
		History:   pq.StringArray{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user
	s.userOrder = append(s.userOrder, user.ID)
	return user
}

func (s *Store) userByEmailLocked(email string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u := r.s.userByEmailLocked(strings.TrimSpace(email))
	if u == nil {
		return nil, sql.ErrNoRows
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneUser(u), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id uuid.UUID, name *string, imageURL *string) (*domain.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if v := trimmedPtr(name); v != nil {
		u.Name = v
	}
	if v := trimmedPtr(imageURL); v != nil {
		u.ImageURL = v
	}
	u.UpdatedAt = r.s.now()
	return cloneUser(u), nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u.Role = role
	u.UpdatedAt = r.s.now()
	return cloneUser(u), nil
}

func (r *UserRepository) PromoteRole(_ context.Context, id uuid.UUID, from, to domain.Role) (bool, error) {
	if err := r.s.lock(); err != nil {
		return false, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.Role != from {
		return false, nil
	}
	u.Role = to
	u.UpdatedAt = r.s.now()
	return true, nil
}

func (r *UserRepository) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.userOrder))
	for i := len(r.s.userOrder) - 1; i >= 0; i-- {
		out = append(out, *cloneUser(r.s.users[r.s.userOrder[i]]))
	}
	return paginate(out, limit, offset), nil
}

func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return sql.ErrNoRows
	}
	for lid, l := range r.s.listings {
		if l.OwnerID == id {
			r.s.deleteListingLocked(lid)
		}
	}
	for hash, sess := range r.s.sessions {
		if sess.UserID == id {
			delete(r.s.sessions, hash)
		}
	}
	delete(r.s.users, id)
	r.s.userOrder = removeUUID(r.s.userOrder, id)
	return nil
}

func (r *UserRepository) AddFavorite(_ context.Context, userID, placeID uuid.UUID) ([]uuid.UUID, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if _, placeOK := r.s.places[placeID]; !ok || !placeOK {
		return nil, sql.ErrNoRows
	}
	key := placeID.String()
	if !containsID(u.Favorites, key) {
		u.Favorites = append(u.Favorites, key)
	}
	u.UpdatedAt = r.s.now()
	return domain.ParseIDs(u.Favorites), nil
}

func (r *UserRepository) RemoveFavorite(_ context.Context, userID, placeID uuid.UUID) ([]uuid.UUID, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u.Favorites = removeID(u.Favorites, placeID.String())
	u.UpdatedAt = r.s.now()
	return domain.ParseIDs(u.Favorites), nil
}

func (r *UserRepository) RecordVisit(_ context.Context, userID, placeID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if _, placeOK := r.s.places[placeID]; !ok || !placeOK {
		return nil, sql.ErrNoRows
	}
	key := placeID.String()
	history := append(pq.StringArray{key}, removeID(u.History, key)...)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	u.History = history
	u.UpdatedAt = r.s.now()
	return domain.ParseIDs(u.History), nil
}

func (r *UserRepository) ClearHistory(_ context.Context, userID uuid.UUID) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.History = pq.StringArray{}
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *UserRepository) GetLedger(_ context.Context, userID uuid.UUID) (*domain.Ledger, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &domain.Ledger{Favorites: domain.ParseIDs(u.Favorites), History: domain.ParseIDs(u.History)}, nil
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

var (
	_ ports.UserRepository   = (*UserRepository)(nil)
	_ ports.LedgerRepository = (*UserRepository)(nil)
)
