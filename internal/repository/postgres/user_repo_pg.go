package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

const userColumns = `id, name, email, password_hash, password_salt, role, profile_image_url, favorites, history, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateEmailUser(ctx context.Context, email string, name *string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	query := `
        INSERT INTO user_account (email, name, password_hash, password_salt, role)
        VALUES ($1, $2, $3, $4, 'user')
        RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email)), nullString(name), passwordHash, passwordSalt); err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpsertGoogleUser(ctx context.Context, email string, name *string, imageURL *string) (*domain.User, error) {
	query := `
        INSERT INTO user_account (email, name, profile_image_url, role)
        VALUES ($1, $2, $3, 'user')
        ON CONFLICT ((lower(email))) DO UPDATE
        SET name = COALESCE(user_account.name, EXCLUDED.name),
            profile_image_url = COALESCE(user_account.profile_image_url, EXCLUDED.profile_image_url),
            updated_at = NOW()
        RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email)), nullString(name), nullString(imageURL)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM user_account WHERE lower(email) = lower($1)`, strings.TrimSpace(email)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM user_account WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name *string, imageURL *string) (*domain.User, error) {
	query := `
        UPDATE user_account
        SET name = COALESCE($2, name),
            profile_image_url = COALESCE($3, profile_image_url),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id, nullString(name), nullString(imageURL)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	query := `
        UPDATE user_account
        SET role = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id, string(role)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) PromoteRole(ctx context.Context, id uuid.UUID, from, to domain.Role) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
        UPDATE user_account
        SET role = $3, updated_at = NOW()
        WHERE id = $1 AND role = $2
    `, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users := make([]domain.User, 0)
	query := `SELECT ` + userColumns + ` FROM user_account ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_account WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Ledger updates below are single statements on the user row. The row lock makes
// concurrent calls for the same user apply one after another, each re-reading
// the array it modifies.

func (r *UserRepository) AddFavorite(ctx context.Context, userID, placeID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
        UPDATE user_account
        SET favorites = CASE
                WHEN $2::uuid = ANY(favorites) THEN favorites
                ELSE array_append(favorites, $2::uuid)
            END,
            updated_at = NOW()
        WHERE id = $1 AND EXISTS (SELECT 1 FROM place WHERE id = $2::uuid FOR SHARE)
        RETURNING favorites
    `
	return r.updateIDs(ctx, query, userID, placeID)
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, placeID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
        UPDATE user_account
        SET favorites = array_remove(favorites, $2::uuid), updated_at = NOW()
        WHERE id = $1
        RETURNING favorites
    `
	return r.updateIDs(ctx, query, userID, placeID)
}

func (r *UserRepository) RecordVisit(ctx context.Context, userID, placeID uuid.UUID, limit int) ([]uuid.UUID, error) {
	const query = `
        UPDATE user_account
        SET history = (array_prepend($2::uuid, array_remove(history, $2::uuid)))[1:$3],
            updated_at = NOW()
        WHERE id = $1 AND EXISTS (SELECT 1 FROM place WHERE id = $2::uuid FOR SHARE)
        RETURNING history
    `
	return r.updateIDs(ctx, query, userID, placeID, limit)
}

func (r *UserRepository) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE user_account SET history = '{}', updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepository) GetLedger(ctx context.Context, userID uuid.UUID) (*domain.Ledger, error) {
	var row struct {
		Favorites pq.StringArray `db:"favorites"`
		History   pq.StringArray `db:"history"`
	}
	if err := r.db.GetContext(ctx, &row, `SELECT favorites, history FROM user_account WHERE id = $1`, userID); err != nil {
		return nil, err
	}
	return &domain.Ledger{Favorites: domain.ParseIDs(row.Favorites), History: domain.ParseIDs(row.History)}, nil
}

func (r *UserRepository) updateIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	var ids pq.StringArray
	if err := r.db.GetContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return domain.ParseIDs(ids), nil
}

var (
	_ ports.UserRepository   = (*UserRepository)(nil)
	_ ports.LedgerRepository = (*UserRepository)(nil)
)
