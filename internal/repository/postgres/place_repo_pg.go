package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

var placeColumnNames = []string{
	"id", "name", "city", "category", "phone", "website", "price_level", "address",
	"longitude", "latitude", "rating_average", "rating_count", "created_at", "updated_at",
}

var placeColumns = strings.Join(placeColumnNames, ", ")

// placeColumnsAs selects place columns from alias as nested "place.*" names so
// sqlx can scan them into an embedded domain.Place.
func placeColumnsAs(alias string) string {
	parts := make([]string, len(placeColumnNames))
	for i, col := range placeColumnNames {
		parts[i] = fmt.Sprintf(`%s.%s AS "place.%s"`, alias, col, col)
	}
	return strings.Join(parts, ", ")
}

type PlaceRepository struct {
	db *sqlx.DB
}

func NewPlaceRepo(db *sqlx.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) Create(ctx context.Context, place *domain.Place) (*domain.Place, error) {
	return insertPlace(ctx, r.db, place)
}

func insertPlace(ctx context.Context, q sqlx.QueryerContext, place *domain.Place) (*domain.Place, error) {
	query := `
		INSERT INTO place (
			name, city, category, phone, website, price_level, address,
			longitude, latitude, rating_average, rating_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + placeColumns

	var created domain.Place
	err := sqlx.GetContext(ctx, q, &created, query,
		strings.TrimSpace(place.Name),
		strings.TrimSpace(place.City),
		categoryValue(place.Category),
		nullString(place.Phone),
		nullString(place.Website),
		place.PriceLevel,
		strings.TrimSpace(place.Address),
		place.Longitude,
		place.Latitude,
		place.RatingAverage,
		place.RatingCount,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM place WHERE id = $1`
	var place domain.Place
	if err := r.db.GetContext(ctx, &place, query, id); err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) List(ctx context.Context, filter domain.PlaceListFilter) ([]domain.Place, error) {
	var builder strings.Builder
	builder.WriteString(`
		SELECT ` + placeColumns + `
		FROM place p
		WHERE NOT EXISTS (
			SELECT 1 FROM listing l WHERE l.place_id = p.id AND l.status <> 'accepted'
		)`)

	params := make([]any, 0, 6)
	if search := strings.TrimSpace(filter.Search); search != "" {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\t\tAND (p.name ILIKE " + placeholder + " OR p.address ILIKE " + placeholder + ")")
		params = append(params, "%"+search+"%")
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\t\tAND lower(p.city) = lower(" + placeholder + ")")
		params = append(params, city)
	}
	if categories := trimAll(filter.Categories); len(categories) > 0 {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\t\tAND p.category && " + placeholder)
		params = append(params, pq.StringArray(categories))
	}
	if filter.PriceLevel != nil {
		placeholder := fmt.Sprintf("$%d", len(params)+1)
		builder.WriteString("\n\t\tAND p.price_level = " + placeholder)
		params = append(params, *filter.PriceLevel)
	}

	builder.WriteString("\n\t\tORDER BY ")
	switch filter.Sort {
	case domain.PlaceSortNameAsc:
		builder.WriteString("p.name ASC, p.id")
	case domain.PlaceSortNameDesc:
		builder.WriteString("p.name DESC, p.id")
	case domain.PlaceSortRatingDesc:
		builder.WriteString("p.rating_average DESC, p.name ASC")
	case domain.PlaceSortRatingAsc:
		builder.WriteString("p.rating_average ASC, p.name ASC")
	default:
		builder.WriteString("p.created_at DESC, p.id")
	}

	builder.WriteString(fmt.Sprintf("\n\t\tLIMIT $%d OFFSET $%d", len(params)+1, len(params)+2))
	params = append(params, filter.Limit, filter.Offset)

	places := make([]domain.Place, 0)
	if err := r.db.SelectContext(ctx, &places, builder.String(), params...); err != nil {
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) Update(ctx context.Context, id uuid.UUID, fields domain.PlaceFields) (*domain.Place, error) {
	return updatePlace(ctx, r.db, id, fields)
}

func updatePlace(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, fields domain.PlaceFields) (*domain.Place, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Name != nil {
		add("name", strings.TrimSpace(*fields.Name))
	}
	if fields.City != nil {
		add("city", strings.TrimSpace(*fields.City))
	}
	if fields.Category != nil {
		add("category", categoryValue(*fields.Category))
	}
	if fields.Phone != nil {
		add("phone", nullString(fields.Phone))
	}
	if fields.Website != nil {
		add("website", nullString(fields.Website))
	}
	if fields.PriceLevel != nil {
		add("price_level", *fields.PriceLevel)
	}
	if fields.Address != nil {
		add("address", strings.TrimSpace(*fields.Address))
	}
	if fields.Location != nil {
		add("longitude", fields.Location.Longitude)
		add("latitude", fields.Location.Latitude)
	}
	if fields.RatingAverage != nil {
		add("rating_average", *fields.RatingAverage)
	}
	if fields.RatingCount != nil {
		add("rating_count", *fields.RatingCount)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE place
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setParts, ", "), len(args), placeColumns)

	var place domain.Place
	if err := sqlx.GetContext(ctx, q, &place, query, args...); err != nil {
		return nil, err
	}
	return &place, nil
}

// Delete removes the place, its listings and every ledger reference to it. The
// place row is locked first; ledger writes check existence with FOR SHARE, so
// they either finish before the prune or see the place gone.
func (r *PlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM place WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM listing WHERE place_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM place WHERE id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE user_account
			SET favorites = array_remove(favorites, $1::uuid),
			    history = array_remove(history, $1::uuid),
			    updated_at = NOW()
			WHERE $1::uuid = ANY(favorites) OR $1::uuid = ANY(history)
		`, id)
		return err
	})
}

func categoryValue(categories []string) pq.StringArray {
	return pq.StringArray(trimAll(categories))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var _ ports.PlaceRepository = (*PlaceRepository)(nil)
