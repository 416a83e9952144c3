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

const listingColumns = `id, place_id, owner_id, status, admin_note, needs_review, created_at, updated_at`

type listingDetailRow struct {
	domain.Listing
	Place          domain.Place `db:"place"`
	SubmitterName  *string      `db:"submitter_name"`
	SubmitterEmail string       `db:"submitter_email"`
}

func (row listingDetailRow) toDetail() domain.ListingDetail {
	place := row.Place
	return domain.ListingDetail{
		Listing:   row.Listing,
		Place:     &place,
		Submitter: &domain.ListingSubmitter{Name: row.SubmitterName, Email: row.SubmitterEmail},
	}
}

var listingDetailSelect = `
	SELECT l.id, l.place_id, l.owner_id, l.status, l.admin_note, l.needs_review, l.created_at, l.updated_at,
	       ` + placeColumnsAs("p") + `,
	       u.name AS submitter_name, u.email AS submitter_email
	FROM listing l
	JOIN place p ON p.id = l.place_id
	JOIN user_account u ON u.id = l.owner_id`

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepo(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) CreateWithPlace(ctx context.Context, place *domain.Place, ownerID uuid.UUID) (*domain.ListingDetail, error) {
	var detail domain.ListingDetail
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockOwner(ctx, tx, ownerID); err != nil {
			return err
		}
		dup, err := ownerHasPlace(ctx, tx, ownerID, place.Name, place.Address, place.City, uuid.Nil)
		if err != nil {
			return err
		}
		if dup {
			return ports.ErrConflict
		}

		created, err := insertPlace(ctx, tx, place)
		if err != nil {
			return err
		}

		var listing domain.Listing
		err = tx.GetContext(ctx, &listing, `
			INSERT INTO listing (place_id, owner_id, status)
			VALUES ($1, $2, 'pending')
			RETURNING `+listingColumns,
			created.ID, ownerID)
		if err != nil {
			return err
		}
		detail = domain.ListingDetail{Listing: listing, Place: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// lockOwner serialises submissions and edits per owner so the duplicate check
// holds until commit.
func lockOwner(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, ownerID)
	return err
}

// ownerHasPlace reports whether ownerID already lists a place with the same
// name, address and city, ignoring the listing except (uuid.Nil for none).
func ownerHasPlace(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID, name, address, city string, except uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1
			FROM listing l
			JOIN place p ON p.id = l.place_id
			WHERE l.owner_id = $1
			  AND l.id <> $5
			  AND lower(trim(p.name)) = lower($2)
			  AND lower(trim(p.address)) = lower($3)
			  AND lower(trim(p.city)) = lower($4)
		)
	`, ownerID, strings.TrimSpace(name), strings.TrimSpace(address), strings.TrimSpace(city), except)
	return exists, err
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	if err := r.db.GetContext(ctx, &listing, `SELECT `+listingColumns+` FROM listing WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) FindDetail(ctx context.Context, id uuid.UUID) (*domain.ListingDetail, error) {
	var row listingDetailRow
	if err := r.db.GetContext(ctx, &row, listingDetailSelect+` WHERE l.id = $1`, id); err != nil {
		return nil, err
	}
	detail := row.toDetail()
	return &detail, nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.ListingDetail, error) {
	var builder strings.Builder
	builder.WriteString(listingDetailSelect)
	builder.WriteString("\n\tWHERE TRUE")

	params := make([]any, 0, 4)
	if filter.OwnerID != nil {
		params = append(params, *filter.OwnerID)
		builder.WriteString(fmt.Sprintf("\n\tAND l.owner_id = $%d", len(params)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make(pq.StringArray, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		params = append(params, statuses)
		builder.WriteString(fmt.Sprintf("\n\tAND l.status = ANY($%d)", len(params)))
	}
	builder.WriteString("\n\tORDER BY l.created_at DESC, l.id")
	if filter.Limit > 0 {
		params = append(params, filter.Limit, filter.Offset)
		builder.WriteString(fmt.Sprintf("\n\tLIMIT $%d OFFSET $%d", len(params)-1, len(params)))
	} else if filter.Offset > 0 {
		params = append(params, filter.Offset)
		builder.WriteString(fmt.Sprintf("\n\tOFFSET $%d", len(params)))
	}

	rows := make([]listingDetailRow, 0)
	if err := r.db.SelectContext(ctx, &rows, builder.String(), params...); err != nil {
		return nil, err
	}
	details := make([]domain.ListingDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toDetail())
	}
	return details, nil
}

func (r *ListingRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, note *string) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.GetContext(ctx, &listing, `
		UPDATE listing
		SET status = $2, admin_note = $3, needs_review = false, updated_at = NOW()
		WHERE id = $1
		RETURNING `+listingColumns,
		id, string(status), nullString(note))
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) UpdatePlace(ctx context.Context, id uuid.UUID, fields domain.PlaceFields, repend bool) (*domain.ListingDetail, error) {
	var detail domain.ListingDetail
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var ref struct {
			PlaceID uuid.UUID `db:"place_id"`
			OwnerID uuid.UUID `db:"owner_id"`
		}
		if err := tx.GetContext(ctx, &ref, `SELECT place_id, owner_id FROM listing WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		if err := lockOwner(ctx, tx, ref.OwnerID); err != nil {
			return err
		}
		place, err := updatePlace(ctx, tx, ref.PlaceID, fields)
		if err != nil {
			return err
		}
		dup, err := ownerHasPlace(ctx, tx, ref.OwnerID, place.Name, place.Address, place.City, id)
		if err != nil {
			return err
		}
		if dup {
			return ports.ErrConflict
		}

		query := `UPDATE listing SET updated_at = NOW() WHERE id = $1 RETURNING ` + listingColumns
		if repend {
			query = `
				UPDATE listing
				SET status = 'pending', needs_review = true, updated_at = NOW()
				WHERE id = $1
				RETURNING ` + listingColumns
		}
		var listing domain.Listing
		if err := tx.GetContext(ctx, &listing, query, id); err != nil {
			return err
		}
		detail = domain.ListingDetail{Listing: listing, Place: place}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var placeDeleted bool
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var placeID uuid.UUID
		if err := tx.GetContext(ctx, &placeID, `DELETE FROM listing WHERE id = $1 RETURNING place_id`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			DELETE FROM place p
			WHERE p.id = $1
			  AND NOT EXISTS (SELECT 1 FROM listing l WHERE l.place_id = p.id)
			  AND NOT EXISTS (
				SELECT 1 FROM user_account u
				WHERE p.id = ANY(u.favorites) OR p.id = ANY(u.history)
			  )
		`, placeID)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		placeDeleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return placeDeleted, nil
}

var _ ports.ListingRepository = (*ListingRepository)(nil)
