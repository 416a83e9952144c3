package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusAccepted ListingStatus = "accepted"
	ListingStatusRejected ListingStatus = "rejected"
)

// ParseListingStatus accepts only the three lowercase moderation states after
// trimming surrounding space. "approved" and "Accepted" are both rejected.
func ParseListingStatus(raw string) (ListingStatus, bool) {
	switch ListingStatus(strings.TrimSpace(raw)) {
	case ListingStatusPending:
		return ListingStatusPending, true
	case ListingStatusAccepted:
		return ListingStatusAccepted, true
	case ListingStatusRejected:
		return ListingStatusRejected, true
	default:
		return "", false
	}
}

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusPending, ListingStatusAccepted, ListingStatusRejected:
		return true
	default:
		return false
	}
}

type Listing struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	PlaceID     uuid.UUID     `db:"place_id" json:"place_id"`
	OwnerID     uuid.UUID     `db:"owner_id" json:"owner_id"`
	Status      ListingStatus `db:"status" json:"status"`
	AdminNote   *string       `db:"admin_note" json:"admin_note,omitempty"`
	NeedsReview bool          `db:"needs_review" json:"needs_review"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// ListingSubmitter is the public projection of the owner attached to admin views.
type ListingSubmitter struct {
	Name  *string `json:"name,omitempty"`
	Email string  `json:"email"`
}

// ListingDetail is a listing with its place and, for admin views, the submitter.
type ListingDetail struct {
	Listing
	Place     *Place            `json:"place,omitempty"`
	Submitter *ListingSubmitter `json:"submitter,omitempty"`
}

type ListingFilter struct {
	OwnerID  *uuid.UUID
	Statuses []ListingStatus
	Limit    int
	Offset   int
}
