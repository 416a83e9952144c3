package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HistoryLimit bounds the visit history kept per user.
const HistoryLimit = 50

type User struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Name         *string        `db:"name" json:"name,omitempty"`
	Email        string         `db:"email" json:"email"`
	PasswordHash []byte         `db:"password_hash" json:"-"`
	PasswordSalt []byte         `db:"password_salt" json:"-"`
	Role         Role           `db:"role" json:"role"`
	ImageURL     *string        `db:"profile_image_url" json:"profile_image_url,omitempty"`
	Favorites    pq.StringArray `db:"favorites" json:"favorites"`
	History      pq.StringArray `db:"history" json:"history"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Ledger is a user's favorites set and most-recent-first visit history.
type Ledger struct {
	Favorites []uuid.UUID `json:"favorites"`
	History   []uuid.UUID `json:"history"`
}

// ParseIDs converts a stored uuid[] column into ids, skipping malformed entries.
func ParseIDs(raw pq.StringArray) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		if id, err := uuid.Parse(v); err == nil {
			out = append(out, id)
		}
	}
	return out
}
