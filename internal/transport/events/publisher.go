package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

const (
	SubjectListingSubmitted = "listing.submitted"
	SubjectListingStatus    = "listing.status_changed"
	SubjectListingUpdated   = "listing.updated"
	SubjectListingDeleted   = "listing.deleted"
	SubjectPlaceDeleted     = "place.deleted"
)

// ListingEvent is the payload published for every listing lifecycle change.
type ListingEvent struct {
	ListingID    uuid.UUID `json:"listing_id"`
	PlaceID      uuid.UUID `json:"place_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	ActorID      uuid.UUID `json:"actor_id"`
	Status       string    `json:"status,omitempty"`
	PlaceDeleted bool      `json:"place_deleted,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON payloads on core NATS subjects.
type NATSPublisher struct {
	conn conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("placebook-api"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// NopPublisher discards events; used when NATS_URL is unset.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

var (
	_ ports.EventPublisher = (*NATSPublisher)(nil)
	_ ports.EventPublisher = NopPublisher{}
)
