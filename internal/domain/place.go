package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	MinPriceLevel = 1
	MaxPriceLevel = 4
)

type Place struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	City          string         `db:"city" json:"city"`
	Category      pq.StringArray `db:"category" json:"category"`
	Phone         *string        `db:"phone" json:"phone,omitempty"`
	Website       *string        `db:"website" json:"website,omitempty"`
	PriceLevel    int            `db:"price_level" json:"price_level"`
	Address       string         `db:"address" json:"address"`
	Longitude     float64        `db:"longitude" json:"longitude"`
	Latitude      float64        `db:"latitude" json:"latitude"`
	RatingAverage float64        `db:"rating_average" json:"rating_average"`
	RatingCount   int            `db:"rating_count" json:"rating_count"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// PlaceFields carries a full draft or a partial edit of a place. Nil pointers are
// left untouched on update.
type PlaceFields struct {
	Name          *string   `json:"name,omitempty"`
	City          *string   `json:"city,omitempty"`
	Category      *[]string `json:"category,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Website       *string   `json:"website,omitempty"`
	PriceLevel    *int      `json:"price_level,omitempty"`
	Address       *string   `json:"address,omitempty"`
	Location      *GeoPoint `json:"location,omitempty"`
	MapLink       *string   `json:"map_link,omitempty"`
	RatingAverage *float64  `json:"rating_average,omitempty"`
	RatingCount   *int      `json:"rating_count,omitempty"`
}

// Apply copies every non-nil field onto p. MapLink must already be resolved into
// Location by the caller.
func (f PlaceFields) Apply(p *Place) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.City != nil {
		p.City = *f.City
	}
	if f.Category != nil {
		p.Category = append(pq.StringArray(nil), (*f.Category)...)
	}
	if f.Phone != nil {
		p.Phone = emptyToNil(*f.Phone)
	}
	if f.Website != nil {
		p.Website = emptyToNil(*f.Website)
	}
	if f.PriceLevel != nil {
		p.PriceLevel = *f.PriceLevel
	}
	if f.Address != nil {
		p.Address = *f.Address
	}
	if f.Location != nil {
		p.Longitude = f.Location.Longitude
		p.Latitude = f.Location.Latitude
	}
	if f.RatingAverage != nil {
		p.RatingAverage = *f.RatingAverage
	}
	if f.RatingCount != nil {
		p.RatingCount = *f.RatingCount
	}
}

func emptyToNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

type PlaceSort string

const (
	PlaceSortNewest     PlaceSort = "newest"
	PlaceSortNameAsc    PlaceSort = "alpha_asc"
	PlaceSortNameDesc   PlaceSort = "alpha_desc"
	PlaceSortRatingDesc PlaceSort = "rating_desc"
	PlaceSortRatingAsc  PlaceSort = "rating_asc"
)

type PlaceListFilter struct {
	Search     string
	City       string
	Categories []string
	PriceLevel *int
	Sort       PlaceSort
	Limit      int
	Offset     int
}
