package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

const placeKeyPrefix = "place:"

// PlaceCache is a Redis read-through cache for public place lookups.
type PlaceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlaceCache(ctx context.Context, addr, password string, ttl time.Duration) (*PlaceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &PlaceCache{client: client, ttl: ttl}, nil
}

func placeKey(id uuid.UUID) string {
	return placeKeyPrefix + id.String()
}

func (c *PlaceCache) Get(ctx context.Context, id uuid.UUID) (*domain.Place, bool, error) {
	data, err := c.client.Get(ctx, placeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	place, err := decodePlace(data)
	if err != nil {
		return nil, false, err
	}
	return place, true, nil
}

func (c *PlaceCache) Set(ctx context.Context, place *domain.Place) error {
	data, err := json.Marshal(place)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, placeKey(place.ID), data, c.ttl).Err()
}

func (c *PlaceCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, placeKey(id)).Err()
}

func (c *PlaceCache) Close() error {
	return c.client.Close()
}

func decodePlace(data []byte) (*domain.Place, error) {
	var place domain.Place
	if err := json.Unmarshal(data, &place); err != nil {
		return nil, err
	}
	if place.ID == uuid.Nil {
		return nil, errors.New("cache: place entry without id")
	}
	return &place, nil
}

var _ ports.PlaceCache = (*PlaceCache)(nil)
