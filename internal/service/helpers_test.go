package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/memory"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

type mapCache struct {
	mu          sync.Mutex
	items       map[uuid.UUID]domain.Place
	gets        int
	hits        int
	invalidated []uuid.UUID
	getErr      error
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[uuid.UUID]domain.Place)}
}

func (c *mapCache) Get(_ context.Context, id uuid.UUID) (*domain.Place, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	p, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &p, true, nil
}

func (c *mapCache) Set(_ context.Context, place *domain.Place) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[place.ID] = *place
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type testEnv struct {
	store     *memory.Store
	publisher *recordingPublisher
	cache     *mapCache
	jwt       *util.JWTManager
	listings  *ListingService
	ledger    *LedgerService
	places    *PlaceService
	auth      *AuthService
	gate      *Gate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	cache := newMapCache()
	jwt := util.NewJWTManager("test-secret", time.Hour)
	return &testEnv{
		store:     store,
		publisher: publisher,
		cache:     cache,
		jwt:       jwt,
		listings:  NewListingService(store.Listings(), store.Users(), cache, publisher, nil, ListingServiceConfig{}),
		ledger:    NewLedgerService(store.Users(), nil),
		places:    NewPlaceService(store.Places(), cache, publisher, nil, PlaceServiceConfig{}),
		auth:      NewAuthService(store.Users(), store.Sessions(), jwt, nil, AuthServiceConfig{GoogleAudience: "test-audience"}),
		gate:      NewGate(jwt, store.Sessions(), store.Users()),
	}
}

func (e *testEnv) principal(t *testing.T, email string, role domain.Role) domain.Principal {
	t.Helper()
	ctx := context.Background()
	user, err := e.store.Users().CreateEmailUser(ctx, email, nil, []byte("hash"), []byte("salt"))
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	if role != domain.RoleUser {
		if user, err = e.store.Users().UpdateRole(ctx, user.ID, role); err != nil {
			t.Fatalf("seed role %s: %v", role, err)
		}
	}
	return user.Principal()
}

func (e *testEnv) submit(t *testing.T, p domain.Principal, name string) *domain.ListingDetail {
	t.Helper()
	detail, err := e.listings.Submit(context.Background(), p, draftFields(name))
	if err != nil {
		t.Fatalf("submit %s: %v", name, err)
	}
	return detail
}

func (e *testEnv) acceptedPlace(t *testing.T, admin, owner domain.Principal, name string) uuid.UUID {
	t.Helper()
	detail := e.submit(t, owner, name)
	if _, err := e.listings.UpdateStatus(context.Background(), admin, detail.ID, "accepted", nil); err != nil {
		t.Fatalf("accept %s: %v", name, err)
	}
	return detail.PlaceID
}

func draftFields(name string) domain.PlaceFields {
	city := "Chiang Mai"
	address := "14 Nimmanhaemin Rd"
	categories := []string{"Cafe", "bakery"}
	price := 2
	return domain.PlaceFields{
		Name:       &name,
		City:       &city,
		Address:    &address,
		Category:   &categories,
		PriceLevel: &price,
		Location:   &domain.GeoPoint{Latitude: 18.7964, Longitude: 98.9676},
	}
}

func strPtr(v string) *string { return &v }
