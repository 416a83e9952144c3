package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

func seedUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u, err := s.Users().CreateEmailUser(context.Background(), email, nil, []byte("h"), []byte("s"))
	if err != nil {
		t.Fatalf("CreateEmailUser: %v", err)
	}
	return u
}

func draft(name string) *domain.Place {
	return &domain.Place{Name: name, City: "Chiang Mai", Address: "9 Nimman Rd", Category: []string{"cafe"}, PriceLevel: 2}
}

func TestCreateWithPlaceRejectsDuplicateForSameOwner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")

	if _, err := s.Listings().CreateWithPlace(ctx, draft("Ristr8to"), alice.ID); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := s.Listings().CreateWithPlace(ctx, draft(" ristr8to "), alice.ID); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := s.Listings().CreateWithPlace(ctx, draft("Ristr8to"), bob.ID); err != nil {
		t.Fatalf("other owner may list the same place: %v", err)
	}
}

func TestUpdatePlaceRejectsRenameOntoOwnListing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice := seedUser(t, s, "alice@example.com")
	if _, err := s.Listings().CreateWithPlace(ctx, draft("First"), alice.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, _ := s.Listings().CreateWithPlace(ctx, draft("Second"), alice.ID)

	name := "FIRST"
	if _, err := s.Listings().UpdatePlace(ctx, second.ID, domain.PlaceFields{Name: &name}, true); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	place, _ := s.Places().FindByID(ctx, second.PlaceID)
	listing, _ := s.Listings().FindByID(ctx, second.ID)
	if place.Name != "Second" || listing.NeedsReview {
		t.Fatalf("rejected edit must leave state untouched, got %q review=%v", place.Name, listing.NeedsReview)
	}
}

func TestListingDeleteKeepsFavoritedPlace(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	fan := seedUser(t, s, "fan@example.com")

	detail, err := s.Listings().CreateWithPlace(ctx, draft("Kept"), owner.ID)
	if err != nil {
		t.Fatalf("CreateWithPlace: %v", err)
	}
	if _, err := s.Users().AddFavorite(ctx, fan.ID, detail.PlaceID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	deleted, err := s.Listings().Delete(ctx, detail.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted {
		t.Fatalf("expected favorited place to survive")
	}
	if _, err := s.Places().FindByID(ctx, detail.PlaceID); err != nil {
		t.Fatalf("expected place to remain: %v", err)
	}

	other, _ := s.Listings().CreateWithPlace(ctx, draft("Gone"), owner.ID)
	deleted, err = s.Listings().Delete(ctx, other.ID)
	if err != nil || !deleted {
		t.Fatalf("expected unreferenced place to be deleted, got %v %v", deleted, err)
	}
}

func TestPlaceDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	detail, _ := s.Listings().CreateWithPlace(ctx, draft("Cascade"), owner.ID)
	if _, err := s.Users().AddFavorite(ctx, owner.ID, detail.PlaceID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := s.Users().RecordVisit(ctx, owner.ID, detail.PlaceID, domain.HistoryLimit); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}

	if err := s.Places().Delete(ctx, detail.PlaceID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Listings().FindByID(ctx, detail.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected listing removed, got %v", err)
	}
	ledger, err := s.Users().GetLedger(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(ledger.Favorites) != 0 || len(ledger.History) != 0 {
		t.Fatalf("expected pruned ledger, got %+v", ledger)
	}
}

func TestUserDeleteCascadesListingsButKeepsPlaces(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	detail, _ := s.Listings().CreateWithPlace(ctx, draft("Orphan"), owner.ID)

	if err := s.Users().Delete(ctx, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Listings().FindByID(ctx, detail.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected listing removed, got %v", err)
	}
	if _, err := s.Places().FindByID(ctx, detail.PlaceID); err != nil {
		t.Fatalf("expected place kept: %v", err)
	}
}

func TestPublicListHidesUnacceptedPlaces(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	pending, _ := s.Listings().CreateWithPlace(ctx, draft("Pending"), owner.ID)
	accepted, _ := s.Listings().CreateWithPlace(ctx, draft("Accepted"), owner.ID)
	if _, err := s.Listings().SetStatus(ctx, accepted.ID, domain.ListingStatusAccepted, nil); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	direct, _ := s.Places().Create(ctx, draft("Direct"))

	places, err := s.Places().List(ctx, domain.PlaceListFilter{Sort: domain.PlaceSortNameAsc})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(places) != 2 || places[0].ID != accepted.PlaceID || places[1].ID != direct.ID {
		t.Fatalf("unexpected visible places: %+v", places)
	}
	for _, p := range places {
		if p.ID == pending.PlaceID {
			t.Fatalf("pending place must be hidden")
		}
	}
}

func TestInjectedFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	place, _ := s.Places().Create(ctx, draft("Stable"))

	boom := errors.New("disk on fire")
	s.SetFailure(boom)
	if _, err := s.Users().AddFavorite(ctx, owner.ID, place.ID); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	s.SetFailure(nil)

	ledger, _ := s.Users().GetLedger(ctx, owner.ID)
	if len(ledger.Favorites) != 0 {
		t.Fatalf("expected no mutation, got %v", ledger.Favorites)
	}
}
