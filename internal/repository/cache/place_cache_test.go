package cache

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

func TestPlaceKey(t *testing.T) {
	id := uuid.MustParse("7d4f5c1e-2b0a-4c7e-9a51-3f0d8e6b1a22")
	if got := placeKey(id); got != "place:7d4f5c1e-2b0a-4c7e-9a51-3f0d8e6b1a22" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDecodePlace(t *testing.T) {
	original := domain.Place{ID: uuid.New(), Name: "Khao Soi Mae Sai", City: "Chiang Mai", Category: []string{"restaurant"}, PriceLevel: 1}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := decodePlace(data)
	if err != nil {
		t.Fatalf("decodePlace: %v", err)
	}
	if decoded.ID != original.ID || decoded.Name != original.Name || len(decoded.Category) != 1 {
		t.Fatalf("unexpected decoded place %+v", decoded)
	}

	if _, err := decodePlace([]byte(`{"name":"no id"}`)); err == nil {
		t.Fatalf("expected error for entry without id")
	}
	if _, err := decodePlace([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for corrupt entry")
	}
}
