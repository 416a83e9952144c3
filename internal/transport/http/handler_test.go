package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/memory"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type testServer struct {
	e     *echo.Echo
	store *memory.Store
	auth  *service.AuthService
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	jwt := util.NewJWTManager("handler-test-secret", time.Hour)
	auth := service.NewAuthService(store.Users(), store.Sessions(), jwt, nil, service.AuthServiceConfig{})
	e := NewRouter(RouterConfig{AllowOrigins: []string{"*"}})
	RegisterRoutes(e, Services{
		Gate:     service.NewGate(jwt, store.Sessions(), store.Users()),
		Auth:     auth,
		Listings: service.NewListingService(store.Listings(), store.Users(), nil, nil, nil, service.ListingServiceConfig{}),
		Places:   service.NewPlaceService(store.Places(), nil, nil, nil, service.PlaceServiceConfig{}),
		Ledger:   service.NewLedgerService(store.Users(), nil),
		Profiles: service.NewProfileService(store.Users(), store.Users(), nil, nil, nil, service.ProfileServiceConfig{}),
	}, nil)
	return &testServer{e: e, store: store, auth: auth}
}

func (s *testServer) login(t *testing.T, email string, role domain.Role) string {
	t.Helper()
	res, err := s.auth.Register(context.Background(), service.RegisterInput{Email: email, Password: "Sup3r$ecretPass"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if role != domain.RoleUser {
		if _, err := s.store.Users().UpdateRole(context.Background(), res.User.ID, role); err != nil {
			t.Fatalf("set role: %v", err)
		}
	}
	return res.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: response is not an envelope: %q", method, path, rec.Body.String())
	}
	return rec, env
}

func placeBody(name string) map[string]any {
	return map[string]any{
		"name":        name,
		"city":        "Bangkok",
		"address":     "99 Sukhumvit Rd",
		"category":    []string{"restaurant"},
		"price_level": 3,
		"map_link":    "https://maps.google.com/?q=13.7373,100.5601",
	}
}

func submitListing(t *testing.T, s *testServer, token, name string) domain.ListingDetail {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/v1/listings", token, placeBody(name))
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d (%s)", rec.Code, env.Error)
	}
	var detail domain.ListingDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	return detail
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || env.Message != util.MessageSuccess {
		t.Fatalf("unexpected health response %d %+v", rec.Code, env)
	}
}

func TestLandingPage(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>PlaceBook</title>") {
		t.Fatalf("unexpected landing page %d", rec.Code)
	}
}

func TestAdminListingsMetaReportsAppliedLimit(t *testing.T) {
	s := newTestServer(t)
	userToken := s.login(t, "user@example.com", domain.RoleUser)
	adminToken := s.login(t, "admin@example.com", domain.RoleAdmin)
	for i := 0; i < 3; i++ {
		submitListing(t, s, userToken, fmt.Sprintf("Stall %d", i))
	}

	cases := []struct {
		query     string
		wantLimit int
		wantCount int
	}{
		{query: "", wantLimit: 0, wantCount: 3},
		{query: "?limit=2", wantLimit: 2, wantCount: 2},
		{query: "?limit=5000", wantLimit: 200, wantCount: 3},
	}
	for _, tc := range cases {
		rec, env := s.do(t, http.MethodGet, "/api/v1/admin/listings"+tc.query, adminToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d (%s)", tc.query, rec.Code, env.Error)
		}
		var page struct {
			Items []domain.ListingDetail `json:"items"`
			Meta  PageMeta               `json:"meta"`
		}
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("decode page: %v", err)
		}
		if page.Meta.Limit != tc.wantLimit || page.Meta.Count != tc.wantCount || len(page.Items) != tc.wantCount {
			t.Fatalf("%q: unexpected page meta %+v with %d items", tc.query, page.Meta, len(page.Items))
		}
	}
}

func TestOwnerRenameOntoOwnListingConflicts(t *testing.T) {
	s := newTestServer(t)
	ownerToken := s.login(t, "owner@example.com", domain.RoleOwner)
	submitListing(t, s, ownerToken, "Khao Soi Corner")
	second := submitListing(t, s, ownerToken, "Noodle Bar")

	rec, env := s.do(t, http.MethodPut, "/api/v1/listings/"+second.ID.String(), ownerToken, map[string]any{"name": "khao soi corner"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (%s)", rec.Code, env.Error)
	}
}

func TestAdminListingsAuthorization(t *testing.T) {
	s := newTestServer(t)
	userToken := s.login(t, "user@example.com", domain.RoleUser)
	ownerToken := s.login(t, "owner@example.com", domain.RoleOwner)
	adminToken := s.login(t, "admin@example.com", domain.RoleAdmin)

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{name: "anonymous", token: "", status: http.StatusUnauthorized},
		{name: "garbage token", token: "nope", status: http.StatusUnauthorized},
		{name: "user", token: userToken, status: http.StatusForbidden},
		{name: "owner", token: ownerToken, status: http.StatusForbidden},
		{name: "admin", token: adminToken, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := s.do(t, http.MethodGet, "/api/v1/admin/listings", tc.token, nil)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, env.Error)
			}
			want := util.MessageSuccess
			if tc.status != http.StatusOK {
				want = util.MessageFailed
			}
			if env.Message != want {
				t.Fatalf("expected message %q, got %q", want, env.Message)
			}
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(t)
	userToken := s.login(t, "user@example.com", domain.RoleUser)
	adminToken := s.login(t, "admin@example.com", domain.RoleAdmin)
	listing := submitListing(t, s, userToken, "Som Tam Place")

	path := "/api/v1/admin/listings/" + listing.ID.String() + "/status"
	rec, env := s.do(t, http.MethodPut, path, adminToken, StatusRequest{Status: "approved"})
	if rec.Code != http.StatusBadRequest || env.Error == "" {
		t.Fatalf("expected 400 with error, got %d %+v", rec.Code, env)
	}
	stored, err := s.store.Listings().FindByID(context.Background(), listing.ID)
	if err != nil || stored.Status != domain.ListingStatusPending {
		t.Fatalf("status must stay pending, got %v (%v)", stored.Status, err)
	}

	rec, _ = s.do(t, http.MethodPut, path, userToken, StatusRequest{Status: "accepted"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodPut, "/api/v1/admin/listings/not-a-uuid/status", adminToken, StatusRequest{Status: "accepted"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	userToken := s.login(t, "user@example.com", domain.RoleUser)
	otherToken := s.login(t, "other@example.com", domain.RoleOwner)
	adminToken := s.login(t, "admin@example.com", domain.RoleAdmin)

	listing := submitListing(t, s, userToken, "Jay Fai")
	if listing.Place == nil || listing.Place.Latitude != 13.7373 {
		t.Fatalf("expected coordinates from map link, got %+v", listing.Place)
	}

	rec, _ := s.do(t, http.MethodPost, "/api/v1/listings", userToken, placeBody("jay fai"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodPost, "/api/v1/listings", userToken, map[string]any{"name": "Half"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete draft, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodGet, "/api/v1/listings/"+listing.ID.String(), otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for other owner, got %d", rec.Code)
	}

	rec, env := s.do(t, http.MethodGet, "/api/v1/places", "", nil)
	if rec.Code != http.StatusOK || strings.Contains(string(env.Data), listing.PlaceID.String()) {
		t.Fatalf("pending place must not be public: %d %s", rec.Code, env.Data)
	}

	rec, _ = s.do(t, http.MethodPut, "/api/v1/admin/listings/"+listing.ID.String()+"/status", adminToken, StatusRequest{Status: "accepted"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d", rec.Code)
	}
	rec, env = s.do(t, http.MethodGet, "/api/v1/places?category=restaurant&sort=alpha_asc", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), listing.PlaceID.String()) {
		t.Fatalf("accepted place must be public: %d %s", rec.Code, env.Data)
	}

	rec, env = s.do(t, http.MethodPut, "/api/v1/listings/"+listing.ID.String(), userToken, map[string]any{"phone": "+66 2 000 0000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("promoted owner edit: expected 200, got %d (%s)", rec.Code, env.Error)
	}
	var edited domain.ListingDetail
	if err := json.Unmarshal(env.Data, &edited); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if edited.Status != domain.ListingStatusPending || !edited.NeedsReview {
		t.Fatalf("owner edit must re-pend, got %s", edited.Status)
	}

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/listings/"+listing.ID.String(), otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting another's listing, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodDelete, "/api/v1/listings/"+listing.ID.String(), userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodGet, "/api/v1/places/"+listing.PlaceID.String(), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unreferenced place removed, got %d", rec.Code)
	}
}

func TestLedgerOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@example.com", domain.RoleAdmin)
	userToken := s.login(t, "user@example.com", domain.RoleUser)

	rec, env := s.do(t, http.MethodPost, "/api/v1/admin/places", adminToken, placeBody("Admin Place"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create place: %d (%s)", rec.Code, env.Error)
	}
	var place domain.Place
	if err := json.Unmarshal(env.Data, &place); err != nil {
		t.Fatalf("decode place: %v", err)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/users/me/favorites", "", PlaceRefRequest{PlaceID: place.ID.String()})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodPost, "/api/v1/users/me/favorites", userToken, PlaceRefRequest{PlaceID: "bad"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodPost, "/api/v1/users/me/favorites", userToken, PlaceRefRequest{PlaceID: "00000000-0000-0000-0000-000000000001"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	for i := 0; i < 2; i++ {
		rec, env = s.do(t, http.MethodPost, "/api/v1/users/me/favorites", userToken, PlaceRefRequest{PlaceID: place.ID.String()})
		if rec.Code != http.StatusOK {
			t.Fatalf("add favorite: %d", rec.Code)
		}
	}
	var favs struct {
		Favorites []string `json:"favorites"`
	}
	if err := json.Unmarshal(env.Data, &favs); err != nil || len(favs.Favorites) != 1 {
		t.Fatalf("expected one favorite, got %s (%v)", env.Data, err)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/users/me/history", userToken, PlaceRefRequest{PlaceID: place.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("record visit: %d", rec.Code)
	}
	rec, env = s.do(t, http.MethodGet, "/api/v1/users/me", userToken, nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), place.ID.String()) {
		t.Fatalf("profile must include ledger: %d %s", rec.Code, env.Data)
	}
	rec, env = s.do(t, http.MethodDelete, "/api/v1/users/me/history", userToken, nil)
	if rec.Code != http.StatusOK || strings.Contains(string(env.Data), place.ID.String()) {
		t.Fatalf("clear history: %d %s", rec.Code, env.Data)
	}
	rec, _ = s.do(t, http.MethodDelete, "/api/v1/users/me/favorites/"+place.ID.String(), userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove favorite: %d", rec.Code)
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: "new@example.com", Password: "Sup3r$ecretPass"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d (%s)", rec.Code, env.Error)
	}
	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: "new@example.com", Password: "Sup3r$ecretPass"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "new@example.com", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "new@example.com", Password: "Sup3r$ecretPass"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d", rec.Code)
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil || res.Token == "" {
		t.Fatalf("expected token, got %s", env.Data)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatalf("password material must not be serialized: %s", env.Data)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", res.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodGet, "/api/v1/users/me", res.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token must fail, got %d", rec.Code)
	}
}

func TestParsePlaceQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/places?q=%20noodle%20&city=Bangkok&categories=Cafe,%20Bar%20&category=Street&price_level=2&sort=rating_desc&limit=5&offset=10", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	q, err := parsePlaceQuery(c)
	if err != nil {
		t.Fatalf("parsePlaceQuery: %v", err)
	}
	if q.Search != "noodle" || q.City != "Bangkok" || q.Sort != "rating_desc" {
		t.Fatalf("unexpected query %+v", q)
	}
	expected := []string{"Street", "Cafe", "Bar"}
	if len(q.Categories) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, q.Categories)
	}
	for i, want := range expected {
		if q.Categories[i] != want {
			t.Fatalf("expected %q at %d, got %q", want, i, q.Categories[i])
		}
	}
	if q.PriceLevel == nil || *q.PriceLevel != 2 || q.Limit != 5 || q.Offset != 10 {
		t.Fatalf("unexpected numeric fields %+v", q)
	}

	bad := httptest.NewRequest(http.MethodGet, "/api/v1/places?limit=-1", nil)
	if _, err := parsePlaceQuery(e.NewContext(bad, httptest.NewRecorder())); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

func TestSanitizeBodyRedactsCredentials(t *testing.T) {
	body := []byte(`{"email":"a@example.com","password":"Sup3r$ecretPass","data":{"token":"abc"}}`)
	summary, ok := sanitizeBody(body, echo.MIMEApplicationJSON).(map[string]any)
	if !ok {
		t.Fatalf("expected map summary")
	}
	if summary["password"] != "redacted" {
		t.Fatalf("password not redacted: %v", summary["password"])
	}
	if nested := summary["data"].(map[string]any); nested["token"] != "redacted" {
		t.Fatalf("token not redacted: %v", nested["token"])
	}
	if summary["email"] != "a@example.com" {
		t.Fatalf("unexpected email %v", summary["email"])
	}
}
