package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

type fakeGoogle struct {
	gotToken    string
	gotAudience string
	payload     *idtoken.Payload
	err         error
}

func (f *fakeGoogle) validate(_ context.Context, token, audience string) (*idtoken.Payload, error) {
	f.gotToken = token
	f.gotAudience = audience
	return f.payload, f.err
}

// failingUserRepo wraps a real repository and fails CreateEmailUser.
type failingUserRepo struct {
	ports.UserRepository
	createEmailErr error
}

func (f *failingUserRepo) CreateEmailUser(ctx context.Context, email string, name *string, hash, salt []byte) (*domain.User, error) {
	if f.createEmailErr != nil {
		return nil, f.createEmailErr
	}
	return f.UserRepository.CreateEmailUser(ctx, email, name, hash, salt)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cases := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{name: "bad email", input: RegisterInput{Email: "nope", Password: "Sup3r$ecretPass"}, wantErr: ErrValidation},
		{name: "short password", input: RegisterInput{Email: "a@example.com", Password: "Ab1$"}, wantErr: ErrValidation},
		{name: "weak password", input: RegisterInput{Email: "a@example.com", Password: "alllowercaseletters"}, wantErr: ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.auth.Register(ctx, tc.input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	res, err := env.auth.Register(ctx, RegisterInput{Email: "  New@Example.com ", Password: "Sup3r$ecretPass", Name: strPtr(" Nina ")})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token == "" || res.User.Email != "new@example.com" || res.User.Role != domain.RoleUser {
		t.Fatalf("unexpected result %+v", res.User)
	}
	if res.User.Name == nil || *res.User.Name != "Nina" {
		t.Fatalf("expected trimmed name, got %v", res.User.Name)
	}
	if !res.ExpiresAt.After(res.User.CreatedAt) {
		t.Fatalf("expected expiry after creation")
	}

	if _, err := env.auth.Register(ctx, RegisterInput{Email: "NEW@example.com", Password: "Sup3r$ecretPass"}); !errors.Is(err, ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestRegisterStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	repo := &failingUserRepo{UserRepository: env.store.Users(), createEmailErr: errors.New("db down")}
	svc := NewAuthService(repo, env.store.Sessions(), env.jwt, nil, AuthServiceConfig{})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "x@example.com", Password: "Sup3r$ecretPass"})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	if _, err := env.auth.Register(ctx, RegisterInput{Email: "login@example.com", Password: "Sup3r$ecretPass"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := env.auth.Login(ctx, "LOGIN@example.com", "Sup3r$ecretPass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := env.gate.Authenticate(ctx, res.Token); err != nil {
		t.Fatalf("login token must authenticate: %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"login@example.com", "Wr0ng$Password"},
		{"missing@example.com", "Sup3r$ecretPass"},
		{"", ""},
	} {
		if _, err := env.auth.Login(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", tc.email, err)
		}
	}
}

func TestLoginWithGoogle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	google := &fakeGoogle{payload: &idtoken.Payload{Claims: map[string]any{
		"email":          "G.User@example.com",
		"email_verified": true,
		"name":           "G User",
		"picture":        "https://lh3.example.com/p.png",
	}}}
	env.auth.SetGoogleValidator(google.validate)

	res, err := env.auth.LoginWithGoogle(ctx, "google-token")
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if google.gotToken != "google-token" || google.gotAudience != "test-audience" {
		t.Fatalf("validator called with %q/%q", google.gotToken, google.gotAudience)
	}
	if res.User.Email != "g.user@example.com" || res.User.ImageURL == nil {
		t.Fatalf("unexpected user %+v", res.User)
	}
	again, err := env.auth.LoginWithGoogle(ctx, "google-token")
	if err != nil || again.User.ID != res.User.ID {
		t.Fatalf("expected same account on second login, got %v", err)
	}
	if _, err := env.auth.Login(ctx, "g.user@example.com", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("google accounts have no password, got %v", err)
	}

	t.Run("unverified email", func(t *testing.T) {
		google.payload = &idtoken.Payload{Claims: map[string]any{"email": "u@example.com", "email_verified": false}}
		if _, err := env.auth.LoginWithGoogle(ctx, "t"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		google.err = errors.New("bad signature")
		if _, err := env.auth.LoginWithGoogle(ctx, "t"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewAuthService(env.store.Users(), env.store.Sessions(), env.jwt, nil, AuthServiceConfig{})
		if _, err := svc.LoginWithGoogle(ctx, "t"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.principal(t, "admin@example.com", domain.RoleAdmin)
	owner := env.principal(t, "owner@example.com", domain.RoleOwner)
	listing := env.submit(t, owner, "Owner's place")

	if _, err := env.auth.ListUsers(ctx, owner, 0, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	users, err := env.auth.ListUsers(ctx, admin, 0, 0)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers: %d %v", len(users), err)
	}

	if _, err := env.auth.ChangeRole(ctx, admin, owner.UserID, "superuser"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := env.auth.ChangeRole(ctx, admin, admin.UserID, "user"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected self-demotion refused, got %v", err)
	}
	if _, err := env.auth.ChangeRole(ctx, admin, uuid.New(), "owner"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	changed, err := env.auth.ChangeRole(ctx, admin, owner.UserID, "USER")
	if err != nil || changed.Role != domain.RoleUser {
		t.Fatalf("ChangeRole: %+v %v", changed, err)
	}

	if err := env.auth.DeleteUser(ctx, owner, admin.UserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := env.auth.DeleteUser(ctx, admin, admin.UserID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected self-delete refused, got %v", err)
	}
	if err := env.auth.DeleteUser(ctx, admin, owner.UserID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := env.auth.DeleteUser(ctx, admin, owner.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := env.listings.GetOne(ctx, admin, listing.ID); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected listings removed with user, got %v", err)
	}
	if _, err := env.store.Places().FindByID(ctx, listing.PlaceID); err != nil {
		t.Fatalf("places survive user deletion, got %v", err)
	}
}
