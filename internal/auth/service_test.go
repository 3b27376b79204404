package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/store"
	"github.com/vovakirdan/rentline-server/internal/store/sqlite"
)

func testJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
}

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return NewService(st, testJWTConfig())
}

func validRequest() RegisterRequest {
	return RegisterRequest{Email: "alice@example.com", Password: "password123", FirstName: "Alice"}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		want   error
	}{
		{name: "bad email", mutate: func(r *RegisterRequest) { r.Email = "not-an-email" }, want: ErrInvalidEmail},
		{name: "display name email", mutate: func(r *RegisterRequest) { r.Email = "Alice <alice@example.com>" }, want: ErrInvalidEmail},
		{name: "blank name", mutate: func(r *RegisterRequest) { r.FirstName = "  " }, want: ErrInvalidName},
		{name: "short password", mutate: func(r *RegisterRequest) { r.Password = "short" }, want: ErrInvalidPassword},
		{name: "unknown role", mutate: func(r *RegisterRequest) { r.Role = "owner" }, want: ErrInvalidRole},
		{name: "admin role", mutate: func(r *RegisterRequest) { r.Role = store.RoleAdmin }, want: ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			if _, _, err := svc.Register(ctx, req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegister_NormalizesEmailAndDefaultsRole(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	req := validRequest()
	req.Email = "  Alice@Example.com "
	token, user, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if user.Email != "alice@example.com" || user.Role != store.RoleTenant {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, _, err := svc.Register(ctx, validRequest()); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	req := validRequest()
	req.Role = store.RoleLandlord
	if _, _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	token, user, err := svc.Login(ctx, "ALICE@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != store.RoleLandlord || claims.FirstName != "Alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, validRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	id, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != user.ID || id.FirstName != "Alice" || id.Role != string(store.RoleTenant) {
		t.Fatalf("unexpected identity: %+v", id)
	}

	if _, err := svc.Authenticate(""); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}
	if _, err := svc.Authenticate("garbage"); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for garbage token, got %v", err)
	}

	other := testJWTConfig()
	other.Secret = []byte("another-secret")
	forged, err := GenerateToken(other, user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := svc.Authenticate(forged); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for wrong secret, got %v", err)
	}

	noUser, err := GenerateToken(testJWTConfig(), &store.User{FirstName: "Ghost", Role: store.RoleTenant})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := svc.Authenticate(noUser); !errors.Is(err, core.ErrMalformedIdentity) {
		t.Fatalf("expected ErrMalformedIdentity, got %v", err)
	}
}

func TestValidateToken_RejectsExpiredAndWrongAudience(t *testing.T) {
	cfg := testJWTConfig()
	user := &store.User{ID: 7, FirstName: "Bo", Role: store.RoleTenant}

	expired := testJWTConfig()
	expired.TTL = -time.Minute
	token, err := GenerateToken(expired, user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ValidateToken(cfg, token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	otherAud := testJWTConfig()
	otherAud.Audience = "someone-else"
	token, err = GenerateToken(otherAud, user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ValidateToken(cfg, token); err == nil {
		t.Fatalf("expected audience mismatch to fail")
	}
}
