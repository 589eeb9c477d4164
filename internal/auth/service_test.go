package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/internal/users"
	"github.com/dramirezh/tienda-backend/pkg/config"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/enums"
	pkgerrors "github.com/dramirezh/tienda-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate users: %v", err)
	}

	svc, err := NewService(ServiceParams{
		UserRepo: users.NewRepository(db),
		JWTConfig: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "tienda-test",
			ExpirationMinutes: 30,
		},
		PasswordCfg: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Email:    "Ana@Example.com",
		Password: "correct horse battery",
		Name:     "Ana Torres",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.Token == "" {
		t.Fatal("expected a token on registration")
	}
	if registered.User.Role != enums.RoleCustomer {
		t.Fatalf("expected customer role, got %q", registered.User.Role)
	}
	if registered.User.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", registered.User.Email)
	}

	logged, err := svc.Login(ctx, LoginRequest{
		Email:    "ana@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.User.ID != registered.User.ID {
		t.Fatal("expected the same account for login and register")
	}
	if !logged.ExpiresAt.After(time.Now()) {
		t.Fatal("expected future token expiry")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	req := RegisterRequest{Email: "dup@example.com", Password: "password123", Name: "Dup"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, req)
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		Email:    "bob@example.com",
		Password: "password123",
		Name:     "Bob",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, LoginRequest{Email: "bob@example.com", Password: "wrong"})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}
