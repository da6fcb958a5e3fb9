package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"absensi/internal/models"
	"absensi/internal/utils"
)

var testKey = []byte("test-secret")

func newAuthFixture() (*AuthService, *memUsers, *mailRecorder) {
	users := newMemUsers()
	mails := &mailRecorder{}
	svc := NewAuthService(users, mails, newMemSettings(), AuthConfig{
		JWTKey:        testKey,
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		AdminRegToken: "letmein",
	})
	return svc, users, mails
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, mails := newAuthFixture()
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, models.RegisterRequest{
		Name: "Budi", Email: " Budi@Example.com ", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleEmployee || user.Email != "budi@example.com" || user.Position != "Karyawan" {
		t.Fatalf("unexpected user %+v", user)
	}
	claims, err := utils.ParseAccessToken(testKey, tokens.AccessToken)
	if err != nil || claims.UserID != user.ID || claims.Role != models.RoleEmployee {
		t.Fatalf("bad access token: %v %+v", err, claims)
	}
	if len(mails.sent) != 1 || mails.sent[0].kind != "welcome" {
		t.Fatalf("expected welcome mail, got %+v", mails.sent)
	}

	if _, _, err := svc.Login(ctx, "budi@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.Login(ctx, "budi@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	req := models.RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"}
	if _, _, err := svc.Register(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Register(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterAdminToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, models.RegisterRequest{Name: "Boss", Email: "boss@example.com", Password: "secret1", AdminToken: "letmein"})
	if err != nil || u.Role != models.RoleAdmin {
		t.Fatalf("expected admin, got %+v %v", u, err)
	}
	u, _, err = svc.Register(ctx, models.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "secret1", AdminToken: "guess"})
	if err != nil || u.Role != models.RoleEmployee {
		t.Fatalf("wrong token must register an employee, got %+v %v", u, err)
	}

	svc.cfg.AdminRegToken = ""
	u, _, err = svc.Register(ctx, models.RegisterRequest{Name: "Mal", Email: "mal@example.com", Password: "secret1", AdminToken: ""})
	if err != nil || u.Role != models.RoleEmployee {
		t.Fatalf("disabled admin registration must yield employee, got %+v %v", u, err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	_, tokens, err := svc.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == tokens.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("old refresh token must be rejected, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	h, err := svc.HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("secret1")) != nil || !svc.CheckPassword(h, "secret1") {
		t.Fatal("hash does not verify")
	}
}
