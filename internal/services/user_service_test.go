package services

import (
	"context"
	"errors"
	"testing"

	"absensi/internal/models"
)

func newUserFixture() (*UserService, *memUsers, *mailRecorder) {
	auth, users, mails := newAuthFixture()
	return NewUserService(users, auth, mails, newMemSettings()), users, mails
}

func TestUserCreateAndUpdate(t *testing.T) {
	svc, _, mails := newUserFixture()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateUserInput{Name: "A", Email: "a@example.com", Password: "secret1", Position: "Staff"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Create(ctx, CreateUserInput{Name: "B", Email: "b@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(mails.sent) != 2 {
		t.Fatalf("expected two welcome mails, got %d", len(mails.sent))
	}

	if _, err := svc.Update(ctx, b.ID, UpdateUserInput{Email: "a@example.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Update(ctx, a.ID, UpdateUserInput{Role: "root"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad role, got %v", err)
	}

	got, err := svc.Update(ctx, a.ID, UpdateUserInput{Name: "Alpha", Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Alpha" || got.Role != models.RoleAdmin || got.Position != "Staff" {
		t.Fatalf("unexpected update result %+v", got)
	}

	// profile updates never change the role
	got, err = svc.UpdateProfile(ctx, b.ID, UpdateUserInput{Position: "Lead", Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != models.RoleEmployee || got.Position != "Lead" {
		t.Fatalf("unexpected profile result %+v", got)
	}

	if _, err := svc.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()
	u, err := svc.Create(ctx, CreateUserInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "newsecret"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for wrong current password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "secret1", "123"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "secret1", "newsecret"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.auth.Login(ctx, "a@example.com", "newsecret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestPasswordChangeEndsSessions(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	u, tokens, err := svc.auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "secret1", "newsecret"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.auth.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh after password change: expected ErrInvalidToken, got %v", err)
	}

	_, tokens, err = svc.auth.Login(ctx, "a@example.com", "newsecret")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetPassword(ctx, u.ID, "resetpw1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.auth.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh after reset: expected ErrInvalidToken, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc, users, _ := newUserFixture()
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "admin@company.com", "admin123"); err != nil {
		t.Fatal(err)
	}
	if err := svc.EnsureAdmin(ctx, "admin@company.com", "admin123"); err != nil {
		t.Fatal(err)
	}
	admins, _ := users.ListByRole(ctx, models.RoleAdmin)
	if len(admins) != 1 || admins[0].Position != "System Administrator" {
		t.Fatalf("expected exactly one bootstrap admin, got %+v", admins)
	}
}
