package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"absensi/internal/models"
	"absensi/internal/repositories"
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Position string
	Role     string
}

// UpdateUserInput holds optional fields; empty strings keep the stored value.
type UpdateUserInput struct {
	Name     string
	Email    string
	Position string
	Role     string
}

type UserService struct {
	repo     repositories.UserRepository
	auth     *AuthService
	emails   EmailService
	settings SettingsProvider
}

func NewUserService(repo repositories.UserRepository, auth *AuthService, emails EmailService, settings SettingsProvider) *UserService {
	return &UserService{repo: repo, auth: auth, emails: emails, settings: settings}
}

func validRole(role string) bool {
	return role == models.RoleEmployee || role == models.RoleAdmin
}

func mapUserErr(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrDuplicateKey):
		return ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr("get user", err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" {
		return nil, validationf("name and email are required")
	}
	if len(in.Password) < 6 {
		return nil, validationf("password must be at least 6 characters")
	}
	role := in.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !validRole(role) {
		return nil, validationf("role must be employee or admin")
	}
	position := strings.TrimSpace(in.Position)
	if position == "" {
		position = defaultPosition
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Position:     position,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapUserErr("create user", err)
	}
	log.Printf("[users][create] userID=%d role=%s", user.ID, user.Role)
	sendWelcome(ctx, s.emails, s.settings, user)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != "" && !validRole(in.Role) {
		return nil, validationf("role must be employee or admin")
	}
	if err := s.apply(ctx, user, in); err != nil {
		return nil, err
	}
	if in.Role != "" {
		user.Role = in.Role
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, mapUserErr("update user", err)
	}
	return user, nil
}

// UpdateProfile lets a user change their own name, email and position.
func (s *UserService) UpdateProfile(ctx context.Context, id int, in UpdateUserInput) (*models.User, error) {
	in.Role = ""
	return s.Update(ctx, id, in)
}

func (s *UserService) apply(ctx context.Context, user *models.User, in UpdateUserInput) error {
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if pos := strings.TrimSpace(in.Position); pos != "" {
		user.Position = pos
	}
	if email := normalizeEmail(in.Email); email != "" && email != user.Email {
		taken, err := s.repo.EmailTaken(ctx, email, user.ID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
		user.Email = email
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapUserErr("delete user", err)
	}
	log.Printf("[users][delete] userID=%d", id)
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, id int, newPassword string) error {
	if len(newPassword) < 6 {
		return validationf("password must be at least 6 characters")
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return mapUserErr("reset password", err)
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, id int, current, newPassword string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.auth.CheckPassword(user.PasswordHash, current) {
		return validationf("current password is incorrect")
	}
	return s.ResetPassword(ctx, id, newPassword)
}

// EnsureAdmin creates the bootstrap administrator when no admin exists yet.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	n, err := s.repo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}
	u, err := s.Create(ctx, CreateUserInput{
		Name:     "System Administrator",
		Email:    email,
		Password: password,
		Position: "System Administrator",
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, ErrEmailTaken) {
		log.Printf("[users][bootstrap] email %q already used by a non-admin, skipping", email)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("[users][bootstrap] admin created userID=%d email=%q", u.ID, u.Email)
	return nil
}
