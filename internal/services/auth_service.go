package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"absensi/internal/models"
	"absensi/internal/repositories"
	"absensi/internal/utils"
)

const defaultPosition = "Karyawan"

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthConfig struct {
	JWTKey        []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AdminRegToken string // empty disables admin self-registration
}

type AuthService struct {
	users    repositories.UserRepository
	emails   EmailService
	settings SettingsProvider
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(users repositories.UserRepository, emails EmailService, settings SettingsProvider, cfg AuthConfig) *AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &AuthService{users: users, emails: emails, settings: settings, cfg: cfg, now: time.Now}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *AuthService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *TokenPair, error) {
	email := normalizeEmail(req.Email)
	if strings.TrimSpace(req.Name) == "" || email == "" {
		return nil, nil, validationf("name and email are required")
	}
	if len(req.Password) < 6 {
		return nil, nil, validationf("password must be at least 6 characters")
	}

	role := models.RoleEmployee
	if s.cfg.AdminRegToken != "" && req.AdminToken != "" &&
		subtle.ConstantTimeCompare([]byte(req.AdminToken), []byte(s.cfg.AdminRegToken)) == 1 {
		role = models.RoleAdmin
	}
	position := strings.TrimSpace(req.Position)
	if position == "" {
		position = defaultPosition
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Position:     position,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("register: %w", err)
	}
	log.Printf("[auth][register] userID=%d role=%s", user.ID, user.Role)
	sendWelcome(ctx, s.emails, s.settings, user)

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("[auth][login] unknown email=%q", email)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	if user.PasswordHash == "" || !s.CheckPassword(user.PasswordHash, password) {
		log.Printf("[auth][login] password mismatch userID=%d", user.ID)
		return nil, nil, ErrInvalidCredentials
	}
	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[auth][login] success userID=%d role=%s", user.ID, user.Role)
	return user, tokens, nil
}

// Refresh rotates the opaque refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	old := strings.TrimSpace(refreshToken)
	if old == "" {
		return nil, ErrInvalidToken
	}
	newRT, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	now := s.now()
	newExp := now.Add(s.cfg.RefreshTTL)
	user, err := s.users.RotateRefresh(ctx, old, newRT, newExp)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	access, exp, err := utils.SignAccessToken(s.cfg.JWTKey, user.ID, user.Role, now, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: newRT, ExpiresAt: exp}, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := s.now()
	access, exp, err := utils.SignAccessToken(s.cfg.JWTKey, user.ID, user.Role, now, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, fmt.Errorf("new refresh token: %w", err)
	}
	if err := s.users.UpdateRefresh(ctx, user.ID, rt, now.Add(s.cfg.RefreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: rt, ExpiresAt: exp}, nil
}

// sendWelcome never fails the caller.
func sendWelcome(ctx context.Context, emails EmailService, settings SettingsProvider, user *models.User) {
	if emails == nil {
		return
	}
	company := models.DefaultSettings().CompanyName
	if settings != nil {
		if st, err := settings.Get(ctx); err == nil {
			company = st.CompanyName
		}
	}
	if err := emails.SendWelcomeEmail(user.Email, user.Name, company); err != nil {
		log.Printf("[users][welcome] warning: failed to send welcome email to userID=%d: %v", user.ID, err)
	}
}
