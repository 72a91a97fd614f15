package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/store"
	"github.com/farellandr/eventpass/internal/validation"
)

const AdminRole = "admin"

// AdminClaims are carried by the admin session token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	admins       store.AdminStore
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	bcryptCost   int
	now          func() time.Time
	log          zerolog.Logger
}

type AuthOption func(*AuthService)

// WithBcryptCost overrides bcrypt.DefaultCost, mostly to keep tests fast.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func NewAuthService(admins store.AdminStore, secret string, ttl time.Duration, secureCookie bool, log zerolog.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		admins:       admins,
		secret:       []byte(secret),
		ttl:          ttl,
		secureCookie: secureCookie,
		bcryptCost:   bcrypt.DefaultCost,
		now:          time.Now,
		log:          log.With().Str("component", "auth").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) SessionTTL() time.Duration { return s.ttl }

func (s *AuthService) SecureCookie() bool { return s.secureCookie }

// EnsureAdmin seeds the admin credential unless one already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.admins.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash the password: %w", err)
	}
	if err := s.admins.Seed(ctx, username, string(hash)); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("admin credential seeded")
	return nil
}

// Login checks the credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.admins.Get(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", apperrors.ErrAuth)
		}
		return "", err
	}
	if admin.Username != username {
		return "", fmt.Errorf("%w: invalid credentials", apperrors.ErrAuth)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.log.Warn().Str("username", username).Msg("failed admin login")
		return "", fmt.Errorf("%w: invalid credentials", apperrors.ErrAuth)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a session token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAuth, err)
	}
	if claims.Role != AdminRole {
		return nil, fmt.Errorf("%w: token is not an admin session", apperrors.ErrAuth)
	}
	return claims, nil
}

// ChangePassword replaces the admin password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := validation.Var("new_password", newPassword, "required,min=6"); err != nil {
		return err
	}

	admin, err := s.admins.Get(ctx)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: old password is incorrect", apperrors.ErrAuth)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash the password: %w", err)
	}
	if err := s.admins.SetPasswordHash(ctx, string(hash)); err != nil {
		return err
	}
	s.log.Info().Str("username", admin.Username).Msg("admin password changed")
	return nil
}
