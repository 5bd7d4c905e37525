// Package service implements account registration, login, and JWT issuance.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/internal/user_service/store"
	"EchoChat/backend/go/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already taken")
	ErrNotFound           = store.ErrNotFound
)

// UserService handles accounts and tokens.
type UserService struct {
	store    store.UserStore
	log      *logger.Logger
	secret   []byte
	tokenTTL time.Duration
}

// NewUserService wires a UserService from the auth configuration.
func NewUserService(userStore store.UserStore, cfg *config.AuthConfig, log *logger.Logger) *UserService {
	ttl := time.Duration(cfg.TokenTTL) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UserService{
		store:    userStore,
		log:      log,
		secret:   []byte(cfg.JwtSecret),
		tokenTTL: ttl,
	}
}

// Register creates a new active account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, errors.New("username and email are required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	if _, err := s.store.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Status:   models.StatusActive,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithPayload(map[string]interface{}{"user_id": user.ID, "username": username}).
		Info("user registered")
	return user, nil
}

// Login verifies credentials and returns a signed token plus the account.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if user.Status != models.StatusActive {
		return "", nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.WithError(models.ErrorInfo{Message: err.Error()}).Warn("failed to record login time")
	}
	user.LastLoginAt = &now

	return token, user, nil
}

// GetProfile returns the account behind an authenticated user id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return s.store.GetByID(ctx, uint(id))
}

// issueToken signs an HS256 token whose subject is the user id. The other
// services read only the "sub" claim.
func (s *UserService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
