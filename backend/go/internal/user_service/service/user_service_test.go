package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/models"
	"EchoChat/backend/go/internal/user_service/store"
	"EchoChat/backend/go/pkg/logger"
)

type fakeUserStore struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint]*models.User{}, nextID: 1}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func newTestService(userStore store.UserStore) *UserService {
	cfg := &config.AuthConfig{JwtSecret: "test-secret", TokenTTL: 3600}
	return NewUserService(userStore, cfg, logger.New("user-test", "", ""))
}

func TestRegister_HashesPassword(t *testing.T) {
	s := newTestService(newFakeUserStore())

	user, err := s.Register(context.Background(), "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct horse")))
	assert.Equal(t, models.StatusActive, user.Status)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	s := newTestService(newFakeUserStore())

	_, err := s.Register(context.Background(), "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	_, err = s.Register(context.Background(), "alice", "other@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.Register(context.Background(), "alice2", "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	s := newTestService(newFakeUserStore())
	_, err := s.Register(context.Background(), "alice", "alice@example.com", "short")
	assert.Error(t, err)
}

func TestLogin_IssuesTokenWithSubjectClaim(t *testing.T) {
	s := newTestService(newFakeUserStore())

	registered, err := s.Register(context.Background(), "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	tokenString, user, err := s.Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotNil(t, user.LastLoginAt)

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "1", claims["sub"])
}

func TestLogin_RejectsWrongPassword(t *testing.T) {
	s := newTestService(newFakeUserStore())

	_, err := s.Register(context.Background(), "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	_, _, err = s.Login(context.Background(), "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(context.Background(), "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetProfile(t *testing.T) {
	s := newTestService(newFakeUserStore())

	registered, err := s.Register(context.Background(), "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	user, err := s.GetProfile(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, registered.Username, user.Username)

	_, err = s.GetProfile(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetProfile(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, ErrNotFound)
}
