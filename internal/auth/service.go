package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocktide/stocktide/internal/shared"
)

const sessionKeyPrefix = "session:"

// Service wraps authentication business rules. Login sessions are opaque
// tokens stored in Redis with a sliding TTL.
type Service struct {
	repo     Repository
	sessions *redis.Client
	ttl      time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, sessions *redis.Client, ttl time.Duration) *Service {
	return &Service{repo: repo, sessions: sessions, ttl: ttl}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CreateSession mints a new session token for the user.
func (s *Service) CreateSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	key := sessionKeyPrefix + token
	if err := s.sessions.Set(ctx, key, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveSession maps a session token back to its user ID and refreshes the
// TTL. Unknown or expired tokens report shared.ErrInvalidCredentials.
func (s *Service) ResolveSession(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, shared.ErrInvalidCredentials
	}
	key := sessionKeyPrefix + token
	raw, err := s.sessions.Get(ctx, key).Result()
	if err != nil {
		return 0, shared.ErrInvalidCredentials
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, shared.ErrInvalidCredentials
	}
	_ = s.sessions.Expire(ctx, key, s.ttl).Err()
	return userID, nil
}

// DestroySession removes a session token.
func (s *Service) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Del(ctx, sessionKeyPrefix+token).Err()
}
