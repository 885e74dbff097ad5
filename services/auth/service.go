package auth

import (
	"context"
	"fmt"
	"time"

	userRepo "knead/database/repository/user"
	"knead/models"
	"knead/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionPrefix = "authSession:"
	tokenTTL      = 72 * time.Hour
)

// AuthService handles account registration, sign-in, and token resolution.
type AuthService interface {
	Register(email, name, password string) (*models.User, string, error)
	SignIn(email, password string) (*models.User, string, error)

	// ContextFor validates a bearer token and resolves the session's
	// authorization context once. The context is what the rest of the system
	// consults for capability checks.
	ContextFor(tokenString string) (*Context, error)

	// Revoke invalidates the session behind the token.
	Revoke(tokenString string) error
}

// DefaultAuthService implements AuthService with bcrypt password hashes and
// Redis-backed session records keyed by token hash.
type DefaultAuthService struct {
	Users    userRepo.UserRepository
	Sessions *redis.Client
}

func (s *DefaultAuthService) Register(email, name, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required")
	}

	existing, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check for existing account: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("an account with email %s already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.Users.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.openSession(user)
	if err != nil {
		return nil, "", err
	}
	utils.GetLogger().Info("account registered", zap.String("userId", user.ID))
	return user, token, nil
}

func (s *DefaultAuthService) SignIn(email, password string) (*models.User, string, error) {
	user, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}

	token, err := s.openSession(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *DefaultAuthService) openSession(user *models.User) (string, error) {
	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := sessionPrefix + utils.HashToken(token)
	if err := s.Sessions.Set(ctx, key, user.ID, tokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

func (s *DefaultAuthService) ContextFor(tokenString string) (*Context, error) {
	userID, err := utils.ExtractIDFromToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := sessionPrefix + utils.HashToken(tokenString)
	stored, err := s.Sessions.Get(ctx, key).Result()
	if err == redis.Nil || (err == nil && stored != userID) {
		return nil, fmt.Errorf("session not found or revoked")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return Resolve(s.Users, userID)
}

func (s *DefaultAuthService) Revoke(tokenString string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := sessionPrefix + utils.HashToken(tokenString)
	return s.Sessions.Del(ctx, key).Err()
}
