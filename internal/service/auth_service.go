package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lobohub/internal/models"
	"lobohub/internal/repository"
	"lobohub/internal/security"
	"lobohub/internal/session"
	"lobohub/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles registration, login, and session resolution for this
// device. It implements session.Resolver.
type AuthService struct {
	users  *repository.UserRepository
	tokens *session.TokenManager
	log    *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, tokens *session.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    logger,
	}
}

// Register creates a new user account. The user starts unaffiliated; family
// membership comes later through the membership registry.
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	credentialHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:             uuid.New().String(),
		Email:          email,
		Name:           strings.TrimSpace(name),
		CredentialHash: credentialHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))

	return user, nil
}

// Login authenticates a user and issues a session token
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.CredentialHash) {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID))

	return sess, user, nil
}

// ResolveSession maps a session token to its user, implementing
// session.Resolver
func (s *AuthService) ResolveSession(token string) (*models.User, error) {
	return s.tokens.ResolveSession(token)
}
