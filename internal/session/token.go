package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lobohub/internal/models"
)

var (
	ErrInvalidToken   = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired")
	ErrUserNotFound   = errors.New("session user not found")
)

// UserLookup resolves a user id to its current state. Satisfied by
// repository.UserRepository.
type UserLookup interface {
	GetUserByID(id string) (*models.User, error)
}

// TokenManager issues and resolves HMAC-signed session tokens
type TokenManager struct {
	secret   []byte
	duration time.Duration
	users    UserLookup
}

// NewTokenManager creates a token manager with the given signing secret and
// session duration
func NewTokenManager(secret string, duration time.Duration, users UserLookup) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		duration: duration,
		users:    users,
	}
}

// Issue creates a signed session token for the user
func (m *TokenManager) Issue(user *models.User) (*models.Session, error) {
	now := time.Now()
	expiresAt := now.Add(m.duration)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.Session{
		Token:     signed,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// ResolveSession parses and verifies a token, then loads the user's current
// state. Expired or tampered tokens fail; the user record is re-read on
// every call so family changes are visible immediately.
func (m *TokenManager) ResolveSession(tokenString string) (*models.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := m.users.GetUserByID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
