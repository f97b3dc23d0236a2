package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"lobohub/internal/database"
	"lobohub/internal/models"
)

const userKeyPrefix = "user/"

// UserRepository persists users in the key-value store
type UserRepository struct {
	kv database.KV
}

// NewUserRepository creates a new user repository
func NewUserRepository(kv database.KV) *UserRepository {
	return &UserRepository{kv: kv}
}

func userKey(id string) string {
	return userKeyPrefix + id
}

// CreateUser stores a new user
func (r *UserRepository) CreateUser(user *models.User) error {
	return r.SaveUser(user)
}

// SaveUser writes a user, overwriting any previous state
func (r *UserRepository) SaveUser(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := r.kv.Set(userKey(user.ID), data); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID, returning nil when absent
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	data, err := r.kv.Get(userKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, returning nil when absent.
// This scans all users; the store holds a handful of family members, so a
// secondary index is not worth its write-path complexity.
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := r.ListUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.ToLower(users[i].Email) == email {
			return &users[i], nil
		}
	}
	return nil, nil
}

// ListUsers retrieves all users on this device
func (r *UserRepository) ListUsers() ([]models.User, error) {
	keys, err := r.kv.ListKeysWithPrefix(userKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var users []models.User
	for _, key := range keys {
		data, err := r.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if data == nil {
			continue
		}
		var user models.User
		if err := json.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// ListFamilyMembers retrieves every user affiliated with the given family,
// in insertion order
func (r *UserRepository) ListFamilyMembers(familyID string) ([]models.User, error) {
	users, err := r.ListUsers()
	if err != nil {
		return nil, err
	}

	var members []models.User
	for _, user := range users {
		if user.FamilyID == familyID {
			members = append(members, user)
		}
	}
	return members, nil
}
