package models

import "time"

// User represents a member account on this device
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	CredentialHash string    `json:"credential_hash"`
	FamilyID       string    `json:"family_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasFamily reports whether the user is affiliated with a family.
// An unaffiliated user only sees their own records.
func (u *User) HasFamily() bool {
	return u.FamilyID != ""
}

// Session represents an authenticated session token and its metadata
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
