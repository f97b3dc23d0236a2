package models

import "time"

// Family represents a group of users sharing an aggregated data view.
// The invite code is a long-lived shared secret: it never expires and is
// redeemable any number of times until explicitly rotated.
type Family struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Invite maps an invite code to the family it admits into
type Invite struct {
	Code     string    `json:"code"`
	FamilyID string    `json:"family_id"`
	IssuedBy string    `json:"issued_by"`
	IssuedAt time.Time `json:"issued_at"`
}
