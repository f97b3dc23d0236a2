package repository

import (
	"encoding/json"
	"fmt"

	"lobohub/internal/database"
	"lobohub/internal/invitecode"
	"lobohub/internal/models"
)

const inviteKeyPrefix = "invite/"

// InviteRepository persists invite-code mappings in the key-value store.
// Codes are keyed in normalized form so lookups are case-insensitive.
type InviteRepository struct {
	kv database.KV
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(kv database.KV) *InviteRepository {
	return &InviteRepository{kv: kv}
}

func inviteKey(code string) string {
	return inviteKeyPrefix + invitecode.Normalize(code)
}

// PutInvite stores an invite-code mapping
func (r *InviteRepository) PutInvite(invite *models.Invite) error {
	data, err := json.Marshal(invite)
	if err != nil {
		return fmt.Errorf("failed to encode invite: %w", err)
	}
	if err := r.kv.Set(inviteKey(invite.Code), data); err != nil {
		return fmt.Errorf("failed to save invite: %w", err)
	}
	return nil
}

// GetInviteByCode retrieves an invite by code, returning nil when unknown
func (r *InviteRepository) GetInviteByCode(code string) (*models.Invite, error) {
	data, err := r.kv.Get(inviteKey(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var invite models.Invite
	if err := json.Unmarshal(data, &invite); err != nil {
		return nil, fmt.Errorf("failed to decode invite: %w", err)
	}
	return &invite, nil
}

// DeleteInvite removes an invite-code mapping, used when rotating a
// family's code
func (r *InviteRepository) DeleteInvite(code string) error {
	if _, err := r.kv.Delete(inviteKey(code)); err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return nil
}
