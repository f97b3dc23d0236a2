package repository

import (
	"encoding/json"
	"fmt"

	"lobohub/internal/database"
	"lobohub/internal/models"
)

const familyKeyPrefix = "family/"

// FamilyRepository persists families in the key-value store
type FamilyRepository struct {
	kv database.KV
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(kv database.KV) *FamilyRepository {
	return &FamilyRepository{kv: kv}
}

func familyKey(id string) string {
	return familyKeyPrefix + id
}

// CreateFamily stores a new family
func (r *FamilyRepository) CreateFamily(family *models.Family) error {
	return r.SaveFamily(family)
}

// SaveFamily writes a family, overwriting any previous state
func (r *FamilyRepository) SaveFamily(family *models.Family) error {
	data, err := json.Marshal(family)
	if err != nil {
		return fmt.Errorf("failed to encode family: %w", err)
	}
	if err := r.kv.Set(familyKey(family.ID), data); err != nil {
		return fmt.Errorf("failed to save family: %w", err)
	}
	return nil
}

// GetFamilyByID retrieves a family by ID, returning nil when absent
func (r *FamilyRepository) GetFamilyByID(id string) (*models.Family, error) {
	data, err := r.kv.Get(familyKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var family models.Family
	if err := json.Unmarshal(data, &family); err != nil {
		return nil, fmt.Errorf("failed to decode family: %w", err)
	}
	return &family, nil
}
