package service

import (
	"fmt"

	"go.uber.org/zap"

	"lobohub/internal/models"
	"lobohub/internal/repository"
	"lobohub/internal/store"
)

// AggregateService produces the multi-owner "family view" of a collection:
// the concatenation of every member's records. Order is member-iteration
// order, then insertion order within each member; callers needing a total
// order (chat by time, events by start) sort explicitly. Cost is linear in
// members x records, which is fine for single-digit families against local
// storage.
type AggregateService struct {
	users   *repository.UserRepository
	records *store.RecordStore
	log     *zap.Logger
}

// NewAggregateService creates a new aggregate service
func NewAggregateService(users *repository.UserRepository, records *store.RecordStore, logger *zap.Logger) *AggregateService {
	return &AggregateService{
		users:   users,
		records: records,
		log:     logger,
	}
}

// Aggregate returns every family member's records for the collection.
// Records never need deduplication: each has exactly one owner and globally
// unique ids.
func (s *AggregateService) Aggregate(familyID, collection string) ([]models.Record, error) {
	members, err := s.users.ListFamilyMembers(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}

	var all []models.Record
	for _, member := range members {
		records, err := s.records.List(member.ID, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to list records for member %s: %w", member.ID, err)
		}
		all = append(all, records...)
	}

	s.log.Debug("aggregated family view",
		zap.String("family_id", familyID),
		zap.String("collection", collection),
		zap.Int("members", len(members)),
		zap.Int("records", len(all)))

	return all, nil
}
