package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"lobohub/internal/database"
	"lobohub/internal/models"
	"lobohub/internal/repository"
	"lobohub/internal/session"
	"lobohub/internal/store"
)

// testEnv wires the full service stack over an in-memory store
type testEnv struct {
	kv         *database.MemoryKV
	users      *repository.UserRepository
	families   *repository.FamilyRepository
	invites    *repository.InviteRepository
	records    *store.RecordStore
	membership *MembershipService
	aggregate  *AggregateService
	snapshots  *SnapshotService
	auth       *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv := database.NewMemoryKV()
	logger := zap.NewNop()

	users := repository.NewUserRepository(kv)
	families := repository.NewFamilyRepository(kv)
	invites := repository.NewInviteRepository(kv)
	records := store.New(kv)

	aggregate := NewAggregateService(users, records, logger)
	tokens := session.NewTokenManager("test-secret", time.Hour, users)

	return &testEnv{
		kv:         kv,
		users:      users,
		families:   families,
		invites:    invites,
		records:    records,
		membership: NewMembershipService(kv, users, families, invites, logger),
		aggregate:  aggregate,
		snapshots:  NewSnapshotService(kv, aggregate, logger),
		auth:       NewAuthService(users, tokens, logger),
	}
}

func (e *testEnv) seedUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:        "user-" + name,
		Email:     name + "@example.com",
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := e.users.CreateUser(user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}
