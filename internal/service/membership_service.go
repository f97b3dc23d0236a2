package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lobohub/internal/database"
	"lobohub/internal/invitecode"
	"lobohub/internal/models"
	"lobohub/internal/repository"
	"lobohub/internal/validation"
)

var (
	ErrFamilyNotFound  = errors.New("family not found")
	ErrInvalidInvite   = errors.New("invite code not recognized")
	ErrAlreadyInFamily = errors.New("user already belongs to a family")
)

// MembershipService handles family creation, invite issuance and redemption.
// A user's membership moves Unaffiliated -> Affiliated exactly once; there is
// no leave operation and redeeming a code never re-parents an affiliated user.
type MembershipService struct {
	kv       database.BatchStarter
	users    *repository.UserRepository
	families *repository.FamilyRepository
	invites  *repository.InviteRepository
	log      *zap.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(kv database.BatchStarter, users *repository.UserRepository, families *repository.FamilyRepository, invites *repository.InviteRepository, logger *zap.Logger) *MembershipService {
	return &MembershipService{
		kv:       kv,
		users:    users,
		families: families,
		invites:  invites,
		log:      logger,
	}
}

// CreateFamily creates a family with a freshly generated invite code and
// affiliates the owner with it
func (s *MembershipService) CreateFamily(owner *models.User, name string) (*models.Family, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if owner.HasFamily() {
		return nil, ErrAlreadyInFamily
	}

	code, err := s.freshInviteCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	family := &models.Family{
		ID:         uuid.New().String(),
		Name:       name,
		InviteCode: code,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.families.CreateFamily(family); err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	invite := &models.Invite{
		Code:     code,
		FamilyID: family.ID,
		IssuedBy: owner.ID,
		IssuedAt: now,
	}
	if err := s.invites.PutInvite(invite); err != nil {
		return nil, fmt.Errorf("failed to store invite: %w", err)
	}

	owner.FamilyID = family.ID
	owner.UpdatedAt = now
	if err := s.users.SaveUser(owner); err != nil {
		return nil, fmt.Errorf("failed to affiliate owner: %w", err)
	}

	s.log.Info("family created",
		zap.String("family_id", family.ID),
		zap.String("owner_id", owner.ID))

	return family, nil
}

// GetFamily retrieves a family by ID
func (s *MembershipService) GetFamily(familyID string) (*models.Family, error) {
	family, err := s.families.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// IssueInvite returns the family's invite code. Issuance is idempotent: a
// family has one code for its lifetime unless explicitly rotated.
func (s *MembershipService) IssueInvite(familyID string) (string, error) {
	family, err := s.families.GetFamilyByID(familyID)
	if err != nil {
		return "", fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return "", ErrFamilyNotFound
	}
	return family.InviteCode, nil
}

// RedeemInvite affiliates the user with the family behind the code.
// Redemption does not consume the code; it stays valid for further joins.
func (s *MembershipService) RedeemInvite(user *models.User, code string) (*models.Family, error) {
	normalized := invitecode.Normalize(code)
	if !invitecode.Valid(normalized) {
		return nil, ErrInvalidInvite
	}
	if user.HasFamily() {
		return nil, ErrAlreadyInFamily
	}

	invite, err := s.invites.GetInviteByCode(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}
	if invite == nil {
		return nil, ErrInvalidInvite
	}

	family, err := s.families.GetFamilyByID(invite.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrInvalidInvite
	}

	user.FamilyID = family.ID
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.SaveUser(user); err != nil {
		return nil, fmt.Errorf("failed to affiliate user: %w", err)
	}

	s.log.Info("invite redeemed",
		zap.String("family_id", family.ID),
		zap.String("user_id", user.ID))

	return family, nil
}

// RotateInviteCode replaces the family's invite code with a fresh one and
// invalidates the old code. The family record, the new invite, and the old
// invite's removal commit together; a failure leaves the old code in force.
func (s *MembershipService) RotateInviteCode(familyID, requestedBy string) (string, error) {
	family, err := s.families.GetFamilyByID(familyID)
	if err != nil {
		return "", fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return "", ErrFamilyNotFound
	}

	code, err := s.freshInviteCode()
	if err != nil {
		return "", err
	}

	oldCode := family.InviteCode
	now := time.Now().UTC()

	batch, err := s.kv.BeginBatch()
	if err != nil {
		return "", fmt.Errorf("failed to rotate invite: %w", err)
	}
	defer batch.Rollback()

	families := repository.NewFamilyRepository(batch)
	invites := repository.NewInviteRepository(batch)

	family.InviteCode = code
	family.UpdatedAt = now
	if err := families.SaveFamily(family); err != nil {
		return "", fmt.Errorf("failed to save family: %w", err)
	}

	invite := &models.Invite{
		Code:     code,
		FamilyID: family.ID,
		IssuedBy: requestedBy,
		IssuedAt: now,
	}
	if err := invites.PutInvite(invite); err != nil {
		return "", fmt.Errorf("failed to store invite: %w", err)
	}
	if err := invites.DeleteInvite(oldCode); err != nil {
		return "", fmt.Errorf("failed to revoke old invite: %w", err)
	}

	if err := batch.Commit(); err != nil {
		return "", fmt.Errorf("failed to rotate invite: %w", err)
	}

	s.log.Info("invite code rotated", zap.String("family_id", family.ID))

	return code, nil
}

// freshInviteCode generates a code that does not collide with an existing
// invite, retrying a bounded number of times
func (s *MembershipService) freshInviteCode() (string, error) {
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		code, err := invitecode.New()
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		existing, err := s.invites.GetInviteByCode(code)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", errors.New("failed to generate a unique invite code")
}
