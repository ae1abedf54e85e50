package usecase

import (
	"context"
	"time"

	"familyhub-api/internal/family/domain/model"
	"familyhub-api/internal/family/domain/repository"
	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"
	usermodel "familyhub-api/internal/user/domain/model"
	userrepo "familyhub-api/internal/user/domain/repository"

	"github.com/google/uuid"
)

// CreateFamilyInput carries the caller-supplied fields for a new family.
type CreateFamilyInput struct {
	Name    string `json:"name"`
	OwnerID string `json:"ownerId"`
}

// FamilyUseCase exposes the family operations consumed by the HTTP layer.
type FamilyUseCase interface {
	CreateFamily(ctx context.Context, input CreateFamilyInput) (*model.Family, error)
	GetFamily(ctx context.Context, id string) (*model.Family, error)
	ListOwnedFamilies(ctx context.Context, ownerID string) ([]*model.Family, error)
	RenameFamily(ctx context.Context, id, name string) (*model.Family, error)
	DeleteFamily(ctx context.Context, id string) error
	AddMember(ctx context.Context, familyID, userID string) (*model.Family, error)
	RemoveMember(ctx context.Context, familyID, userID string) (*model.Family, error)
	ListMembers(ctx context.Context, familyID string) ([]*usermodel.User, error)
}

type familyUseCase struct {
	families repository.FamilyRepository
	users    userrepo.UserRepository
	log      logger.Logger
	now      func() time.Time
}

// NewFamilyUseCase creates the family service.
func NewFamilyUseCase(families repository.FamilyRepository, users userrepo.UserRepository, log logger.Logger) FamilyUseCase {
	return &familyUseCase{
		families: families,
		users:    users,
		log:      log.WithComponent("family-usecase"),
		now:      time.Now,
	}
}

// CreateFamily mints a family owned by an existing parent and links the
// owner's profile to it.
func (uc *familyUseCase) CreateFamily(ctx context.Context, input CreateFamilyInput) (*model.Family, error) {
	owner, err := uc.users.GetByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if !owner.IsParent() {
		return nil, apperrors.NewAuthorizationError("only parents can create a family")
	}
	if owner.FamilyID != "" {
		return nil, apperrors.NewConflictError("user already belongs to a family")
	}

	now := uc.now().UTC()
	family := &model.Family{
		ID:        uuid.NewString(),
		Name:      input.Name,
		OwnerID:   owner.ID,
		MemberIDs: []string{owner.ID},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := family.Validate(); err != nil {
		return nil, err
	}

	if err := uc.families.Create(ctx, family); err != nil {
		return nil, err
	}

	owner.FamilyID = family.ID
	owner.UpdatedAt = now
	if err := uc.users.Update(ctx, owner); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"new_family_id": family.ID,
		"owner_id":      owner.ID,
	}).Info("family created")
	return family, nil
}

func (uc *familyUseCase) GetFamily(ctx context.Context, id string) (*model.Family, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("family id is required")
	}
	return uc.families.GetByID(ctx, id)
}

func (uc *familyUseCase) ListOwnedFamilies(ctx context.Context, ownerID string) ([]*model.Family, error) {
	if ownerID == "" {
		return nil, apperrors.NewValidationError("owner id is required")
	}
	return uc.families.ListByOwner(ctx, ownerID)
}

func (uc *familyUseCase) RenameFamily(ctx context.Context, id, name string) (*model.Family, error) {
	family, err := uc.GetFamily(ctx, id)
	if err != nil {
		return nil, err
	}

	family.Name = name
	family.UpdatedAt = uc.now().UTC()
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := uc.families.Update(ctx, family); err != nil {
		return nil, err
	}
	return family, nil
}

// DeleteFamily removes the family and detaches every member profile from it.
func (uc *familyUseCase) DeleteFamily(ctx context.Context, id string) error {
	family, err := uc.GetFamily(ctx, id)
	if err != nil {
		return err
	}

	now := uc.now().UTC()
	for _, memberID := range family.MemberIDs {
		member, err := uc.users.GetByID(ctx, memberID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return err
		}
		member.FamilyID = ""
		member.UpdatedAt = now
		if err := uc.users.Update(ctx, member); err != nil {
			return err
		}
	}

	if err := uc.families.Delete(ctx, id); err != nil {
		return err
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{"deleted_family_id": id}).
		Info("family deleted")
	return nil
}

// AddMember joins an existing user to the family. A user can belong to at
// most one family at a time.
func (uc *familyUseCase) AddMember(ctx context.Context, familyID, userID string) (*model.Family, error) {
	family, err := uc.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.FamilyID != "" && user.FamilyID != familyID {
		return nil, apperrors.NewConflictError("user already belongs to another family")
	}
	if !family.AddMember(userID) {
		return nil, apperrors.NewConflictError("user is already a member")
	}

	now := uc.now().UTC()
	family.UpdatedAt = now
	if err := uc.families.Update(ctx, family); err != nil {
		return nil, err
	}

	user.FamilyID = familyID
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return family, nil
}

// RemoveMember detaches a member from the family. The owner cannot leave.
func (uc *familyUseCase) RemoveMember(ctx context.Context, familyID, userID string) (*model.Family, error) {
	family, err := uc.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if userID == family.OwnerID {
		return nil, apperrors.NewValidationError("the owner cannot be removed from the family")
	}
	if !family.RemoveMember(userID) {
		return nil, apperrors.NewNotFoundError("family member")
	}

	now := uc.now().UTC()
	family.UpdatedAt = now
	if err := uc.families.Update(ctx, family); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return family, nil
		}
		return nil, err
	}
	user.FamilyID = ""
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return family, nil
}

// ListMembers resolves the member profiles through the users collection.
func (uc *familyUseCase) ListMembers(ctx context.Context, familyID string) ([]*usermodel.User, error) {
	if _, err := uc.GetFamily(ctx, familyID); err != nil {
		return nil, err
	}
	return uc.users.ListByFamily(ctx, familyID)
}
