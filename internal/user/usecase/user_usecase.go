package usecase

import (
	"context"
	"time"
	"unicode"

	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"
	"familyhub-api/internal/user/domain/model"
	"familyhub-api/internal/user/domain/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	pinMinLength = 4
	pinMaxLength = 8
)

// CreateUserInput carries the caller-supplied fields for a new user.
type CreateUserInput struct {
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Role        model.Role `json:"role"`
	FamilyID    string     `json:"familyId"`
	BirthDate   *time.Time `json:"birthDate"`
	AvatarURL   string     `json:"avatarUrl"`
}

// UpdateUserInput holds the mutable user fields. Nil pointers leave the
// stored value untouched.
type UpdateUserInput struct {
	DisplayName *string    `json:"displayName"`
	FamilyID    *string    `json:"familyId"`
	BirthDate   *time.Time `json:"birthDate"`
	AvatarURL   *string    `json:"avatarUrl"`
}

// UserUseCase exposes the user operations consumed by the HTTP layer.
type UserUseCase interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListFamilyMembers(ctx context.Context, familyID string) ([]*model.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	SetParentalPIN(ctx context.Context, userID, pin string) error
	VerifyParentalPIN(ctx context.Context, userID, pin string) (bool, error)
}

type userUseCase struct {
	repo repository.UserRepository
	log  logger.Logger
	now  func() time.Time
}

// NewUserUseCase creates the user service.
func NewUserUseCase(repo repository.UserRepository, log logger.Logger) UserUseCase {
	return &userUseCase{
		repo: repo,
		log:  log.WithComponent("user-usecase"),
		now:  time.Now,
	}
}

// CreateUser mints an id, enforces email uniqueness and stores the user.
// The uniqueness probe is best-effort: two concurrent creates with the same
// email race, and the second loses only if it reuses the same document id.
func (uc *userUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	now := uc.now().UTC()
	user := &model.User{
		ID:          uuid.NewString(),
		Email:       model.NormalizeEmail(input.Email),
		DisplayName: input.DisplayName,
		Role:        input.Role,
		FamilyID:    input.FamilyID,
		BirthDate:   input.BirthDate,
		AvatarURL:   input.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	taken, err := uc.repo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("email already in use").
			WithCause(apperrors.ErrEmailAlreadyInUse)
	}

	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"new_user_id": user.ID,
		"role":        user.Role,
	}).Info("user created")
	return user, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	return uc.repo.GetByID(ctx, id)
}

func (uc *userUseCase) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	return uc.repo.GetByEmail(ctx, email)
}

func (uc *userUseCase) ListFamilyMembers(ctx context.Context, familyID string) ([]*model.User, error) {
	if familyID == "" {
		return nil, apperrors.NewValidationError("family id is required")
	}
	return uc.repo.ListByFamily(ctx, familyID)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	user, err := uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.FamilyID != nil {
		user.FamilyID = *input.FamilyID
	}
	if input.BirthDate != nil {
		user.BirthDate = input.BirthDate
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	user.UpdatedAt = uc.now().UTC()

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id string) error {
	if _, err := uc.GetUser(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{"deleted_user_id": id}).
		Info("user deleted")
	return nil
}

// SetParentalPIN hashes and stores the PIN for a parent. Children cannot
// hold a PIN.
func (uc *userUseCase) SetParentalPIN(ctx context.Context, userID, pin string) error {
	if err := validatePIN(pin); err != nil {
		return err
	}

	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsParent() {
		return apperrors.NewAuthorizationError("only parents can hold a PIN")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.NewInternalError("hash pin").WithCause(err)
	}

	user.PINHash = string(hash)
	user.UpdatedAt = uc.now().UTC()
	return uc.repo.Update(ctx, user)
}

// VerifyParentalPIN reports whether the PIN matches. A wrong PIN is a false
// result, not an error.
func (uc *userUseCase) VerifyParentalPIN(ctx context.Context, userID, pin string) (bool, error) {
	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.PINHash == "" {
		return false, apperrors.NewValidationError("user has no PIN configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		return false, nil
	}
	return true, nil
}

func validatePIN(pin string) error {
	if len(pin) < pinMinLength || len(pin) > pinMaxLength {
		return apperrors.NewValidationError("pin must be 4 to 8 digits")
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return apperrors.NewValidationError("pin must contain only digits")
		}
	}
	return nil
}
