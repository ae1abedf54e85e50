package usecase

import (
	"context"
	"testing"
	"time"

	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"
	"familyhub-api/internal/user/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo keeps users in a map keyed by id.
type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if _, exists := r.users[user.ID]; exists {
		return apperrors.NewConflictError("user already exists")
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user").WithCause(apperrors.ErrUserNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	normalized := model.NormalizeEmail(email)
	for _, user := range r.users {
		if user.Email == normalized {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user").WithCause(apperrors.ErrUserNotFound)
}

func (r *fakeUserRepo) ListByFamily(_ context.Context, familyID string) ([]*model.User, error) {
	var out []*model.User
	for _, user := range r.users {
		if user.FamilyID == familyID {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.NewNotFoundError("user")
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func newUserUC(repo *fakeUserRepo) UserUseCase {
	return NewUserUseCase(repo, logger.NewLoggerWithConfig("error", "json"))
}

func TestCreateUser(t *testing.T) {
	uc := newUserUC(newFakeUserRepo())

	user, err := uc.CreateUser(context.Background(), CreateUserInput{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Role:        model.RoleParent,
		FamilyID:    "f1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	uc := newUserUC(newFakeUserRepo())
	ctx := context.Background()

	_, err := uc.CreateUser(ctx, CreateUserInput{Email: "a@b.com", DisplayName: "A", Role: model.RoleParent})
	require.NoError(t, err)

	_, err = uc.CreateUser(ctx, CreateUserInput{Email: "A@B.com", DisplayName: "B", Role: model.RoleChild})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyInUse)
}

func TestCreateUser_InvalidInput(t *testing.T) {
	uc := newUserUC(newFakeUserRepo())

	_, err := uc.CreateUser(context.Background(), CreateUserInput{Email: "a@b.com", DisplayName: "A", Role: "admin"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateUser_PartialFields(t *testing.T) {
	uc := newUserUC(newFakeUserRepo())
	ctx := context.Background()

	user, err := uc.CreateUser(ctx, CreateUserInput{Email: "a@b.com", DisplayName: "A", Role: model.RoleParent})
	require.NoError(t, err)

	name := "Alice Cooper"
	updated, err := uc.UpdateUser(ctx, user.ID, UpdateUserInput{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.DisplayName)
	assert.Equal(t, user.Email, updated.Email)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
}

func TestDeleteUser(t *testing.T) {
	uc := newUserUC(newFakeUserRepo())
	ctx := context.Background()

	user, err := uc.CreateUser(ctx, CreateUserInput{Email: "a@b.com", DisplayName: "A", Role: model.RoleParent})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteUser(ctx, user.ID))
	err = uc.DeleteUser(ctx, user.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestParentalPIN_SetAndVerify(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newUserUC(repo)
	ctx := context.Background()

	parent, err := uc.CreateUser(ctx, CreateUserInput{Email: "p@b.com", DisplayName: "P", Role: model.RoleParent})
	require.NoError(t, err)

	require.NoError(t, uc.SetParentalPIN(ctx, parent.ID, "4711"))

	stored := repo.users[parent.ID]
	assert.NotEqual(t, "4711", stored.PINHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PINHash), []byte("4711")))

	valid, err := uc.VerifyParentalPIN(ctx, parent.ID, "4711")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = uc.VerifyParentalPIN(ctx, parent.ID, "0000")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestParentalPIN_ChildCannotHoldPIN(t *testing.T) {
	uc := newUserUC(newFakeUserRepo())
	ctx := context.Background()

	child, err := uc.CreateUser(ctx, CreateUserInput{Email: "c@b.com", DisplayName: "C", Role: model.RoleChild})
	require.NoError(t, err)

	err = uc.SetParentalPIN(ctx, child.ID, "4711")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeAuthorization, appErr.Type)
}

func TestParentalPIN_Validation(t *testing.T) {
	uc := newUserUC(newFakeUserRepo())
	ctx := context.Background()

	parent, err := uc.CreateUser(ctx, CreateUserInput{Email: "p@b.com", DisplayName: "P", Role: model.RoleParent})
	require.NoError(t, err)

	for _, pin := range []string{"12", "123456789", "12ab"} {
		err := uc.SetParentalPIN(ctx, parent.ID, pin)
		assert.True(t, apperrors.IsValidation(err), "pin %q", pin)
	}

	_, err = uc.VerifyParentalPIN(ctx, parent.ID, "4711")
	assert.True(t, apperrors.IsValidation(err), "verify before a pin is set")
}

func TestUseCase_ClockIsUTC(t *testing.T) {
	repo := newFakeUserRepo()
	uc := NewUserUseCase(repo, logger.NewLoggerWithConfig("error", "json")).(*userUseCase)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	uc.now = func() time.Time { return fixed }

	user, err := uc.CreateUser(context.Background(), CreateUserInput{
		Email: "a@b.com", DisplayName: "A", Role: model.RoleParent,
	})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, user.CreatedAt.Location())
	assert.Equal(t, fixed.UTC(), user.CreatedAt)
}
