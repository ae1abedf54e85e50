package repository

import (
	"context"

	"familyhub-api/internal/user/domain/model"
)

// UserRepository is the persistence port for users. Implementations return
// shared AppErrors: not-found for missing users, conflict for duplicate ids.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByFamily(ctx context.Context, familyID string) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
