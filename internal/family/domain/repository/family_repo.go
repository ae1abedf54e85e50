package repository

import (
	"context"

	"familyhub-api/internal/family/domain/model"
)

// FamilyRepository is the persistence port for families.
type FamilyRepository interface {
	Create(ctx context.Context, family *model.Family) error
	GetByID(ctx context.Context, id string) (*model.Family, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Family, error)
	Update(ctx context.Context, family *model.Family) error
	Delete(ctx context.Context, id string) error
}
