// Package firestore persists families as documents in the "families"
// collection.
package firestore

import (
	"context"
	"fmt"
	"time"

	"familyhub-api/internal/family/domain/model"
	"familyhub-api/internal/family/domain/repository"
	"familyhub-api/internal/firestore"
	"familyhub-api/internal/shared/cache"
	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"
)

const (
	familiesCollection = "families"
	familyCacheTTL     = 5 * time.Minute
)

// FamilyRepository stores families through the Firestore REST client.
type FamilyRepository struct {
	store firestore.Store
	cache cache.DocumentCache
	log   logger.Logger
}

// NewFamilyRepository creates a Firestore-backed family repository.
func NewFamilyRepository(store firestore.Store, docCache cache.DocumentCache, log logger.Logger) repository.FamilyRepository {
	return &FamilyRepository{
		store: store,
		cache: docCache,
		log:   log.WithComponent("family-repository"),
	}
}

func (r *FamilyRepository) Create(ctx context.Context, family *model.Family) error {
	doc, err := r.store.CreateDocument(ctx, familiesCollection, familyToDocument(family), family.ID)
	if err != nil {
		return r.translate("create family", err)
	}

	r.cache.Set(ctx, cache.Key(familiesCollection, family.ID), doc, familyCacheTTL)
	return nil
}

func (r *FamilyRepository) GetByID(ctx context.Context, id string) (*model.Family, error) {
	key := cache.Key(familiesCollection, id)
	if doc, ok := r.cache.Get(ctx, key); ok {
		return documentToFamily(doc)
	}

	doc, err := r.store.GetDocument(ctx, familiesCollection, id)
	if err != nil {
		return nil, r.translate("get family", err)
	}
	if doc == nil {
		return nil, apperrors.NewNotFoundError("family").WithCause(apperrors.ErrFamilyNotFound)
	}

	r.cache.Set(ctx, key, doc, familyCacheTTL)
	return documentToFamily(doc)
}

func (r *FamilyRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Family, error) {
	docs, err := r.store.QueryDocuments(ctx, familiesCollection, map[string]interface{}{
		"ownerId": ownerID,
	}, 0, 0)
	if err != nil {
		return nil, r.translate("list families by owner", err)
	}

	families := make([]*model.Family, 0, len(docs))
	for _, doc := range docs {
		family, err := documentToFamily(doc)
		if err != nil {
			return nil, err
		}
		families = append(families, family)
	}
	return families, nil
}

func (r *FamilyRepository) Update(ctx context.Context, family *model.Family) error {
	doc, err := r.store.UpdateDocument(ctx, familiesCollection, family.ID, familyToDocument(family))
	if err != nil {
		return r.translate("update family", err)
	}

	r.cache.Set(ctx, cache.Key(familiesCollection, family.ID), doc, familyCacheTTL)
	return nil
}

func (r *FamilyRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteDocument(ctx, familiesCollection, id); err != nil {
		return r.translate("delete family", err)
	}

	r.cache.Delete(ctx, cache.Key(familiesCollection, id))
	return nil
}

func (r *FamilyRepository) translate(op string, err error) error {
	if storeErr, ok := firestore.IsStoreError(err); ok {
		switch storeErr.StatusCode {
		case 404:
			return apperrors.NewNotFoundError("family").WithCause(err)
		case 409:
			return apperrors.NewConflictError("family already exists").WithCause(err)
		}
		r.log.WithFields(map[string]interface{}{"op": op, "status": storeErr.StatusCode}).
			Error("firestore request failed")
		return apperrors.NewInfrastructureError(op + " failed").WithCause(err)
	}
	if authErr, ok := firestore.IsAuthError(err); ok {
		r.log.WithFields(map[string]interface{}{"op": op, "error": authErr.Error()}).
			Error("firestore authentication failed")
		return apperrors.NewInfrastructureError("datastore authentication failed").WithCause(err)
	}
	return apperrors.WrapError(err, op+" failed")
}

func familyToDocument(family *model.Family) firestore.Document {
	members := make([]interface{}, len(family.MemberIDs))
	for i, id := range family.MemberIDs {
		members[i] = id
	}
	return firestore.Document{
		"name":      family.Name,
		"ownerId":   family.OwnerID,
		"memberIds": members,
		"createdAt": family.CreatedAt,
		"updatedAt": family.UpdatedAt,
	}
}

func documentToFamily(doc firestore.Document) (*model.Family, error) {
	family := &model.Family{
		ID:      stringField(doc, "id"),
		Name:    stringField(doc, "name"),
		OwnerID: stringField(doc, "ownerId"),
	}
	if family.ID == "" {
		return nil, apperrors.NewInternalError("stored family has no id")
	}

	if raw, ok := doc["memberIds"].([]interface{}); ok {
		family.MemberIDs = make([]string, 0, len(raw))
		for _, entry := range raw {
			id, ok := entry.(string)
			if !ok {
				return nil, apperrors.NewInternalError("stored family member id is not a string")
			}
			family.MemberIDs = append(family.MemberIDs, id)
		}
	}

	createdAt, err := timeField(doc, "createdAt")
	if err != nil {
		return nil, err
	}
	family.CreatedAt = createdAt

	updatedAt, err := timeField(doc, "updatedAt")
	if err != nil {
		return nil, err
	}
	family.UpdatedAt = updatedAt

	return family, nil
}

func stringField(doc firestore.Document, field string) string {
	if val, ok := doc[field].(string); ok {
		return val
	}
	return ""
}

func timeField(doc firestore.Document, field string) (time.Time, error) {
	switch val := doc[field].(type) {
	case time.Time:
		return val, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, val)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, apperrors.NewInternalError(fmt.Sprintf("stored family field %q is not a timestamp", field))
}
