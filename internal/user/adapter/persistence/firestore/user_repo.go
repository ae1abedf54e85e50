// Package firestore persists users as documents in the "users" collection.
package firestore

import (
	"context"
	"fmt"
	"time"

	"familyhub-api/internal/firestore"
	"familyhub-api/internal/shared/cache"
	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"
	"familyhub-api/internal/user/domain/model"
	"familyhub-api/internal/user/domain/repository"
)

const (
	usersCollection = "users"
	userCacheTTL    = 5 * time.Minute
)

// UserRepository stores users through the Firestore REST client, with a
// read-through document cache on id lookups.
type UserRepository struct {
	store firestore.Store
	cache cache.DocumentCache
	log   logger.Logger
}

// NewUserRepository creates a Firestore-backed user repository.
func NewUserRepository(store firestore.Store, docCache cache.DocumentCache, log logger.Logger) repository.UserRepository {
	return &UserRepository{
		store: store,
		cache: docCache,
		log:   log.WithComponent("user-repository"),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	doc, err := r.store.CreateDocument(ctx, usersCollection, userToDocument(user), user.ID)
	if err != nil {
		return r.translate("create user", err)
	}

	r.cache.Set(ctx, cache.Key(usersCollection, user.ID), doc, userCacheTTL)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	key := cache.Key(usersCollection, id)
	if doc, ok := r.cache.Get(ctx, key); ok {
		return documentToUser(doc)
	}

	doc, err := r.store.GetDocument(ctx, usersCollection, id)
	if err != nil {
		return nil, r.translate("get user", err)
	}
	if doc == nil {
		return nil, apperrors.NewNotFoundError("user").WithCause(apperrors.ErrUserNotFound)
	}

	r.cache.Set(ctx, key, doc, userCacheTTL)
	return documentToUser(doc)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	docs, err := r.store.QueryDocuments(ctx, usersCollection, map[string]interface{}{
		"email": model.NormalizeEmail(email),
	}, 1, 0)
	if err != nil {
		return nil, r.translate("get user by email", err)
	}
	if len(docs) == 0 {
		return nil, apperrors.NewNotFoundError("user").WithCause(apperrors.ErrUserNotFound)
	}
	return documentToUser(docs[0])
}

func (r *UserRepository) ListByFamily(ctx context.Context, familyID string) ([]*model.User, error) {
	docs, err := r.store.QueryDocuments(ctx, usersCollection, map[string]interface{}{
		"familyId": familyID,
	}, 0, 0)
	if err != nil {
		return nil, r.translate("list family members", err)
	}

	users := make([]*model.User, 0, len(docs))
	for _, doc := range docs {
		user, err := documentToUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	doc, err := r.store.UpdateDocument(ctx, usersCollection, user.ID, userToDocument(user))
	if err != nil {
		return r.translate("update user", err)
	}

	r.cache.Set(ctx, cache.Key(usersCollection, user.ID), doc, userCacheTTL)
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteDocument(ctx, usersCollection, id); err != nil {
		return r.translate("delete user", err)
	}

	r.cache.Delete(ctx, cache.Key(usersCollection, id))
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	docs, err := r.store.QueryDocuments(ctx, usersCollection, map[string]interface{}{
		"email": model.NormalizeEmail(email),
	}, 1, 0)
	if err != nil {
		return false, r.translate("check email", err)
	}
	return len(docs) > 0, nil
}

// translate maps Firestore client errors onto shared application errors so
// the layers above never see transport details.
func (r *UserRepository) translate(op string, err error) error {
	if storeErr, ok := firestore.IsStoreError(err); ok {
		switch storeErr.StatusCode {
		case 404:
			return apperrors.NewNotFoundError("user").WithCause(err)
		case 409:
			return apperrors.NewConflictError("user already exists").WithCause(err)
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

func userToDocument(user *model.User) firestore.Document {
	doc := firestore.Document{
		"email":       model.NormalizeEmail(user.Email),
		"displayName": user.DisplayName,
		"role":        string(user.Role),
		"createdAt":   user.CreatedAt,
		"updatedAt":   user.UpdatedAt,
	}
	if user.FamilyID != "" {
		doc["familyId"] = user.FamilyID
	}
	if user.BirthDate != nil {
		doc["birthDate"] = *user.BirthDate
	}
	if user.AvatarURL != "" {
		doc["avatarUrl"] = user.AvatarURL
	}
	if user.PINHash != "" {
		doc["pinHash"] = user.PINHash
	}
	return doc
}

func documentToUser(doc firestore.Document) (*model.User, error) {
	user := &model.User{
		ID:          stringField(doc, "id"),
		Email:       stringField(doc, "email"),
		DisplayName: stringField(doc, "displayName"),
		Role:        model.Role(stringField(doc, "role")),
		FamilyID:    stringField(doc, "familyId"),
		AvatarURL:   stringField(doc, "avatarUrl"),
		PINHash:     stringField(doc, "pinHash"),
	}

	createdAt, err := timeField(doc, "createdAt")
	if err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt

	updatedAt, err := timeField(doc, "updatedAt")
	if err != nil {
		return nil, err
	}
	user.UpdatedAt = updatedAt

	if _, present := doc["birthDate"]; present {
		birthDate, err := timeField(doc, "birthDate")
		if err != nil {
			return nil, err
		}
		user.BirthDate = &birthDate
	}

	if user.ID == "" {
		return nil, apperrors.NewInternalError("stored user has no id")
	}
	return user, nil
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
	return time.Time{}, apperrors.NewInternalError(fmt.Sprintf("stored user field %q is not a timestamp", field))
}
