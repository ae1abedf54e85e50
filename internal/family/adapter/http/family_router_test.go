package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"familyhub-api/internal/family/domain/model"
	"familyhub-api/internal/family/usecase"
	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"
	usermodel "familyhub-api/internal/user/domain/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFamilyUseCase struct {
	family  *model.Family
	members []*usermodel.User
	err     error

	lastFamilyID string
	lastUserID   string
}

func (f *fakeFamilyUseCase) CreateFamily(_ context.Context, _ usecase.CreateFamilyInput) (*model.Family, error) {
	return f.family, f.err
}
func (f *fakeFamilyUseCase) GetFamily(_ context.Context, id string) (*model.Family, error) {
	f.lastFamilyID = id
	return f.family, f.err
}
func (f *fakeFamilyUseCase) ListOwnedFamilies(_ context.Context, _ string) ([]*model.Family, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*model.Family{f.family}, nil
}
func (f *fakeFamilyUseCase) RenameFamily(_ context.Context, id, _ string) (*model.Family, error) {
	f.lastFamilyID = id
	return f.family, f.err
}
func (f *fakeFamilyUseCase) DeleteFamily(_ context.Context, id string) error {
	f.lastFamilyID = id
	return f.err
}
func (f *fakeFamilyUseCase) AddMember(_ context.Context, familyID, userID string) (*model.Family, error) {
	f.lastFamilyID = familyID
	f.lastUserID = userID
	return f.family, f.err
}
func (f *fakeFamilyUseCase) RemoveMember(_ context.Context, familyID, userID string) (*model.Family, error) {
	f.lastFamilyID = familyID
	f.lastUserID = userID
	return f.family, f.err
}
func (f *fakeFamilyUseCase) ListMembers(_ context.Context, familyID string) ([]*usermodel.User, error) {
	f.lastFamilyID = familyID
	return f.members, f.err
}

func newFamilyApp(uc usecase.FamilyUseCase) *fiber.App {
	app := fiber.New()
	handler := NewFamilyHandler(uc, logger.NewLoggerWithConfig("error", "json"))
	handler.RegisterRoutes(app.Group("/api/v1"))
	return app
}

func TestCreateFamilyEndpoint(t *testing.T) {
	uc := &fakeFamilyUseCase{family: &model.Family{ID: "f1", Name: "Smith", OwnerID: "u1", MemberIDs: []string{"u1"}}}
	app := newFamilyApp(uc)

	body, _ := json.Marshal(map[string]string{"name": "Smith", "ownerId": "u1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/families", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	defer resp.Body.Close()
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "f1", got["id"])
	assert.Equal(t, []interface{}{"u1"}, got["memberIds"])
}

func TestGetFamilyEndpoint_NotFound(t *testing.T) {
	uc := &fakeFamilyUseCase{err: apperrors.NewNotFoundError("family")}
	app := newFamilyApp(uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/families/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ghost", uc.lastFamilyID)
}

func TestAddMemberEndpoint(t *testing.T) {
	uc := &fakeFamilyUseCase{family: &model.Family{ID: "f1", MemberIDs: []string{"u1", "u2"}}}
	app := newFamilyApp(uc)

	body, _ := json.Marshal(map[string]string{"userId": "u2"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/families/f1/members", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "f1", uc.lastFamilyID)
	assert.Equal(t, "u2", uc.lastUserID)
}

func TestAddMemberEndpoint_MissingUserID(t *testing.T) {
	app := newFamilyApp(&fakeFamilyUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/families/f1/members", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemoveMemberEndpoint(t *testing.T) {
	uc := &fakeFamilyUseCase{family: &model.Family{ID: "f1", MemberIDs: []string{"u1"}}}
	app := newFamilyApp(uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/families/f1/members/u2", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u2", uc.lastUserID)
}

func TestListMembersEndpoint(t *testing.T) {
	uc := &fakeFamilyUseCase{members: []*usermodel.User{
		{ID: "u1", DisplayName: "Alice"},
		{ID: "u2", DisplayName: "Bob"},
	}}
	app := newFamilyApp(uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/families/f1/members", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var members []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&members))
	assert.Len(t, members, 2)
}

func TestDeleteFamilyEndpoint(t *testing.T) {
	app := newFamilyApp(&fakeFamilyUseCase{})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/families/f1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
