// Package http exposes the family operations over REST.
package http

import (
	"errors"

	"familyhub-api/internal/family/usecase"
	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// FamilyHandler wires the family usecase into fiber routes.
type FamilyHandler struct {
	uc  usecase.FamilyUseCase
	log logger.Logger
}

// NewFamilyHandler creates the handler.
func NewFamilyHandler(uc usecase.FamilyUseCase, log logger.Logger) *FamilyHandler {
	return &FamilyHandler{uc: uc, log: log.WithComponent("family-handler")}
}

// RegisterRoutes mounts the family endpoints under the given router.
func (h *FamilyHandler) RegisterRoutes(router fiber.Router) {
	families := router.Group("/families")
	families.Post("/", h.createFamily)
	families.Get("/", h.listFamilies)
	families.Get("/:id", h.getFamily)
	families.Put("/:id", h.renameFamily)
	families.Delete("/:id", h.deleteFamily)
	families.Get("/:id/members", h.listMembers)
	families.Post("/:id/members", h.addMember)
	families.Delete("/:id/members/:userId", h.removeMember)
}

func (h *FamilyHandler) createFamily(c *fiber.Ctx) error {
	var input usecase.CreateFamilyInput
	if err := c.BodyParser(&input); err != nil {
		return h.respondError(c, apperrors.NewValidationError("invalid request body").WithCause(err))
	}

	family, err := h.uc.CreateFamily(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(family)
}

func (h *FamilyHandler) listFamilies(c *fiber.Ctx) error {
	ownerID := c.Query("ownerId")
	if ownerID == "" {
		return h.respondError(c, apperrors.NewValidationError("ownerId query parameter is required"))
	}

	families, err := h.uc.ListOwnedFamilies(c.UserContext(), ownerID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(families)
}

func (h *FamilyHandler) getFamily(c *fiber.Ctx) error {
	family, err := h.uc.GetFamily(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(family)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *FamilyHandler) renameFamily(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperrors.NewValidationError("invalid request body").WithCause(err))
	}

	family, err := h.uc.RenameFamily(c.UserContext(), c.Params("id"), req.Name)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(family)
}

func (h *FamilyHandler) deleteFamily(c *fiber.Ctx) error {
	if err := h.uc.DeleteFamily(c.UserContext(), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FamilyHandler) listMembers(c *fiber.Ctx) error {
	members, err := h.uc.ListMembers(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(members)
}

type addMemberRequest struct {
	UserID string `json:"userId"`
}

func (h *FamilyHandler) addMember(c *fiber.Ctx) error {
	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperrors.NewValidationError("invalid request body").WithCause(err))
	}
	if req.UserID == "" {
		return h.respondError(c, apperrors.NewValidationError("userId is required"))
	}

	family, err := h.uc.AddMember(c.UserContext(), c.Params("id"), req.UserID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(family)
}

func (h *FamilyHandler) removeMember(c *fiber.Ctx) error {
	family, err := h.uc.RemoveMember(c.UserContext(), c.Params("id"), c.Params("userId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(family)
}

func (h *FamilyHandler) respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"path":  c.Path(),
			"error": err.Error(),
		}).Error("request failed")
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(status).JSON(fiber.Map{
			"error":   string(appErr.Type),
			"message": appErr.Message,
			"details": appErr.Details,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   string(apperrors.ErrorTypeInternal),
		"message": "internal server error",
	})
}
