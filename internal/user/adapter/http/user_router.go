// Package http exposes the user operations over REST.
package http

import (
	"errors"

	apperrors "familyhub-api/internal/shared/errors"
	"familyhub-api/internal/shared/logger"
	"familyhub-api/internal/user/usecase"

	"github.com/gofiber/fiber/v2"
)

// UserHandler wires the user usecase into fiber routes.
type UserHandler struct {
	uc  usecase.UserUseCase
	log logger.Logger
}

// NewUserHandler creates the handler.
func NewUserHandler(uc usecase.UserUseCase, log logger.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log.WithComponent("user-handler")}
}

// RegisterRoutes mounts the user endpoints under the given router.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Post("/", h.createUser)
	users.Get("/", h.listUsers)
	users.Get("/:id", h.getUser)
	users.Put("/:id", h.updateUser)
	users.Delete("/:id", h.deleteUser)
	users.Put("/:id/pin", h.setPIN)
	users.Post("/:id/pin/verify", h.verifyPIN)
}

func (h *UserHandler) createUser(c *fiber.Ctx) error {
	var input usecase.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return h.respondError(c, apperrors.NewValidationError("invalid request body").WithCause(err))
	}

	user, err := h.uc.CreateUser(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// listUsers resolves either a single user by email or all members of a
// family, depending on which query parameter is present.
func (h *UserHandler) listUsers(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		user, err := h.uc.GetUserByEmail(c.UserContext(), email)
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON([]interface{}{user})
	}

	familyID := c.Query("familyId")
	if familyID == "" {
		return h.respondError(c, apperrors.NewValidationError("email or familyId query parameter is required"))
	}

	users, err := h.uc.ListFamilyMembers(c.UserContext(), familyID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(users)
}

func (h *UserHandler) getUser(c *fiber.Ctx) error {
	user, err := h.uc.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) updateUser(c *fiber.Ctx) error {
	var input usecase.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return h.respondError(c, apperrors.NewValidationError("invalid request body").WithCause(err))
	}

	user, err := h.uc.UpdateUser(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) deleteUser(c *fiber.Ctx) error {
	if err := h.uc.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (h *UserHandler) setPIN(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperrors.NewValidationError("invalid request body").WithCause(err))
	}

	if err := h.uc.SetParentalPIN(c.UserContext(), c.Params("id"), req.PIN); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) verifyPIN(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperrors.NewValidationError("invalid request body").WithCause(err))
	}

	valid, err := h.uc.VerifyParentalPIN(c.UserContext(), c.Params("id"), req.PIN)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"valid": valid})
}

func (h *UserHandler) respondError(c *fiber.Ctx, err error) error {
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
