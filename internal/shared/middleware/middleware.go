// Package middleware carries the request-scoped plumbing shared by all
// routers: request ids and the verified caller identity. Identity
// verification itself happens upstream (the gateway validates the Firebase
// ID token and forwards the subject); this layer only lifts the forwarded
// headers into the request context.
package middleware

import (
	"familyhub-api/internal/shared/contextkeys"
	"familyhub-api/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"
	// HeaderUserID carries the verified caller subject, set by the gateway.
	HeaderUserID = "X-User-ID"
)

// RequestID assigns every request an id (honoring one sent by the caller)
// and makes it available to handlers and the logger through the context.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.SetUserContext(contextkeys.WithRequestID(c.UserContext(), requestID))
		c.Set(HeaderRequestID, requestID)
		return c.Next()
	}
}

// RequireIdentity rejects requests without a forwarded verified identity and
// stores the subject in the request context for handlers and audit logs.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get(HeaderUserID)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "missing_identity",
				"message": "request carries no verified identity",
			})
		}

		c.SetUserContext(contextkeys.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// RequestLogger emits one line per request with the context identifiers.
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		}).Info("request handled")
		return err
	}
}
