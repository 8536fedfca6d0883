package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth validates a bearer API key against the value returned by key.
// When key returns an empty string every request is let through.
// Expects: Authorization: Bearer <api_key>
func APIKeyAuth(key func() string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		storedKey := key()
		if storedKey == "" {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Authorization header",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid Authorization header format. Expected: Bearer <api_key>",
			})
		}

		providedKey := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(storedKey)) != 1 {
			logger.Warn("Rejected request with invalid API key", slog.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		return c.Next()
	}
}
