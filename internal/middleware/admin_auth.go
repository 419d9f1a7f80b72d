package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminKey guards admin routes with the X-Admin-Key header. With an
// empty key the routes are open when allowOpen is set (development) and
// unavailable otherwise.
func RequireAdminKey(key string, allowOpen bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			if allowOpen {
				return c.Next()
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Admin API is not configured",
			})
		}
		if subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Key")), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid admin key",
			})
		}
		return c.Next()
	}
}
