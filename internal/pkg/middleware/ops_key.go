package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/FelixKnapp/ShopFox/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
)

// OpsKeyMiddleware protects operator endpoints with a static API key
// header. The reliability view is read-mostly but still internal.
func OpsKeyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		expected := env.GetEnv("OPS_API_KEY", "")
		if expected == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "ops_key_not_configured"})
		}

		got := extractOpsKey(c)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		return c.Next()
	}
}

func extractOpsKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.Get("X-Ops-Key"))
	if key != "" {
		return key
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
