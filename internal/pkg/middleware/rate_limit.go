package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// WebhookRateLimiter applies a coarse per-source-IP limit to the webhook
// endpoint so delivery bursts are absorbed without resource exhaustion.
// Beyond the limit the gateway sees 429 and its own backoff takes over.
// storage is redis-backed so the limit holds across instances; nil falls
// back to fiber's in-memory store.
func WebhookRateLimiter(storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited"})
		},
	})
}
