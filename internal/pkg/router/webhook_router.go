package router

import (
	"github.com/FelixKnapp/ShopFox/app/controllers"
	"github.com/FelixKnapp/ShopFox/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

// WebhookRouter mounts the gateway-facing webhook endpoint behind the
// per-IP rate limiter.
type WebhookRouter struct {
	webhook *controllers.WebhookController
	storage fiber.Storage
}

func NewWebhookRouter(webhook *controllers.WebhookController, storage fiber.Storage) *WebhookRouter {
	return &WebhookRouter{webhook: webhook, storage: storage}
}

func (r *WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post("/webhook", middleware.WebhookRateLimiter(r.storage), r.webhook.HandleGatewayWebhook)
}
