package router

import (
	"github.com/FelixKnapp/ShopFox/app/controllers"
	"github.com/FelixKnapp/ShopFox/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

// ApiRouter mounts the storefront JSON API and the operator endpoints.
type ApiRouter struct {
	orders      *controllers.OrderController
	products    *controllers.ProductController
	reliability *controllers.ReliabilityController
}

func NewApiRouter(
	orders *controllers.OrderController,
	products *controllers.ProductController,
	reliability *controllers.ReliabilityController,
) *ApiRouter {
	return &ApiRouter{
		orders:      orders,
		products:    products,
		reliability: reliability,
	}
}

func (r *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/products", r.products.HandleListProducts)
	api.Get("/products/:slug", r.products.HandleGetProduct)
	api.Post("/orders", r.orders.HandleCreateOrder)
	api.Get("/orders/:number", r.orders.HandleGetOrder)

	admin := api.Group("/admin", middleware.OpsKeyMiddleware())
	admin.Get("/reliability", r.reliability.HandleGetReliability)
	admin.Post("/reliability/sweep", r.reliability.HandleTriggerSweep)
}
