package controllers

import (
	"errors"

	"github.com/FelixKnapp/ShopFox/app/repository"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProductController serves the public catalogue JSON API.
type ProductController struct {
	repos *repository.Repositories
}

func NewProductController(repos *repository.Repositories) *ProductController {
	return &ProductController{repos: repos}
}

// HandleListProducts is GET /api/products.
func (ct *ProductController) HandleListProducts(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	products, err := ct.repos.Product.GetActive(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(fiber.Map{"products": products, "offset": offset, "limit": limit})
}

// HandleGetProduct is GET /api/products/:slug.
func (ct *ProductController) HandleGetProduct(c *fiber.Ctx) error {
	product, err := ct.repos.Product.GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(product)
}
