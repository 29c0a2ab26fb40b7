package controllers

import (
	"errors"

	"github.com/FelixKnapp/ShopFox/app/repository"
	"github.com/FelixKnapp/ShopFox/internal/pkg/checkout"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// OrderController serves the storefront order JSON API.
type OrderController struct {
	repos    *repository.Repositories
	checkout *checkout.Service
	validate *validator.Validate
}

// NewOrderController creates the order controller.
func NewOrderController(repos *repository.Repositories, checkoutSvc *checkout.Service) *OrderController {
	return &OrderController{
		repos:    repos,
		checkout: checkoutSvc,
		validate: validator.New(),
	}
}

type createOrderRequest struct {
	CustomerID uint                 `json:"customer_id" validate:"required"`
	Items      []createOrderItemReq `json:"items" validate:"required,min=1,dive"`
}

type createOrderItemReq struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

// HandleCreateOrder is POST /api/orders.
func (ct *OrderController) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
	}
	if err := ct.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	if _, err := ct.repos.Customer.GetByID(req.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "customer_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	lines := make([]checkout.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, checkout.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := ct.checkout.CreateOrder(c.UserContext(), req.CustomerID, lines)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInsufficientStock), errors.Is(err, checkout.ErrProductInactive):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "unavailable", "message": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product_not_found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "order_create_failed"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrder is GET /api/orders/:number.
func (ct *OrderController) HandleGetOrder(c *fiber.Ctx) error {
	number := c.Params("number")
	order, err := ct.repos.Order.GetByOrderNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(order)
}
