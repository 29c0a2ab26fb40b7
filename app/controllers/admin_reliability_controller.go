package controllers

import (
	"github.com/FelixKnapp/ShopFox/app/models"
	"github.com/FelixKnapp/ShopFox/app/repository"
	"github.com/FelixKnapp/ShopFox/internal/pkg/payments"
	"github.com/gofiber/fiber/v2"
)

// ReliabilityController is the operator view over the webhook event store:
// pending/failed counts, retry distribution and the last sweep timestamp.
// Read-only reporting plus a manual sweep trigger; no write-path logic.
type ReliabilityController struct {
	repos   *repository.Repositories
	sweeper *payments.Sweeper
}

func NewReliabilityController(repos *repository.Repositories, sweeper *payments.Sweeper) *ReliabilityController {
	return &ReliabilityController{repos: repos, sweeper: sweeper}
}

// HandleGetReliability is GET /api/admin/reliability.
func (ct *ReliabilityController) HandleGetReliability(c *fiber.Ctx) error {
	pending, err := ct.repos.WebhookEvent.CountByStatus(models.WebhookStatusPending)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	failed, err := ct.repos.WebhookEvent.CountByStatus(models.WebhookStatusFailed)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	processed, err := ct.repos.WebhookEvent.CountByStatus(models.WebhookStatusProcessed)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	distribution, err := ct.repos.WebhookEvent.RetryDistribution()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	lastSweep, err := ct.repos.Setting.GetTime(models.SettingKeyLastSweepAt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	recentFailed, err := ct.repos.WebhookEvent.ListRecentFailed(10)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(fiber.Map{
		"events": fiber.Map{
			"pending":   pending,
			"failed":    failed,
			"processed": processed,
		},
		"retry_distribution": distribution,
		"last_sweep_at":      lastSweep,
		"recent_failed":      recentFailed,
	})
}

// HandleTriggerSweep is POST /api/admin/reliability/sweep. Runs one sweep
// synchronously so operators can redrive stuck events on demand.
func (ct *ReliabilityController) HandleTriggerSweep(c *fiber.Ctx) error {
	attempted, err := ct.sweeper.SweepOnce(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sweep_failed", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true, "attempted": attempted})
}
